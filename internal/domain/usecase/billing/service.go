package billing

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
	"github.com/arman-rahimi/credit-ledger/internal/domain/port/persistence"
)

// Service is the charge and refund engine. All balance mutations run inside
// one unit of work with the account row locked, so concurrent charges on the
// same account can never pass the balance check against a stale snapshot.
type Service struct {
	uow          persistence.UnitOfWork
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewService creates the billing service
func NewService(uow persistence.UnitOfWork, timeProvider coreport.TimeProvider, logger coreport.Logger) *Service {
	return &Service{
		uow:          uow,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// stageLedgerEvent appends an outbox event inside the current atomic unit
func stageLedgerEvent(ctx context.Context, repos persistence.Repositories, topic string, accountID uint64, entry *entity.Transaction, timeProvider coreport.TimeProvider) error {
	payload, err := json.Marshal(map[string]any{
		"transaction_id": entry.ID,
		"account_id":     accountID,
		"category":       entry.Category,
		"amount":         entry.Amount,
		"balance_after":  entry.BalanceAfter,
		"created_at":     entry.CreatedAt,
	})
	if err != nil {
		return err
	}
	msg := entity.NewOutboxMessage(topic, strconv.FormatUint(accountID, 10), string(payload), timeProvider)
	return repos.Outbox.Create(ctx, msg)
}
