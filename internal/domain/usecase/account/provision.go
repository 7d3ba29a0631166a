package account

import (
	"context"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
	"github.com/arman-rahimi/credit-ledger/internal/domain/port/persistence"
)

// Service provisions accounts at user registration. The starting balance is
// a policy knob: zero by default, or a promotional grant.
type Service struct {
	uow             persistence.UnitOfWork
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	startingBalance int64
}

// NewService creates the account service
func NewService(uow persistence.UnitOfWork, timeProvider coreport.TimeProvider, logger coreport.Logger, startingBalance int64) *Service {
	return &Service{
		uow:             uow,
		timeProvider:    timeProvider,
		logger:          logger,
		startingBalance: startingBalance,
	}
}

// Provision creates the account for a newly registered user
func (s *Service) Provision(ctx context.Context, userID uint64) (*entity.Account, error) {
	acc, err := entity.NewAccount(userID, s.startingBalance, s.timeProvider)
	if err != nil {
		return nil, err
	}

	if err := s.uow.Repositories().Accounts.Create(ctx, acc); err != nil {
		s.logger.Error("Account provisioning failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil, err
	}

	s.logger.Info("Account provisioned", map[string]any{
		"user_id":          userID,
		"account_id":       acc.ID,
		"starting_balance": entity.FormatAmount(acc.Balance()),
	})
	return acc, nil
}

// GetByUserID resolves a user's account
func (s *Service) GetByUserID(ctx context.Context, userID uint64) (*entity.Account, error) {
	return s.uow.Repositories().Accounts.GetByUserID(ctx, userID)
}
