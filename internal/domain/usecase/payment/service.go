package payment

import (
	"time"

	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
	gatewayport "github.com/arman-rahimi/credit-ledger/internal/domain/port/gateway"
	"github.com/arman-rahimi/credit-ledger/internal/domain/port/persistence"
)

// OrderPolicy carries provider-configured bounds and the fixed order TTL
type OrderPolicy struct {
	Provider  string
	MinAmount int64 // minor units
	MaxAmount int64 // minor units
	TTL       time.Duration
}

// Service drives payment orders through their state machine and performs the
// one-time credit when the gateway confirms a payment. Confirmation is the
// idempotency anchor: however many pollers, sweeps or webhooks call in, an
// order credits the account at most once.
type Service struct {
	uow          persistence.UnitOfWork
	gateway      gatewayport.PaymentGateway
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	policy       OrderPolicy
	tradeNoFn    func() string
}

// NewService creates the payment service. tradeNoFn allocates unique
// external references for new orders.
func NewService(
	uow persistence.UnitOfWork,
	gw gatewayport.PaymentGateway,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	policy OrderPolicy,
	tradeNoFn func() string,
) *Service {
	return &Service{
		uow:          uow,
		gateway:      gw,
		timeProvider: timeProvider,
		logger:       logger,
		policy:       policy,
		tradeNoFn:    tradeNoFn,
	}
}
