// Package job holds the periodic background workers: the order expiry sweep
// and the outbox sender. Both are guarded by a Redis lock so a multi-instance
// deployment runs each job once per tick.
package job

import (
	"context"
	"time"

	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
	"github.com/arman-rahimi/credit-ledger/internal/domain/port/persistence"
	"github.com/arman-rahimi/credit-ledger/internal/domain/usecase/payment"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/lock"
)

// OrderSweeper periodically reconciles stale paying orders. Correctness does
// not depend on it: expiry is applied lazily on every query and confirmation,
// the sweep only bounds how long a stale row stays in the paying state.
type OrderSweeper struct {
	uow          persistence.UnitOfWork
	payments     *payment.Service
	sweepLock    *lock.DistributedLock
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	interval     time.Duration
	batchSize    int
	stopCh       chan struct{}
}

// NewOrderSweeper creates the sweep job. sweepLock may be nil in
// single-instance deployments.
func NewOrderSweeper(
	uow persistence.UnitOfWork,
	payments *payment.Service,
	sweepLock *lock.DistributedLock,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	interval time.Duration,
	batchSize int,
) *OrderSweeper {
	return &OrderSweeper{
		uow:          uow,
		payments:     payments,
		sweepLock:    sweepLock,
		timeProvider: timeProvider,
		logger:       logger,
		interval:     interval,
		batchSize:    batchSize,
		stopCh:       make(chan struct{}),
	}
}

// Start runs the sweep loop until the context is cancelled or Stop is called
func (s *OrderSweeper) Start(ctx context.Context) {
	s.logger.Info("Order sweeper started", map[string]any{
		"interval":   s.interval.String(),
		"batch_size": s.batchSize,
	})

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Order sweeper stopped", nil)
			return
		case <-s.stopCh:
			s.logger.Info("Order sweeper stopped", nil)
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop signals the loop to exit
func (s *OrderSweeper) Stop() {
	close(s.stopCh)
}

// sweep reconciles one batch of stale paying orders
func (s *OrderSweeper) sweep(ctx context.Context) {
	if s.sweepLock != nil {
		acquired, err := s.sweepLock.TryLock(ctx)
		if err != nil {
			s.logger.Warn("Sweep lock unavailable", map[string]any{"error": err.Error()})
			return
		}
		if !acquired {
			return
		}
		defer func() {
			if err := s.sweepLock.Unlock(ctx); err != nil {
				s.logger.Warn("Failed to release sweep lock", map[string]any{"error": err.Error()})
			}
		}()
	}

	stale, err := s.uow.Repositories().Orders.ListStalePaying(ctx, s.timeProvider.Now(), s.batchSize)
	if err != nil {
		s.logger.Error("Failed to list stale orders", map[string]any{"error": err.Error()})
		return
	}
	if len(stale) == 0 {
		return
	}

	s.logger.Info("Sweeping stale orders", map[string]any{"count": len(stale)})

	for _, order := range stale {
		// Reconcile consults the gateway before expiring, so a payment that
		// completed just before the TTL is still credited.
		if _, err := s.payments.Reconcile(ctx, order.OutTradeNo); err != nil {
			s.logger.Warn("Failed to reconcile stale order", map[string]any{
				"out_trade_no": order.OutTradeNo,
				"error":        err.Error(),
			})
		}
	}
}
