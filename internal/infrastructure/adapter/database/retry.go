package database

import (
	"context"
	"time"

	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
	"github.com/arman-rahimi/credit-ledger/internal/domain/port/persistence"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/repository"
)

// RetryConfig holds configuration for retried atomic units
type RetryConfig struct {
	MaxAttempts  int
	BaseInterval time.Duration
	MaxInterval  time.Duration
	JitterFactor float64 // 0.0-1.0, randomness added to each backoff
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  5,
		BaseInterval: 100 * time.Millisecond,
		MaxInterval:  2 * time.Second,
		JitterFactor: 0.2,
	}
}

// RetryingUnitOfWork decorates a UnitOfWork with replay on lock contention
// and transient connectivity failures. The whole closure re-runs on each
// attempt, so row locks are re-acquired and stale reads cannot leak between
// attempts. Duplicate-key violations are never retried; they carry business
// meaning and replaying them cannot change the outcome.
type RetryingUnitOfWork struct {
	inner      persistence.UnitOfWork
	classifier *repository.ErrorClassifier
	config     RetryConfig
	logger     coreport.Logger
}

// NewRetryingUnitOfWork wraps inner with the given retry policy
func NewRetryingUnitOfWork(inner persistence.UnitOfWork, config RetryConfig, logger coreport.Logger) *RetryingUnitOfWork {
	return &RetryingUnitOfWork{
		inner:      inner,
		classifier: repository.NewErrorClassifier(),
		config:     config,
		logger:     logger,
	}
}

// Execute runs fn through the inner unit, replaying it while the failure
// classifies as lock contention or transient
func (u *RetryingUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos persistence.Repositories) error) error {
	var err error
	for attempt := 0; attempt < u.config.MaxAttempts; attempt++ {
		err = u.inner.Execute(ctx, fn)
		if err == nil {
			return nil
		}
		if !u.classifier.IsLockError(err) && !u.classifier.IsTransientError(err) {
			return err
		}

		backoff := u.backoff(attempt)
		u.logger.Warn("Retriable database error, replaying atomic unit", map[string]any{
			"attempt":      attempt + 1,
			"max_attempts": u.config.MaxAttempts,
			"class":        string(u.classifier.Classify(err)),
			"error":        err.Error(),
			"retry_after":  backoff.String(),
		})

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	u.logger.Error("Atomic unit failed after all retry attempts", map[string]any{
		"attempts": u.config.MaxAttempts,
		"error":    err.Error(),
	})
	return err
}

// Repositories returns the inner stores for plain reads
func (u *RetryingUnitOfWork) Repositories() persistence.Repositories {
	return u.inner.Repositories()
}

// backoff doubles the base interval per attempt, capped, with jitter to
// spread replays of colliding units
func (u *RetryingUnitOfWork) backoff(attempt int) time.Duration {
	backoff := u.config.BaseInterval * (1 << uint(attempt))
	if backoff > u.config.MaxInterval {
		backoff = u.config.MaxInterval
	}
	if u.config.JitterFactor > 0 {
		jitter := time.Duration(float64(backoff) * u.config.JitterFactor * (float64(time.Now().UnixNano()%100) / 100.0))
		backoff += jitter
	}
	return backoff
}
