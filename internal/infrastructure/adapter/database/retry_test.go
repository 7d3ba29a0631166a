package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arman-rahimi/credit-ledger/internal/domain/port/persistence"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/logger"
)

// flakyUnitOfWork fails Execute with scripted errors before letting the
// closure run
type flakyUnitOfWork struct {
	failures []error
	calls    int
}

func (u *flakyUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos persistence.Repositories) error) error {
	u.calls++
	if len(u.failures) > 0 {
		err := u.failures[0]
		u.failures = u.failures[1:]
		return err
	}
	return fn(ctx, persistence.Repositories{})
}

func (u *flakyUnitOfWork) Repositories() persistence.Repositories {
	return persistence.Repositories{}
}

func TestRetryingUnitOfWork_Execute(t *testing.T) {
	ctx := context.Background()
	fastConfig := RetryConfig{
		MaxAttempts:  3,
		BaseInterval: time.Millisecond,
		MaxInterval:  time.Millisecond,
	}

	t.Run("replays the unit after a deadlock and succeeds", func(t *testing.T) {
		inner := &flakyUnitOfWork{failures: []error{errors.New("deadlock detected")}}
		uow := NewRetryingUnitOfWork(inner, fastConfig, logger.NewNoopLogger())

		ran := 0
		err := uow.Execute(ctx, func(ctx context.Context, repos persistence.Repositories) error {
			ran++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 2, inner.calls)
		assert.Equal(t, 1, ran)
	})

	t.Run("replays on serialization failure", func(t *testing.T) {
		inner := &flakyUnitOfWork{failures: []error{errors.New("ERROR: could not serialize access due to concurrent update")}}
		uow := NewRetryingUnitOfWork(inner, fastConfig, logger.NewNoopLogger())

		err := uow.Execute(ctx, func(ctx context.Context, repos persistence.Repositories) error {
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 2, inner.calls)
	})

	t.Run("does not replay unique violations", func(t *testing.T) {
		dup := errors.New(`duplicate key value violates unique constraint "idx_accounts_user_id"`)
		inner := &flakyUnitOfWork{failures: []error{dup}}
		uow := NewRetryingUnitOfWork(inner, fastConfig, logger.NewNoopLogger())

		err := uow.Execute(ctx, func(ctx context.Context, repos persistence.Repositories) error {
			return nil
		})

		assert.ErrorIs(t, err, dup)
		assert.Equal(t, 1, inner.calls)
	})

	t.Run("does not replay business errors from the closure", func(t *testing.T) {
		inner := &flakyUnitOfWork{}
		uow := NewRetryingUnitOfWork(inner, fastConfig, logger.NewNoopLogger())

		businessErr := errors.New("order is not payable")
		err := uow.Execute(ctx, func(ctx context.Context, repos persistence.Repositories) error {
			return businessErr
		})

		assert.ErrorIs(t, err, businessErr)
		assert.Equal(t, 1, inner.calls)
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		reset := errors.New("read tcp: connection reset by peer")
		inner := &flakyUnitOfWork{failures: []error{reset, reset, reset, reset}}
		uow := NewRetryingUnitOfWork(inner, fastConfig, logger.NewNoopLogger())

		err := uow.Execute(ctx, func(ctx context.Context, repos persistence.Repositories) error {
			return nil
		})

		assert.ErrorIs(t, err, reset)
		assert.Equal(t, 3, inner.calls)
	})

	t.Run("stops waiting when the context is cancelled", func(t *testing.T) {
		inner := &flakyUnitOfWork{failures: []error{errors.New("deadlock detected")}}
		uow := NewRetryingUnitOfWork(inner, RetryConfig{
			MaxAttempts:  3,
			BaseInterval: time.Minute,
			MaxInterval:  time.Minute,
		}, logger.NewNoopLogger())

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := uow.Execute(cancelled, func(ctx context.Context, repos persistence.Repositories) error {
			return nil
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, inner.calls)
	})
}
