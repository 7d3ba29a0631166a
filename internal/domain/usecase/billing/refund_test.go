package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
)

func TestService_RefundTask(t *testing.T) {
	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	// chargeTask seeds an account, charges one task and returns both ids
	chargeTask := func(t *testing.T, svc *Service, accountID uint64) *ChargeResult {
		t.Helper()
		result, err := svc.ChargeForTask(ctx, accountID, ChargeRequest{
			TaskType:    "image_generation",
			ImageNumber: 2,
		})
		require.NoError(t, err)
		return result
	}

	t.Run("should credit back the full charged amount for a failed task", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store := newTestService(t, clock)
		accountID := seedAccount(t, store, clock, 42, 1000)
		charged := chargeTask(t, svc, accountID) // balance 500

		repos := svc.uow.Repositories()
		require.NoError(t, repos.Tasks.UpdateStatus(ctx, charged.TaskID, entity.TaskStatusFailed))

		result, err := svc.RefundTask(ctx, charged.TaskID, "generation failed")

		require.NoError(t, err)
		assert.Equal(t, int64(500), result.Amount)
		assert.Equal(t, int64(1000), result.Balance)

		entry, err := repos.Transactions.GetByID(ctx, result.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, entity.CategoryTaskRefund, entry.Category)
		require.NotNil(t, entry.TaskID)
		assert.Equal(t, charged.TaskID, *entry.TaskID)

		acc, err := repos.Accounts.GetByID(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), acc.Balance())
	})

	t.Run("should refund a pending task that never ran", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store := newTestService(t, clock)
		accountID := seedAccount(t, store, clock, 42, 1000)
		charged := chargeTask(t, svc, accountID)

		result, err := svc.RefundTask(ctx, charged.TaskID, "cancelled before start")

		require.NoError(t, err)
		assert.Equal(t, charged.Amount, result.Amount)
	})

	t.Run("should reject a second refund for the same task", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store := newTestService(t, clock)
		accountID := seedAccount(t, store, clock, 42, 1000)
		charged := chargeTask(t, svc, accountID)

		first, err := svc.RefundTask(ctx, charged.TaskID, "generation failed")
		require.NoError(t, err)

		_, err = svc.RefundTask(ctx, charged.TaskID, "retry click")

		assert.ErrorIs(t, err, errs.ErrAlreadyRefunded)

		var detailed *errs.AlreadyRefundedError
		require.ErrorAs(t, err, &detailed)
		assert.Equal(t, charged.TaskID, detailed.TaskID)
		assert.Equal(t, first.TransactionID, detailed.TransactionID)

		// Balance credited exactly once
		acc, err := svc.uow.Repositories().Accounts.GetByID(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), acc.Balance())
	})

	t.Run("should reject refund of a succeeded task", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store := newTestService(t, clock)
		accountID := seedAccount(t, store, clock, 42, 1000)
		charged := chargeTask(t, svc, accountID)

		repos := svc.uow.Repositories()
		require.NoError(t, repos.Tasks.UpdateStatus(ctx, charged.TaskID, entity.TaskStatusSuccess))

		_, err := svc.RefundTask(ctx, charged.TaskID, "user complaint")

		assert.ErrorIs(t, err, errs.ErrNothingToRefund)
	})

	t.Run("should reject refund when no charge entry exists", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store := newTestService(t, clock)
		accountID := seedAccount(t, store, clock, 42, 1000)

		// A task created outside the charge path carries no ledger entry
		task, err := entity.NewTask(accountID, "image_generation", 1, entity.PriceUnitPerImage, "", clock)
		require.NoError(t, err)
		require.NoError(t, svc.uow.Repositories().Tasks.Create(ctx, task))

		_, err = svc.RefundTask(ctx, task.ID, "orphan task")

		assert.ErrorIs(t, err, errs.ErrNothingToRefund)
	})

	t.Run("should return not found for unknown task", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, _ := newTestService(t, clock)

		_, err := svc.RefundTask(ctx, 999, "typo")

		assert.ErrorIs(t, err, errs.ErrTaskNotFound)
	})

	t.Run("concurrent refunds credit exactly once", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store := newTestService(t, clock)
		accountID := seedAccount(t, store, clock, 42, 1000)
		charged := chargeTask(t, svc, accountID) // balance 500

		const attempts = 6
		results := make(chan error, attempts)
		for i := 0; i < attempts; i++ {
			go func() {
				_, err := svc.RefundTask(ctx, charged.TaskID, "generation failed")
				results <- err
			}()
		}

		var succeeded int
		for i := 0; i < attempts; i++ {
			if err := <-results; err == nil {
				succeeded++
			} else {
				require.ErrorIs(t, err, errs.ErrAlreadyRefunded)
			}
		}
		assert.Equal(t, 1, succeeded)

		acc, err := svc.uow.Repositories().Accounts.GetByID(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), acc.Balance())
	})
}
