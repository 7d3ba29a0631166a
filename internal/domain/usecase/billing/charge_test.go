package billing

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
)

func TestService_ChargeForTask(t *testing.T) {
	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("should debit full cost and create task with ledger entry", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store := newTestService(t, clock)
		accountID := seedAccount(t, store, clock, 42, 1000)

		result, err := svc.ChargeForTask(ctx, accountID, ChargeRequest{
			TaskType:    "image_generation",
			ImageNumber: 3,
			Payload:     `{"prompt":"a lighthouse"}`,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(750), result.Amount) // 250 * 3
		assert.Equal(t, int64(250), result.Balance)
		assert.NotZero(t, result.TaskID)
		assert.NotZero(t, result.TransactionID)

		// Balance, task and ledger entry all persisted
		repos := svc.uow.Repositories()
		acc, err := repos.Accounts.GetByID(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, int64(250), acc.Balance())

		task, err := repos.Tasks.GetByID(ctx, result.TaskID)
		require.NoError(t, err)
		assert.Equal(t, entity.TaskStatusPending, task.Status)
		assert.Equal(t, 3, task.ImageNumber)

		entry, err := repos.Transactions.GetByID(ctx, result.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, entity.CategoryTaskCharge, entry.Category)
		assert.Equal(t, int64(1000), entry.BalanceBefore)
		assert.Equal(t, int64(250), entry.BalanceAfter)
		require.NotNil(t, entry.TaskID)
		assert.Equal(t, result.TaskID, *entry.TaskID)

		// The ledger event was staged in the same unit
		pending, err := repos.Outbox.ListPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, entity.TopicLedgerCharged, pending[0].Topic)
	})

	t.Run("should reject charge on insufficient balance without writes", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store := newTestService(t, clock)
		accountID := seedAccount(t, store, clock, 42, 700)

		_, err := svc.ChargeForTask(ctx, accountID, ChargeRequest{
			TaskType:    "image_generation",
			ImageNumber: 3,
		})

		assert.ErrorIs(t, err, errs.ErrInsufficientBalance)

		var detailed *errs.InsufficientBalanceError
		require.ErrorAs(t, err, &detailed)
		assert.Equal(t, int64(750), detailed.Required)
		assert.Equal(t, int64(700), detailed.Available)

		// Balance untouched, nothing appended
		repos := svc.uow.Repositories()
		acc, err := repos.Accounts.GetByID(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, int64(700), acc.Balance())

		_, total, err := repos.Transactions.ListByAccount(ctx, accountID, 1, 10)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("should allow charge that empties the balance exactly", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store := newTestService(t, clock)
		accountID := seedAccount(t, store, clock, 42, 750)

		result, err := svc.ChargeForTask(ctx, accountID, ChargeRequest{
			TaskType:    "image_generation",
			ImageNumber: 3,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(0), result.Balance)
	})

	t.Run("should reject unknown task type", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store := newTestService(t, clock)
		accountID := seedAccount(t, store, clock, 42, 1000)

		_, err := svc.ChargeForTask(ctx, accountID, ChargeRequest{
			TaskType:    "video_generation",
			ImageNumber: 1,
		})

		assert.ErrorIs(t, err, errs.ErrPricingNotConfigured)
	})

	t.Run("should reject cost overflow", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store := newTestService(t, clock)
		store.PutPrice(entity.Price{TaskType: "huge", Unit: entity.PriceUnitPerImage, Amount: math.MaxInt64 / 2})
		accountID := seedAccount(t, store, clock, 42, 1000)

		_, err := svc.ChargeForTask(ctx, accountID, ChargeRequest{
			TaskType:    "huge",
			ImageNumber: 3,
		})

		assert.ErrorIs(t, err, errs.ErrAmountOverflow)
	})

	t.Run("should reject zero image number", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store := newTestService(t, clock)
		accountID := seedAccount(t, store, clock, 42, 1000)

		_, err := svc.ChargeForTask(ctx, accountID, ChargeRequest{
			TaskType:    "image_generation",
			ImageNumber: 0,
		})

		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})

	t.Run("should return not found for unknown account", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, _ := newTestService(t, clock)

		_, err := svc.ChargeForTask(ctx, 999, ChargeRequest{
			TaskType:    "image_generation",
			ImageNumber: 1,
		})

		assert.ErrorIs(t, err, errs.ErrAccountNotFound)
	})

	t.Run("should roll back the debit when the ledger write fails", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store := newTestService(t, clock)
		accountID := seedAccount(t, store, clock, 42, 1000)

		injected := errors.New("write conflict")
		store.FailOnce("transactions.create", injected)

		_, err := svc.ChargeForTask(ctx, accountID, ChargeRequest{
			TaskType:    "image_generation",
			ImageNumber: 3,
		})

		assert.ErrorIs(t, err, injected)

		// The unit rolled back as a whole: balance restored, no task, no entry
		repos := svc.uow.Repositories()
		acc, err := repos.Accounts.GetByID(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), acc.Balance())

		_, err = repos.Tasks.GetByID(ctx, 1)
		assert.ErrorIs(t, err, errs.ErrTaskNotFound)
	})

	t.Run("concurrent charges never overdraw the account", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store := newTestService(t, clock)
		accountID := seedAccount(t, store, clock, 42, 1000) // covers 4 charges of 250

		const attempts = 8
		results := make(chan error, attempts)
		for i := 0; i < attempts; i++ {
			go func() {
				_, err := svc.ChargeForTask(ctx, accountID, ChargeRequest{
					TaskType:    "image_generation",
					ImageNumber: 1,
				})
				results <- err
			}()
		}

		var succeeded, rejected int
		for i := 0; i < attempts; i++ {
			if err := <-results; err == nil {
				succeeded++
			} else {
				require.ErrorIs(t, err, errs.ErrInsufficientBalance)
				rejected++
			}
		}

		assert.Equal(t, 4, succeeded)
		assert.Equal(t, 4, rejected)

		acc, err := svc.uow.Repositories().Accounts.GetByID(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), acc.Balance())
	})
}

func TestService_ChargeForAnalysis(t *testing.T) {
	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("should debit flat per-image price without a task", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store := newTestService(t, clock)
		accountID := seedAccount(t, store, clock, 42, 100)

		result, err := svc.ChargeForAnalysis(ctx, accountID, 4)

		require.NoError(t, err)
		assert.Equal(t, int64(40), result.Amount) // 10 * 4
		assert.Equal(t, int64(60), result.Balance)

		entry, err := svc.uow.Repositories().Transactions.GetByID(ctx, result.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, entity.CategoryAnalysisCharge, entry.Category)
		assert.Nil(t, entry.TaskID)
	})

	t.Run("should reject analysis on insufficient balance", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store := newTestService(t, clock)
		accountID := seedAccount(t, store, clock, 42, 5)

		_, err := svc.ChargeForAnalysis(ctx, accountID, 1)

		assert.ErrorIs(t, err, errs.ErrInsufficientBalance)
	})
}

func TestService_ResolvePrice(t *testing.T) {
	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("should return configured unit price", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, _ := newTestService(t, clock)

		price, err := svc.ResolvePrice(ctx, "image_generation", entity.PriceUnitPerImage)

		require.NoError(t, err)
		assert.Equal(t, int64(250), price)
	})

	t.Run("should reject unsupported billing unit", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, _ := newTestService(t, clock)

		_, err := svc.ResolvePrice(ctx, "image_generation", entity.PriceUnit("per_second"))

		assert.ErrorIs(t, err, errs.ErrUnsupportedPricingModel)
	})
}
