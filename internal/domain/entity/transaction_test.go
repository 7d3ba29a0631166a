package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
)

func TestCategory_IsCredit(t *testing.T) {
	assert.False(t, CategoryTaskCharge.IsCredit())
	assert.False(t, CategoryAnalysisCharge.IsCredit())
	assert.True(t, CategoryTaskRefund.IsCredit())
	assert.True(t, CategoryRecharge.IsCredit())
}

func TestNewTaskCharge(t *testing.T) {
	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &stubClock{now: fixedTime}

	t.Run("should record debit with before and after snapshots", func(t *testing.T) {
		entry, err := NewTaskCharge(1, 7, 300, 1000, clock)

		require.NoError(t, err)
		assert.Equal(t, uint64(1), entry.AccountID)
		require.NotNil(t, entry.TaskID)
		assert.Equal(t, uint64(7), *entry.TaskID)
		assert.Equal(t, CategoryTaskCharge, entry.Category)
		assert.Equal(t, int64(300), entry.Amount)
		assert.Equal(t, int64(1000), entry.BalanceBefore)
		assert.Equal(t, int64(700), entry.BalanceAfter)
		assert.Equal(t, fixedTime, entry.CreatedAt)
	})

	t.Run("should reject debit below zero", func(t *testing.T) {
		_, err := NewTaskCharge(1, 7, 1001, 1000, clock)

		assert.ErrorIs(t, err, errs.ErrInsufficientBalance)
	})

	t.Run("should reject non-positive amount", func(t *testing.T) {
		_, err := NewTaskCharge(1, 7, 0, 1000, clock)

		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})
}

func TestNewTaskRefund(t *testing.T) {
	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &stubClock{now: fixedTime}

	entry, err := NewTaskRefund(1, 7, 300, 700, clock)

	require.NoError(t, err)
	require.NotNil(t, entry.TaskID)
	assert.Equal(t, uint64(7), *entry.TaskID)
	assert.Equal(t, CategoryTaskRefund, entry.Category)
	assert.Equal(t, int64(700), entry.BalanceBefore)
	assert.Equal(t, int64(1000), entry.BalanceAfter)
}

func TestNewAnalysisCharge(t *testing.T) {
	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &stubClock{now: fixedTime}

	entry, err := NewAnalysisCharge(1, 50, 200, clock)

	require.NoError(t, err)
	assert.Nil(t, entry.TaskID)
	assert.Equal(t, CategoryAnalysisCharge, entry.Category)
	assert.Equal(t, int64(150), entry.BalanceAfter)
}

func TestNewRecharge(t *testing.T) {
	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &stubClock{now: fixedTime}

	entry, err := NewRecharge(1, 5000, 150, clock)

	require.NoError(t, err)
	assert.Equal(t, CategoryRecharge, entry.Category)
	assert.Equal(t, int64(5150), entry.BalanceAfter)
	assert.Equal(t, RechargeStatusSuccess, entry.RechargeStatus)
}

func TestTransaction_Verify(t *testing.T) {
	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &stubClock{now: fixedTime}

	t.Run("should pass for consistent entries", func(t *testing.T) {
		charge, err := NewTaskCharge(1, 7, 300, 1000, clock)
		require.NoError(t, err)
		assert.NoError(t, charge.Verify())

		refund, err := NewTaskRefund(1, 7, 300, 700, clock)
		require.NoError(t, err)
		assert.NoError(t, refund.Verify())
	})

	t.Run("should fail for tampered snapshots", func(t *testing.T) {
		entry, err := NewTaskCharge(1, 7, 300, 1000, clock)
		require.NoError(t, err)

		entry.BalanceAfter = 999

		assert.Error(t, entry.Verify())
	})
}

func TestTransaction_Delta(t *testing.T) {
	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &stubClock{now: fixedTime}

	charge, err := NewTaskCharge(1, 7, 300, 1000, clock)
	require.NoError(t, err)
	assert.Equal(t, int64(-300), charge.Delta())

	refund, err := NewTaskRefund(1, 7, 300, 700, clock)
	require.NoError(t, err)
	assert.Equal(t, int64(300), refund.Delta())
}
