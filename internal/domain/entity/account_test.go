package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
)

func TestNewAccount(t *testing.T) {
	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &stubClock{now: fixedTime}

	t.Run("should create account with zero starting balance", func(t *testing.T) {
		acc, err := NewAccount(42, 0, clock)

		require.NoError(t, err)
		assert.Equal(t, uint64(42), acc.UserID)
		assert.Equal(t, int64(0), acc.Balance())
		assert.Equal(t, fixedTime, acc.CreatedAt)
		assert.Equal(t, fixedTime, acc.UpdatedAt)
	})

	t.Run("should create account with promotional grant", func(t *testing.T) {
		acc, err := NewAccount(42, 500, clock)

		require.NoError(t, err)
		assert.Equal(t, int64(500), acc.Balance())
	})

	t.Run("should reject zero user id", func(t *testing.T) {
		_, err := NewAccount(0, 0, clock)

		assert.Error(t, err)
	})

	t.Run("should reject negative starting balance", func(t *testing.T) {
		_, err := NewAccount(42, -1, clock)

		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})
}

func TestAccount_Debit(t *testing.T) {
	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	laterTime := fixedTime.Add(time.Minute)

	newFunded := func(balance int64) *Account {
		acc, err := NewAccount(1, balance, &stubClock{now: fixedTime})
		require.NoError(t, err)
		acc.ID = 1
		return acc
	}

	t.Run("should subtract amount and stamp update time", func(t *testing.T) {
		acc := newFunded(1000)

		err := acc.Debit(300, &stubClock{now: laterTime})

		require.NoError(t, err)
		assert.Equal(t, int64(700), acc.Balance())
		assert.Equal(t, laterTime, acc.UpdatedAt)
	})

	t.Run("should allow debit down to exactly zero", func(t *testing.T) {
		acc := newFunded(1000)

		err := acc.Debit(1000, &stubClock{now: laterTime})

		require.NoError(t, err)
		assert.Equal(t, int64(0), acc.Balance())
	})

	t.Run("should reject debit exceeding balance", func(t *testing.T) {
		acc := newFunded(1000)

		err := acc.Debit(1001, &stubClock{now: laterTime})

		assert.ErrorIs(t, err, errs.ErrInsufficientBalance)
		assert.Equal(t, int64(1000), acc.Balance())

		var detailed *errs.InsufficientBalanceError
		require.ErrorAs(t, err, &detailed)
		assert.Equal(t, int64(1001), detailed.Required)
		assert.Equal(t, int64(1000), detailed.Available)
	})

	t.Run("should reject non-positive amounts", func(t *testing.T) {
		acc := newFunded(1000)

		assert.ErrorIs(t, acc.Debit(0, &stubClock{now: laterTime}), errs.ErrInvalidAmount)
		assert.ErrorIs(t, acc.Debit(-5, &stubClock{now: laterTime}), errs.ErrInvalidAmount)
		assert.Equal(t, int64(1000), acc.Balance())
	})
}

func TestAccount_Credit(t *testing.T) {
	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should add amount to balance", func(t *testing.T) {
		acc, err := NewAccount(1, 100, &stubClock{now: fixedTime})
		require.NoError(t, err)

		err = acc.Credit(400, &stubClock{now: fixedTime})

		require.NoError(t, err)
		assert.Equal(t, int64(500), acc.Balance())
	})

	t.Run("should reject non-positive amounts", func(t *testing.T) {
		acc, err := NewAccount(1, 100, &stubClock{now: fixedTime})
		require.NoError(t, err)

		assert.ErrorIs(t, acc.Credit(0, &stubClock{now: fixedTime}), errs.ErrInvalidAmount)
		assert.Equal(t, int64(100), acc.Balance())
	})
}

func TestAccount_CanDebit(t *testing.T) {
	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	acc, err := NewAccount(1, 100, &stubClock{now: fixedTime})
	require.NoError(t, err)

	assert.True(t, acc.CanDebit(99))
	assert.True(t, acc.CanDebit(100))
	assert.False(t, acc.CanDebit(101))
}
