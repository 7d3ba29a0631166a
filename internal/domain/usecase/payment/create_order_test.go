package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
)

func TestService_CreateOrder(t *testing.T) {
	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("should persist paying order with gateway instructions", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store, _ := newTestService(t, clock)
		accountID := seedAccount(t, store, clock, 42, 0)

		result, err := svc.CreateOrder(ctx, accountID, 5000)

		require.NoError(t, err)
		assert.Equal(t, entity.OrderStatusPaying, result.Order.Status)
		assert.Equal(t, int64(5000), result.Order.Amount)
		assert.Equal(t, "epay", result.Order.Provider)
		assert.Equal(t, fixedTime.Add(30*time.Minute), result.Order.ExpireAt)
		assert.NotEmpty(t, result.Order.OutTradeNo)
		require.NotNil(t, result.Instructions)
		assert.NotEmpty(t, result.Instructions.QRCodeURL)

		stored, err := svc.uow.Repositories().Orders.GetByOutTradeNo(ctx, result.Order.OutTradeNo)
		require.NoError(t, err)
		assert.Equal(t, entity.OrderStatusPaying, stored.Status)
	})

	t.Run("should reject amount below provider minimum", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store, _ := newTestService(t, clock)
		accountID := seedAccount(t, store, clock, 42, 0)

		_, err := svc.CreateOrder(ctx, accountID, 99)

		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})

	t.Run("should reject amount above provider maximum", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store, _ := newTestService(t, clock)
		accountID := seedAccount(t, store, clock, 42, 0)

		_, err := svc.CreateOrder(ctx, accountID, 1000001)

		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})

	t.Run("should reject non-positive amount", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store, _ := newTestService(t, clock)
		accountID := seedAccount(t, store, clock, 42, 0)

		_, err := svc.CreateOrder(ctx, accountID, 0)

		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})

	t.Run("should return not found for unknown account", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, _, _ := newTestService(t, clock)

		_, err := svc.CreateOrder(ctx, 999, 5000)

		assert.ErrorIs(t, err, errs.ErrAccountNotFound)
	})

	t.Run("should persist nothing when the gateway is down", func(t *testing.T) {
		clock := &stubClock{now: fixedTime}
		svc, store, gw := newTestService(t, clock)
		accountID := seedAccount(t, store, clock, 42, 0)
		gw.createErr = errors.New("connection refused")

		_, err := svc.CreateOrder(ctx, accountID, 5000)

		assert.ErrorIs(t, err, errs.ErrGatewayUnavailable)

		stale, err := svc.uow.Repositories().Orders.ListStalePaying(ctx, fixedTime.Add(time.Hour), 10)
		require.NoError(t, err)
		assert.Empty(t, stale)
	})
}
