package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/logger"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/memory"
)

// stubClock is a fixed-time TimeProvider for deterministic tests
type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time                  { return c.now }
func (c *stubClock) Since(t time.Time) time.Duration { return c.now.Sub(t) }
func (c *stubClock) Until(t time.Time) time.Duration { return t.Sub(c.now) }

// newTestService wires a billing service over a fresh in-memory store with
// the image generation and analysis prices seeded.
func newTestService(t *testing.T, clock *stubClock) (*Service, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	store.PutPrice(entity.Price{TaskType: "image_generation", Unit: entity.PriceUnitPerImage, Amount: 250})
	store.PutPrice(entity.Price{TaskType: entity.TaskTypeImageAnalysis, Unit: entity.PriceUnitPerImage, Amount: 10})

	uow := memory.NewUnitOfWork(store, clock)
	return NewService(uow, clock, logger.NewNoopLogger()), store
}

// seedAccount provisions an account with the given balance and returns its id
func seedAccount(t *testing.T, store *memory.Store, clock *stubClock, userID uint64, balance int64) uint64 {
	t.Helper()

	acc, err := entity.NewAccount(userID, balance, clock)
	require.NoError(t, err)

	uow := memory.NewUnitOfWork(store, clock)
	require.NoError(t, uow.Repositories().Accounts.Create(context.Background(), acc))
	return acc.ID
}
