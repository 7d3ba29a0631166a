package payment

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	gatewayport "github.com/arman-rahimi/credit-ledger/internal/domain/port/gateway"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/logger"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/memory"
)

// stubClock is a settable TimeProvider so tests can move past order TTLs
type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stubClock) Since(t time.Time) time.Duration { return c.Now().Sub(t) }
func (c *stubClock) Until(t time.Time) time.Duration { return t.Sub(c.Now()) }

func (c *stubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeGateway scripts the provider's answers
type fakeGateway struct {
	mu           sync.Mutex
	createErr    error
	queryErr     error
	remote       map[string]*gatewayport.RemoteOrder
	createCalls  int
	queryCalls   int
	instructions gatewayport.PaymentInstructions
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		remote: make(map[string]*gatewayport.RemoteOrder),
		instructions: gatewayport.PaymentInstructions{
			QRCodeURL: "https://pay.example.com/qr/abc",
			PayURL:    "https://pay.example.com/pay/abc",
		},
	}
}

func (g *fakeGateway) CreateRemoteOrder(ctx context.Context, amount int64, outTradeNo string) (*gatewayport.PaymentInstructions, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	instructions := g.instructions
	return &instructions, nil
}

func (g *fakeGateway) QueryRemoteOrder(ctx context.Context, outTradeNo string) (*gatewayport.RemoteOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queryCalls++
	if g.queryErr != nil {
		return nil, g.queryErr
	}
	if remote, ok := g.remote[outTradeNo]; ok {
		r := *remote
		return &r, nil
	}
	return &gatewayport.RemoteOrder{OutTradeNo: outTradeNo, Status: gatewayport.RemoteStatusPending}, nil
}

// reportPaid scripts a paid answer for the trade number
func (g *fakeGateway) reportPaid(outTradeNo string, amount int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.remote[outTradeNo] = &gatewayport.RemoteOrder{
		OutTradeNo: outTradeNo,
		Amount:     amount,
		Status:     gatewayport.RemoteStatusPaid,
	}
}

// reportFailed scripts a closed answer for the trade number
func (g *fakeGateway) reportFailed(outTradeNo string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.remote[outTradeNo] = &gatewayport.RemoteOrder{
		OutTradeNo: outTradeNo,
		Status:     gatewayport.RemoteStatusFailed,
	}
}

var testPolicy = OrderPolicy{
	Provider:  "epay",
	MinAmount: 100,
	MaxAmount: 1000000,
	TTL:       30 * time.Minute,
}

// newTestService wires a payment service over a fresh in-memory store
func newTestService(t *testing.T, clock *stubClock) (*Service, *memory.Store, *fakeGateway) {
	t.Helper()

	store := memory.NewStore()
	gw := newFakeGateway()
	uow := memory.NewUnitOfWork(store, clock)

	var seq int
	tradeNoFn := func() string {
		seq++
		return fmt.Sprintf("CRG2025060100%04d", seq)
	}

	svc := NewService(uow, gw, clock, logger.NewNoopLogger(), testPolicy, tradeNoFn)
	return svc, store, gw
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
