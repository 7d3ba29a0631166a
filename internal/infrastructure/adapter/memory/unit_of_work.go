// Package memory provides an in-memory UnitOfWork used by usecase tests and
// local development. Execute serializes atomic units through one mutex and
// restores a snapshot of the whole store when the closure fails, so rollback
// semantics match the database implementation.
package memory

import (
	"context"
	"sync"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
	"github.com/arman-rahimi/credit-ledger/internal/domain/port/persistence"
)

// state holds every table. All fields are value maps so a shallow map copy
// plus pointer-field fixups yields an independent snapshot.
type state struct {
	accounts     map[uint64]entity.Account
	userIndex    map[uint64]uint64
	transactions map[uint64]entity.Transaction
	tasks        map[uint64]entity.Task
	prices       map[string]entity.Price
	orders       map[string]entity.ChargeOrder
	outbox       map[uint64]entity.OutboxMessage

	nextAccountID     uint64
	nextTransactionID uint64
	nextTaskID        uint64
	nextOutboxID      uint64
	nextOrderID       uint64
}

func newState() *state {
	return &state{
		accounts:     make(map[uint64]entity.Account),
		userIndex:    make(map[uint64]uint64),
		transactions: make(map[uint64]entity.Transaction),
		tasks:        make(map[uint64]entity.Task),
		prices:       make(map[string]entity.Price),
		orders:       make(map[string]entity.ChargeOrder),
		outbox:       make(map[uint64]entity.OutboxMessage),
	}
}

func copyUint64Ptr(p *uint64) *uint64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.userIndex {
		c.userIndex[k] = v
	}
	for k, v := range s.transactions {
		v.TaskID = copyUint64Ptr(v.TaskID)
		c.transactions[k] = v
	}
	for k, v := range s.tasks {
		c.tasks[k] = v
	}
	for k, v := range s.prices {
		c.prices[k] = v
	}
	for k, v := range s.orders {
		v.ConfirmedTransactionID = copyUint64Ptr(v.ConfirmedTransactionID)
		c.orders[k] = v
	}
	for k, v := range s.outbox {
		c.outbox[k] = v
	}
	c.nextAccountID = s.nextAccountID
	c.nextTransactionID = s.nextTransactionID
	c.nextTaskID = s.nextTaskID
	c.nextOutboxID = s.nextOutboxID
	c.nextOrderID = s.nextOrderID
	return c
}

// Store is the in-memory database
type Store struct {
	execMu sync.Mutex // serializes atomic units
	mu     sync.Mutex // guards state for individual operations
	st     *state

	failMu  sync.Mutex
	failOps map[string]error
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		st:      newState(),
		failOps: make(map[string]error),
	}
}

// FailOnce makes the named operation fail with err exactly once. Operation
// names follow "<table>.<method>" in lower case, e.g. "transactions.create".
func (s *Store) FailOnce(op string, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	s.failOps[op] = err
}

// failureFor pops an injected failure for the operation, if any
func (s *Store) failureFor(op string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if err, ok := s.failOps[op]; ok {
		delete(s.failOps, op)
		return err
	}
	return nil
}

// PutPrice seeds a pricing row
func (s *Store) PutPrice(price entity.Price) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.prices[priceKey(price.TaskType, price.Unit)] = price
}

func priceKey(taskType string, unit entity.PriceUnit) string {
	return taskType + "|" + string(unit)
}

// repos binds the repository implementations to this store
func (s *Store) repos() persistence.Repositories {
	return persistence.Repositories{
		Accounts:     &accountRepo{s},
		Transactions: &transactionRepo{s},
		Tasks:        &taskRepo{s},
		Prices:       &priceRepo{s},
		Orders:       &orderRepo{s},
		Outbox:       &outboxRepo{s},
	}
}

// UnitOfWork implements persistence.UnitOfWork on the in-memory store
type UnitOfWork struct {
	store        *Store
	timeProvider coreport.TimeProvider
}

// NewUnitOfWork creates an in-memory unit of work over the store
func NewUnitOfWork(store *Store, timeProvider coreport.TimeProvider) *UnitOfWork {
	return &UnitOfWork{store: store, timeProvider: timeProvider}
}

// Execute runs fn as one serialized atomic unit, restoring the pre-unit
// snapshot if fn returns an error
func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos persistence.Repositories) error) error {
	u.store.execMu.Lock()
	defer u.store.execMu.Unlock()

	u.store.mu.Lock()
	snapshot := u.store.st.clone()
	u.store.mu.Unlock()

	if err := fn(ctx, u.store.repos()); err != nil {
		u.store.mu.Lock()
		u.store.st = snapshot
		u.store.mu.Unlock()
		return err
	}
	return nil
}

// Repositories returns stores for plain reads outside any atomic unit
func (u *UnitOfWork) Repositories() persistence.Repositories {
	return u.store.repos()
}
