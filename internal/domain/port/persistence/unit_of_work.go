package persistence

import "context"

// Repositories bundles the stores bound to one atomic unit
type Repositories struct {
	Accounts     AccountRepository
	Transactions TransactionRepository
	Tasks        TaskRepository
	Prices       PriceRepository
	Orders       ChargeOrderRepository
	Outbox       OutboxRepository
}

// UnitOfWork is the transactional boundary every balance mutation runs
// inside. Execute runs fn with exclusive access to the rows it locks; on any
// error the whole unit rolls back, so partial ledger writes are never
// observable. Two units touching the same account or order serialize through
// the row locks taken by the ForUpdate reads; units on different accounts
// never block each other.
type UnitOfWork interface {
	// Execute runs fn inside one atomic unit and commits iff fn returns nil
	Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error

	// Repositories returns stores bound to the base connection for plain
	// reads that need no atomic unit
	Repositories() Repositories
}
