package persistence

import (
	"context"
	"time"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
)

// AccountRepository defines access to account rows
type AccountRepository interface {
	// Create persists a new account, filling its ID
	//
	// Possible errors:
	// - ErrAccountExists: if the user already has an account
	// - ErrDatabaseConnection: if the write fails
	Create(ctx context.Context, account *entity.Account) error

	// GetByID retrieves an account by ID
	//
	// Possible errors:
	// - ErrAccountNotFound: if no such account exists
	GetByID(ctx context.Context, id uint64) (*entity.Account, error)

	// GetByUserID retrieves the account owned by a user
	GetByUserID(ctx context.Context, userID uint64) (*entity.Account, error)

	// GetByIDForUpdate retrieves an account holding an exclusive row lock for
	// the remainder of the atomic unit. Every read-modify-write of a balance
	// goes through this method so charges, refunds and credits on the same
	// account serialize while different accounts stay fully parallel.
	GetByIDForUpdate(ctx context.Context, id uint64) (*entity.Account, error)

	// UpdateBalance writes the new balance for an account
	//
	// Possible errors:
	// - ErrAccountNotFound: if no such account exists
	UpdateBalance(ctx context.Context, id uint64, balance int64, updatedAt time.Time) error
}

// TransactionRepository defines access to the immutable ledger
type TransactionRepository interface {
	// Create appends a ledger entry, filling its ID. Entries are never
	// updated or deleted afterwards.
	Create(ctx context.Context, transaction *entity.Transaction) error

	// GetByID retrieves a ledger entry
	//
	// Possible errors:
	// - ErrTransactionNotFound: if no such entry exists
	GetByID(ctx context.Context, id uint64) (*entity.Transaction, error)

	// GetByTaskAndCategory retrieves the single entry of a category for a
	// task. Used for the refund idempotency check and to find the original
	// charge amount.
	//
	// Possible errors:
	// - ErrTransactionNotFound: if no matching entry exists
	GetByTaskAndCategory(ctx context.Context, taskID uint64, category entity.Category) (*entity.Transaction, error)

	// ListByAccount returns a page of entries for an account, newest first,
	// with the total entry count
	ListByAccount(ctx context.Context, accountID uint64, page, pageSize int) ([]*entity.Transaction, int64, error)

	// DailySummary aggregates amounts per calendar day and category since the
	// given time
	DailySummary(ctx context.Context, accountID uint64, since time.Time) ([]entity.DailyTotal, error)
}

// TaskRepository defines access to task rows. The ledger engine creates
// tasks and reads them back for refunds; execution status belongs to the
// task-execution collaborator.
type TaskRepository interface {
	// Create persists a new task, filling its ID
	Create(ctx context.Context, task *entity.Task) error

	// GetByID retrieves a task
	//
	// Possible errors:
	// - ErrTaskNotFound: if no such task exists
	GetByID(ctx context.Context, id uint64) (*entity.Task, error)

	// UpdateStatus records a lifecycle change reported by the execution
	// collaborator
	UpdateStatus(ctx context.Context, id uint64, status entity.TaskStatus) error
}

// PriceRepository is the read-only pricing lookup
type PriceRepository interface {
	// Get resolves the unit price for a task type and billing unit
	//
	// Possible errors:
	// - ErrPricingNotConfigured: if no price row exists
	Get(ctx context.Context, taskType string, unit entity.PriceUnit) (*entity.Price, error)
}

// ChargeOrderRepository defines access to payment orders
type ChargeOrderRepository interface {
	// Create persists a new order in the paying state, filling its ID
	Create(ctx context.Context, order *entity.ChargeOrder) error

	// GetByOutTradeNo retrieves an order by its external reference
	//
	// Possible errors:
	// - ErrOrderNotFound: if no such order exists
	GetByOutTradeNo(ctx context.Context, outTradeNo string) (*entity.ChargeOrder, error)

	// GetByOutTradeNoForUpdate retrieves an order holding an exclusive row
	// lock so two confirmations for the same order cannot interleave
	GetByOutTradeNoForUpdate(ctx context.Context, outTradeNo string) (*entity.ChargeOrder, error)

	// MarkSuccess performs the paying -> success transition and records the
	// crediting ledger entry on the order. The update is conditional on the
	// current status, so a lost race surfaces as ErrOrderNotPayable instead
	// of a double credit.
	MarkSuccess(ctx context.Context, outTradeNo string, transactionID uint64, paidAt time.Time) error

	// Transition performs a conditional status move per the state machine
	//
	// Possible errors:
	// - ErrOrderNotPayable: if the order is not in the from status anymore
	Transition(ctx context.Context, outTradeNo string, from, to entity.OrderStatus) error

	// ListStalePaying returns paying orders whose TTL elapsed before the
	// given time, for the background sweep
	ListStalePaying(ctx context.Context, before time.Time, limit int) ([]*entity.ChargeOrder, error)
}

// OutboxRepository defines access to staged ledger events
type OutboxRepository interface {
	// Create stages a pending event in the current atomic unit
	Create(ctx context.Context, message *entity.OutboxMessage) error

	// ListPending returns undelivered events, oldest first
	ListPending(ctx context.Context, limit int) ([]*entity.OutboxMessage, error)

	// MarkSent records successful delivery
	MarkSent(ctx context.Context, id uint64) error

	// IncrementRetry bumps the retry count after a delivery failure, leaving
	// the message pending for the next sweep
	IncrementRetry(ctx context.Context, id uint64) error

	// MarkFailed parks a message that exhausted its retries
	MarkFailed(ctx context.Context, id uint64) error
}
