package database

import (
	"context"

	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
	"github.com/arman-rahimi/credit-ledger/internal/domain/port/persistence"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/repository"
	"gorm.io/gorm"
)

// UnitOfWork implements the unit of work pattern on top of GORM transactions.
// Execute runs the whole closure inside one database transaction; the row
// locks taken by the ForUpdate reads inside it serialize concurrent units on
// the same account or order.
type UnitOfWork struct {
	db           *gorm.DB
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewUnitOfWork creates a new UnitOfWork instance
func NewUnitOfWork(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) persistence.UnitOfWork {
	return &UnitOfWork{
		db:           db,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// buildRepositories binds all stores to the given connection or transaction
func (u *UnitOfWork) buildRepositories(db *gorm.DB) persistence.Repositories {
	return persistence.Repositories{
		Accounts:     repository.NewAccountRepository(db, u.timeProvider, u.logger),
		Transactions: repository.NewTransactionRepository(db, u.logger),
		Tasks:        repository.NewTaskRepository(db, u.logger),
		Prices:       repository.NewPriceRepository(db, u.logger),
		Orders:       repository.NewChargeOrderRepository(db, u.logger),
		Outbox:       repository.NewOutboxRepository(db, u.logger),
	}
}

// Execute runs fn inside one database transaction and commits iff fn
// returns nil
func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos persistence.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, u.buildRepositories(tx))
	})
}

// Repositories returns stores bound to the base connection for plain reads
func (u *UnitOfWork) Repositories() persistence.Repositories {
	return u.buildRepositories(u.db)
}
