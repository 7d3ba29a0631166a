package query

import (
	"context"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
	"github.com/arman-rahimi/credit-ledger/internal/domain/port/persistence"
)

// Facade exposes read-only ledger projections for presentation code. It only
// reads, never locks, and is safe under any concurrency.
type Facade struct {
	uow          persistence.UnitOfWork
	timeProvider coreport.TimeProvider
}

// NewFacade creates the query facade
func NewFacade(uow persistence.UnitOfWork, timeProvider coreport.TimeProvider) *Facade {
	return &Facade{uow: uow, timeProvider: timeProvider}
}

// Balance returns the account's current balance in minor units
func (f *Facade) Balance(ctx context.Context, accountID uint64) (int64, error) {
	acc, err := f.uow.Repositories().Accounts.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return acc.Balance(), nil
}

// TransactionPage is one page of ledger history, newest first
type TransactionPage struct {
	Entries  []*entity.Transaction
	Total    int64
	Page     int
	PageSize int
}

// Transactions returns a page of the account's ledger history
func (f *Facade) Transactions(ctx context.Context, accountID uint64, page, pageSize int) (*TransactionPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	entries, total, err := f.uow.Repositories().Transactions.ListByAccount(ctx, accountID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &TransactionPage{Entries: entries, Total: total, Page: page, PageSize: pageSize}, nil
}

// DailySummary aggregates the account's ledger per calendar day and category
// over the trailing number of days
func (f *Facade) DailySummary(ctx context.Context, accountID uint64, days int) ([]entity.DailyTotal, error) {
	if days < 1 {
		days = 7
	}
	since := f.timeProvider.Now().AddDate(0, 0, -days)
	return f.uow.Repositories().Transactions.DailySummary(ctx, accountID, since)
}
