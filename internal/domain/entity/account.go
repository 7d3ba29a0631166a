package entity

import (
	"time"

	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
)

// Account holds one user's prepaid balance. The balance is stored in minor
// currency units and is kept private so every mutation flows through the
// invariant-checking methods below.
type Account struct {
	ID        uint64    // Unique identifier for the account
	UserID    uint64    // Owning user, unique per account
	balance   int64     // Balance in minor units, never negative (private)
	CreatedAt time.Time // When the account was created
	UpdatedAt time.Time // When the account was last updated
}

// NewAccount creates an account for a user with a starting balance.
// The starting balance is policy-configurable (0 or a promotional grant).
func NewAccount(userID uint64, startingBalance int64, timeProvider coreport.TimeProvider) (*Account, error) {
	if userID == 0 {
		return nil, errs.ErrAccountNotFound
	}
	if startingBalance < 0 {
		return nil, errs.ErrInvalidAmount
	}

	now := timeProvider.Now()
	return &Account{
		UserID:    userID,
		balance:   startingBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Balance returns the current balance in minor units
func (a *Account) Balance() int64 {
	return a.balance
}

// SetBalance hydrates the balance directly (repository use only)
func (a *Account) SetBalance(balance int64) {
	a.balance = balance
}

// CanDebit reports whether the account covers the given amount
func (a *Account) CanDebit(amount int64) bool {
	return a.balance >= amount
}

// Debit subtracts the amount, rejecting any mutation that would leave the
// balance negative.
func (a *Account) Debit(amount int64, timeProvider coreport.TimeProvider) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if a.balance < amount {
		return errs.NewInsufficientBalanceError(a.ID, amount, a.balance)
	}
	a.balance -= amount
	a.UpdatedAt = timeProvider.Now()
	return nil
}

// Credit adds the amount to the balance
func (a *Account) Credit(amount int64, timeProvider coreport.TimeProvider) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	a.balance += amount
	a.UpdatedAt = timeProvider.Now()
	return nil
}
