package entity

import (
	"fmt"
	"time"

	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
)

// Category classifies a ledger entry
type Category string

// Ledger entry categories
const (
	CategoryTaskCharge     Category = "task_charge"
	CategoryTaskRefund     Category = "task_refund"
	CategoryAnalysisCharge Category = "analysis_charge"
	CategoryRecharge       Category = "recharge"
)

// RechargeStatus is only meaningful for recharge entries
type RechargeStatus string

// Recharge statuses
const (
	RechargeStatusPending RechargeStatus = "pending"
	RechargeStatusSuccess RechargeStatus = "success"
	RechargeStatusFailed  RechargeStatus = "failed"
)

// Transaction is one immutable ledger entry. Every balance mutation has
// exactly one Transaction recording the before/after snapshots; entries are
// never updated after creation.
type Transaction struct {
	ID             uint64         // Unique identifier for the ledger entry
	AccountID      uint64         // Account this entry belongs to
	TaskID         *uint64        // Back-reference to the originating task (nullable)
	Category       Category       // Kind of balance change
	Amount         int64          // Positive amount in minor units
	BalanceBefore  int64          // Balance snapshot before the change
	BalanceAfter   int64          // Balance snapshot after the change
	RechargeStatus RechargeStatus // Only set for recharge entries
	CreatedAt      time.Time      // When the entry was recorded
}

// IsCredit returns true if this category increases the balance
func (c Category) IsCredit() bool {
	return c == CategoryTaskRefund || c == CategoryRecharge
}

// newEntry builds an entry with consistent before/after snapshots
func newEntry(accountID uint64, category Category, amount, balanceBefore int64, timeProvider coreport.TimeProvider) (*Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	after := balanceBefore - amount
	if category.IsCredit() {
		after = balanceBefore + amount
	}
	if after < 0 {
		return nil, errs.NewInsufficientBalanceError(accountID, amount, balanceBefore)
	}

	return &Transaction{
		AccountID:     accountID,
		Category:      category,
		Amount:        amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  after,
		CreatedAt:     timeProvider.Now(),
	}, nil
}

// NewTaskCharge records the pre-charge debit for a priced task
func NewTaskCharge(accountID, taskID uint64, amount, balanceBefore int64, timeProvider coreport.TimeProvider) (*Transaction, error) {
	t, err := newEntry(accountID, CategoryTaskCharge, amount, balanceBefore, timeProvider)
	if err != nil {
		return nil, err
	}
	t.TaskID = &taskID
	return t, nil
}

// NewTaskRefund records the compensating credit for a failed task
func NewTaskRefund(accountID, taskID uint64, amount, balanceBefore int64, timeProvider coreport.TimeProvider) (*Transaction, error) {
	t, err := newEntry(accountID, CategoryTaskRefund, amount, balanceBefore, timeProvider)
	if err != nil {
		return nil, err
	}
	t.TaskID = &taskID
	return t, nil
}

// NewAnalysisCharge records the debit for an image-analysis call
func NewAnalysisCharge(accountID uint64, amount, balanceBefore int64, timeProvider coreport.TimeProvider) (*Transaction, error) {
	return newEntry(accountID, CategoryAnalysisCharge, amount, balanceBefore, timeProvider)
}

// NewRecharge records a confirmed top-up credit. Recharge entries are only
// written at the success transition, so the status is always success.
func NewRecharge(accountID uint64, amount, balanceBefore int64, timeProvider coreport.TimeProvider) (*Transaction, error) {
	t, err := newEntry(accountID, CategoryRecharge, amount, balanceBefore, timeProvider)
	if err != nil {
		return nil, err
	}
	t.RechargeStatus = RechargeStatusSuccess
	return t, nil
}

// Verify checks the before/after invariant against the category sign convention
func (t *Transaction) Verify() error {
	expected := t.BalanceBefore - t.Amount
	if t.Category.IsCredit() {
		expected = t.BalanceBefore + t.Amount
	}
	if t.BalanceAfter != expected {
		return fmt.Errorf("%w: entry %d has balance_after=%d, expected %d",
			errs.ErrInternalServer, t.ID, t.BalanceAfter, expected)
	}
	return nil
}

// Delta returns the signed balance change this entry recorded
func (t *Transaction) Delta() int64 {
	return t.BalanceAfter - t.BalanceBefore
}

// DailyTotal is one row of the per-day ledger aggregate
type DailyTotal struct {
	Day      string   // Calendar day in YYYY-MM-DD
	Category Category // Entry category
	Total    int64    // Sum of amounts in minor units
	Count    int64    // Number of entries
}
