package model

import (
	"time"
)

// Transaction represents the database model for ledger entries. One charge
// per (task_id, category) is enforced at the schema level so a retried
// charge or refund can never insert twice.
type Transaction struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	AccountID      uint64    `gorm:"not null;index:idx_tx_account_created,priority:1"`
	TaskID         *uint64   `gorm:"uniqueIndex:uniq_tx_task_category"`
	Category       string    `gorm:"not null;size:50;uniqueIndex:uniq_tx_task_category"`
	Amount         int64     `gorm:"not null"` // Amount in cents, always positive
	BalanceBefore  int64     `gorm:"not null"`
	BalanceAfter   int64     `gorm:"not null"`
	RechargeStatus string    `gorm:"size:50"`
	CreatedAt      time.Time `gorm:"not null;index:idx_tx_account_created,priority:2"`

	// Define relationships
	Account Account `gorm:"foreignKey:AccountID;references:ID"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}
