package model

import (
	"time"
)

// ChargeOrder represents the database model for payment orders. The unique
// index on out_trade_no makes the gateway reference the idempotency key for
// the whole payment flow.
type ChargeOrder struct {
	ID                     uint64    `gorm:"primaryKey;autoIncrement"`
	AccountID              uint64    `gorm:"not null;index"`
	Provider               string    `gorm:"not null;size:50"`
	OutTradeNo             string    `gorm:"uniqueIndex;not null;size:64"`
	Amount                 int64     `gorm:"not null"` // Amount in cents
	Status                 string    `gorm:"not null;size:50;index:idx_order_status_expire,priority:1"`
	ConfirmedTransactionID *uint64   ``
	CreatedAt              time.Time `gorm:"not null"`
	ExpireAt               time.Time `gorm:"not null;index:idx_order_status_expire,priority:2"`
	ConfirmedAt            *time.Time

	// Define relationships
	Account Account `gorm:"foreignKey:AccountID;references:ID"`
}

// TableName specifies the table name for ChargeOrder
func (ChargeOrder) TableName() string {
	return "charge_orders"
}
