package entity

import (
	"time"

	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
)

// OrderStatus is the persisted state of a top-up attempt. The client-side
// "input" phase never reaches storage; persisted orders start at paying.
type OrderStatus string

// Order statuses
const (
	OrderStatusPaying  OrderStatus = "paying"
	OrderStatusSuccess OrderStatus = "success"
	OrderStatusFailed  OrderStatus = "failed"
	OrderStatusExpired OrderStatus = "expired"
)

// validOrderTransitions is the full state machine: paying is the only
// non-terminal state.
var validOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPaying: {OrderStatusSuccess, OrderStatusFailed, OrderStatusExpired},
}

// CanTransition reports whether the state machine allows from -> to
func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range validOrderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status never transitions further
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusSuccess || s == OrderStatusFailed || s == OrderStatusExpired
}

// ChargeOrder is one top-up attempt against the external payment gateway.
// Orders are never deleted; terminal rows remain as the audit trail.
type ChargeOrder struct {
	ID                     uint64      // Unique identifier for the order
	AccountID              uint64      // Account being topped up
	Provider               string      // Gateway provider name
	OutTradeNo             string      // External reference, unique
	Amount                 int64       // Top-up amount in minor units
	Status                 OrderStatus // State machine position
	ConfirmedTransactionID *uint64     // Ledger entry of the one-time credit, set exactly once
	CreatedAt              time.Time   // When the order was created
	ExpireAt               time.Time   // Hard TTL after which the order can no longer be paid
}

// NewChargeOrder creates an order in the paying state with a fixed TTL
func NewChargeOrder(accountID uint64, provider, outTradeNo string, amount int64, ttl time.Duration, timeProvider coreport.TimeProvider) (*ChargeOrder, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	if outTradeNo == "" {
		return nil, errs.ErrOrderNotFound
	}

	now := timeProvider.Now()
	return &ChargeOrder{
		AccountID:  accountID,
		Provider:   provider,
		OutTradeNo: outTradeNo,
		Amount:     amount,
		Status:     OrderStatusPaying,
		CreatedAt:  now,
		ExpireAt:   now.Add(ttl),
	}, nil
}

// Expired reports whether the TTL has elapsed. Expiry is evaluated lazily:
// the stored status may still read paying until a query or confirmation
// attempt applies the transition.
func (o *ChargeOrder) Expired(now time.Time) bool {
	return !now.Before(o.ExpireAt)
}

// Payable reports whether a success confirmation may still credit the account
func (o *ChargeOrder) Payable(now time.Time) bool {
	return o.Status == OrderStatusPaying && !o.Expired(now)
}
