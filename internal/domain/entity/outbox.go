package entity

import (
	"time"

	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
)

// Outbox message statuses
const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)

// Ledger event topics
const (
	TopicLedgerCharged   = "ledger.charged"
	TopicLedgerRefunded  = "ledger.refunded"
	TopicLedgerRecharged = "ledger.recharged"
)

// OutboxMessage is a ledger event staged in the same atomic unit as the
// balance change it describes. A background sender drains pending rows to the
// broker; ledger correctness never depends on the broker being up.
type OutboxMessage struct {
	ID         uint64    // Unique identifier
	Topic      string    // Destination topic
	MessageKey string    // Partitioning key, usually the account id or trade no
	Payload    string    // JSON event body
	Status     string    // pending, sent or failed
	RetryCount int       // Delivery attempts so far
	CreatedAt  time.Time // When the event was staged
}

// NewOutboxMessage stages a pending ledger event
func NewOutboxMessage(topic, key, payload string, timeProvider coreport.TimeProvider) *OutboxMessage {
	return &OutboxMessage{
		Topic:      topic,
		MessageKey: key,
		Payload:    payload,
		Status:     OutboxStatusPending,
		CreatedAt:  timeProvider.Now(),
	}
}
