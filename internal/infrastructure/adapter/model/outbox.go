package model

import (
	"time"
)

// OutboxMessage represents the database model for staged ledger events
type OutboxMessage struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	Topic      string    `gorm:"not null;size:100"`
	MessageKey string    `gorm:"not null;size:128"`
	Payload    string    `gorm:"type:text;not null"`
	Status     string    `gorm:"not null;size:50;index"`
	RetryCount int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName specifies the table name for OutboxMessage
func (OutboxMessage) TableName() string {
	return "outbox_messages"
}
