package model

import (
	"time"
)

// Task represents the database model for billable tasks
type Task struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	AccountID   uint64    `gorm:"not null;index"`
	Type        string    `gorm:"not null;size:100"`
	ImageNumber int       `gorm:"not null"`
	PriceUnit   string    `gorm:"not null;size:50"`
	Payload     string    `gorm:"type:text"`
	Status      string    `gorm:"not null;size:50"`
	CreatedAt   time.Time `gorm:"not null"`

	// Define relationships
	Account Account `gorm:"foreignKey:AccountID;references:ID"`
}

// TableName specifies the table name for Task
func (Task) TableName() string {
	return "tasks"
}
