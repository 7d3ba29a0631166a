package entity

import (
	"fmt"
	"time"

	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
)

// TaskStatus tracks the external execution lifecycle of a generation task
type TaskStatus string

// Task statuses
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusSuccess    TaskStatus = "success"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task is a commissioned generation job. The ledger engine creates it in
// the same atomic unit as the charge; execution and status updates belong to
// the task-execution collaborator. Tasks are logically append-only so their
// ledger history can never be orphaned.
type Task struct {
	ID          uint64     // Unique identifier for the task
	AccountID   uint64     // Paying account
	Type        string     // Generation task type, the pricing key
	ImageNumber int        // Number of requested outputs
	PriceUnit   PriceUnit  // Billing unit the charge was computed with
	Payload     string     // Opaque task attributes passed through by the caller
	Status      TaskStatus // Execution lifecycle status
	CreatedAt   time.Time  // When the task was created
}

// NewTask creates a pending task for a priced request
func NewTask(accountID uint64, taskType string, imageNumber int, unit PriceUnit, payload string, timeProvider coreport.TimeProvider) (*Task, error) {
	if accountID == 0 {
		return nil, errs.ErrAccountNotFound
	}
	if taskType == "" {
		return nil, fmt.Errorf("%w: task type cannot be empty", errs.ErrInvalidRequest)
	}
	if imageNumber <= 0 {
		return nil, fmt.Errorf("%w: image number must be positive, got %d", errs.ErrInvalidRequest, imageNumber)
	}

	return &Task{
		AccountID:   accountID,
		Type:        taskType,
		ImageNumber: imageNumber,
		PriceUnit:   unit,
		Payload:     payload,
		Status:      TaskStatusPending,
		CreatedAt:   timeProvider.Now(),
	}, nil
}

// IsTerminal reports whether the task has finished executing
func (t *Task) IsTerminal() bool {
	return t.Status == TaskStatusSuccess || t.Status == TaskStatusFailed
}
