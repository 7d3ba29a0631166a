package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// TaskRepository implements TaskRepository interface using GORM
type TaskRepository struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewTaskRepository creates a new TaskRepository instance
func NewTaskRepository(db *gorm.DB, logger coreport.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

func (r *TaskRepository) modelToEntity(taskModel *model.Task) *entity.Task {
	return &entity.Task{
		ID:          taskModel.ID,
		AccountID:   taskModel.AccountID,
		Type:        taskModel.Type,
		ImageNumber: taskModel.ImageNumber,
		PriceUnit:   entity.PriceUnit(taskModel.PriceUnit),
		Payload:     taskModel.Payload,
		Status:      entity.TaskStatus(taskModel.Status),
		CreatedAt:   taskModel.CreatedAt,
	}
}

// Create persists a new task and fills its ID
func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) error {
	taskModel := model.Task{
		AccountID:   task.AccountID,
		Type:        task.Type,
		ImageNumber: task.ImageNumber,
		PriceUnit:   string(task.PriceUnit),
		Payload:     task.Payload,
		Status:      string(task.Status),
		CreatedAt:   task.CreatedAt,
	}

	result := r.db.WithContext(ctx).Create(&taskModel)
	if result.Error != nil {
		r.logger.Error("Database error when creating task", map[string]any{
			"account_id": task.AccountID,
			"task_type":  task.Type,
			"error":      result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	task.ID = taskModel.ID
	return nil
}

// GetByID retrieves a task
func (r *TaskRepository) GetByID(ctx context.Context, id uint64) (*entity.Task, error) {
	var taskModel model.Task
	result := r.db.WithContext(ctx).First(&taskModel, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTaskNotFound
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return r.modelToEntity(&taskModel), nil
}

// UpdateStatus records a lifecycle change reported by the execution collaborator
func (r *TaskRepository) UpdateStatus(ctx context.Context, id uint64, status entity.TaskStatus) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Update("status", string(status))
	if result.Error != nil {
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return errs.ErrTaskNotFound
	}
	return nil
}
