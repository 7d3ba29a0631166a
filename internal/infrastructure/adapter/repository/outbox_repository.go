package repository

import (
	"context"
	"fmt"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// OutboxRepository implements OutboxRepository interface using GORM
type OutboxRepository struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewOutboxRepository creates a new OutboxRepository instance
func NewOutboxRepository(db *gorm.DB, logger coreport.Logger) *OutboxRepository {
	return &OutboxRepository{db: db, logger: logger}
}

// Create stages a pending event in the current atomic unit
func (r *OutboxRepository) Create(ctx context.Context, message *entity.OutboxMessage) error {
	msgModel := model.OutboxMessage{
		Topic:      message.Topic,
		MessageKey: message.MessageKey,
		Payload:    message.Payload,
		Status:     message.Status,
		RetryCount: message.RetryCount,
		CreatedAt:  message.CreatedAt,
	}

	result := r.db.WithContext(ctx).Create(&msgModel)
	if result.Error != nil {
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	message.ID = msgModel.ID
	return nil
}

// ListPending returns undelivered events, oldest first
func (r *OutboxRepository) ListPending(ctx context.Context, limit int) ([]*entity.OutboxMessage, error) {
	var models []model.OutboxMessage
	result := r.db.WithContext(ctx).
		Where("status = ?", entity.OutboxStatusPending).
		Order("id ASC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	messages := make([]*entity.OutboxMessage, 0, len(models))
	for i := range models {
		m := models[i]
		messages = append(messages, &entity.OutboxMessage{
			ID:         m.ID,
			Topic:      m.Topic,
			MessageKey: m.MessageKey,
			Payload:    m.Payload,
			Status:     m.Status,
			RetryCount: m.RetryCount,
			CreatedAt:  m.CreatedAt,
		})
	}
	return messages, nil
}

// MarkSent records successful delivery
func (r *OutboxRepository) MarkSent(ctx context.Context, id uint64) error {
	return r.updateStatus(ctx, id, entity.OutboxStatusSent)
}

// IncrementRetry bumps the retry count after a delivery failure
func (r *OutboxRepository) IncrementRetry(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Model(&model.OutboxMessage{}).
		Where("id = ?", id).
		Update("retry_count", gorm.Expr("retry_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return nil
}

// MarkFailed parks a message that exhausted its retries
func (r *OutboxRepository) MarkFailed(ctx context.Context, id uint64) error {
	return r.updateStatus(ctx, id, entity.OutboxStatusFailed)
}

func (r *OutboxRepository) updateStatus(ctx context.Context, id uint64, status string) error {
	result := r.db.WithContext(ctx).Model(&model.OutboxMessage{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return nil
}
