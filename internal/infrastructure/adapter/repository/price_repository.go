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

// PriceRepository implements the read-only pricing lookup using GORM
type PriceRepository struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewPriceRepository creates a new PriceRepository instance
func NewPriceRepository(db *gorm.DB, logger coreport.Logger) *PriceRepository {
	return &PriceRepository{db: db, logger: logger}
}

// Get resolves the unit price for a task type and billing unit
func (r *PriceRepository) Get(ctx context.Context, taskType string, unit entity.PriceUnit) (*entity.Price, error) {
	var priceModel model.Price
	result := r.db.WithContext(ctx).
		Where("task_type = ? AND unit = ?", taskType, string(unit)).
		First(&priceModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			r.logger.Warn("No price configured", map[string]any{
				"task_type": taskType,
				"unit":      unit,
			})
			return nil, fmt.Errorf("%w: task type %q", errs.ErrPricingNotConfigured, taskType)
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return &entity.Price{
		TaskType: priceModel.TaskType,
		Unit:     entity.PriceUnit(priceModel.Unit),
		Amount:   priceModel.Amount,
	}, nil
}
