package database

import (
	"fmt"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for all ledger tables
func Migrate(db *gorm.DB, logger coreport.Logger) error {
	logger.Info("Running database migrations", nil)

	err := db.AutoMigrate(
		&model.Account{},
		&model.Transaction{},
		&model.Task{},
		&model.Price{},
		&model.ChargeOrder{},
		&model.OutboxMessage{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	logger.Info("Database migrations completed", nil)
	return nil
}

// DefaultPrices returns the pricing rows a fresh deployment starts with.
// Every chargeable task type gets a row so no operation is dead on arrival.
func DefaultPrices() []model.Price {
	return []model.Price{
		{TaskType: entity.TaskTypeImageGeneration, Unit: string(entity.PriceUnitPerImage), Amount: 250},
		{TaskType: entity.TaskTypeImageAnalysis, Unit: string(entity.PriceUnitPerImage), Amount: 10},
	}
}

// SeedPrices inserts pricing rows that do not exist yet. Existing rows are
// left untouched so operators can adjust prices directly.
func SeedPrices(db *gorm.DB, prices []model.Price, logger coreport.Logger) error {
	for _, p := range prices {
		var count int64
		if err := db.Model(&model.Price{}).
			Where("task_type = ? AND unit = ?", p.TaskType, p.Unit).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check price row: %w", err)
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to seed price for %s: %w", p.TaskType, err)
		}
		logger.Info("Seeded price", map[string]any{
			"task_type": p.TaskType,
			"unit":      p.Unit,
			"amount":    p.Amount,
		})
	}
	return nil
}
