package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// TransactionRepository implements TransactionRepository interface using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *TransactionRepository) modelToEntity(txModel *model.Transaction) *entity.Transaction {
	return &entity.Transaction{
		ID:             txModel.ID,
		AccountID:      txModel.AccountID,
		TaskID:         txModel.TaskID,
		Category:       entity.Category(txModel.Category),
		Amount:         txModel.Amount,
		BalanceBefore:  txModel.BalanceBefore,
		BalanceAfter:   txModel.BalanceAfter,
		RechargeStatus: entity.RechargeStatus(txModel.RechargeStatus),
		CreatedAt:      txModel.CreatedAt,
	}
}

// Create appends a ledger entry and fills its ID. The unique index on
// (task_id, category) rejects a duplicate charge or refund that slipped past
// the in-transaction existence check.
func (r *TransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	txModel := model.Transaction{
		AccountID:      transaction.AccountID,
		TaskID:         transaction.TaskID,
		Category:       string(transaction.Category),
		Amount:         transaction.Amount,
		BalanceBefore:  transaction.BalanceBefore,
		BalanceAfter:   transaction.BalanceAfter,
		RechargeStatus: string(transaction.RechargeStatus),
		CreatedAt:      transaction.CreatedAt,
	}

	result := r.db.WithContext(ctx).Create(&txModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Duplicate ledger entry rejected by unique index", map[string]any{
				"account_id": transaction.AccountID,
				"category":   transaction.Category,
			})
			if transaction.Category == entity.CategoryTaskRefund && transaction.TaskID != nil {
				return errs.NewAlreadyRefundedError(*transaction.TaskID, 0)
			}
		}
		r.logger.Error("Database error when creating ledger entry", map[string]any{
			"account_id": transaction.AccountID,
			"category":   transaction.Category,
			"error":      result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	transaction.ID = txModel.ID
	return nil
}

// GetByID retrieves a ledger entry
func (r *TransactionRepository) GetByID(ctx context.Context, id uint64) (*entity.Transaction, error) {
	var txModel model.Transaction
	result := r.db.WithContext(ctx).First(&txModel, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return r.modelToEntity(&txModel), nil
}

// GetByTaskAndCategory retrieves the single entry of a category for a task
func (r *TransactionRepository) GetByTaskAndCategory(ctx context.Context, taskID uint64, category entity.Category) (*entity.Transaction, error) {
	var txModel model.Transaction
	result := r.db.WithContext(ctx).
		Where("task_id = ? AND category = ?", taskID, string(category)).
		First(&txModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return r.modelToEntity(&txModel), nil
}

// ListByAccount returns a page of entries for an account, newest first
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID uint64, page, pageSize int) ([]*entity.Transaction, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("account_id = ?", accountID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	var models []model.Transaction
	result := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models)
	if result.Error != nil {
		return nil, 0, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	entries := make([]*entity.Transaction, 0, len(models))
	for i := range models {
		entries = append(entries, r.modelToEntity(&models[i]))
	}
	return entries, total, nil
}

// DailySummary aggregates amounts per calendar day and category since the
// given time
func (r *TransactionRepository) DailySummary(ctx context.Context, accountID uint64, since time.Time) ([]entity.DailyTotal, error) {
	day := dayExpr(r.db)

	var rows []entity.DailyTotal
	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select(day+" AS day, category, SUM(amount) AS total, COUNT(*) AS count").
		Where("account_id = ? AND created_at >= ?", accountID, since).
		Group(day + ", category").
		Order("day DESC, category ASC").
		Scan(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return rows, nil
}
