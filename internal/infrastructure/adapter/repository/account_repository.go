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

// AccountRepository implements AccountRepository interface using GORM
type AccountRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewAccountRepository creates a new AccountRepository instance
func NewAccountRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *AccountRepository {
	return &AccountRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// modelToEntity converts an account model to an entity
func (r *AccountRepository) modelToEntity(accountModel *model.Account) *entity.Account {
	account := &entity.Account{
		ID:        accountModel.ID,
		UserID:    accountModel.UserID,
		CreatedAt: accountModel.CreatedAt,
		UpdatedAt: accountModel.UpdatedAt,
	}
	account.SetBalance(accountModel.Balance)
	return account
}

// handleDatabaseError standardizes database error handling
func (r *AccountRepository) handleDatabaseError(operation string, err error, id uint64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Warn("Account not found", map[string]any{
			"account_id": id,
		})
		return errs.ErrAccountNotFound
	}

	r.logger.Error(fmt.Sprintf("Database error when %s", operation), map[string]any{
		"account_id": id,
		"error":      err.Error(),
	})

	if r.errorClassifier.IsDuplicateKeyError(err) {
		return errs.ErrAccountExists
	}

	return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
}

// Create persists a new account and fills its ID
func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	accountModel := model.Account{
		UserID:    account.UserID,
		Balance:   account.Balance(),
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}

	result := r.db.WithContext(ctx).Create(&accountModel)
	if result.Error != nil {
		return r.handleDatabaseError("creating account", result.Error, account.UserID)
	}

	account.ID = accountModel.ID
	return nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uint64) (*entity.Account, error) {
	var accountModel model.Account
	result := r.db.WithContext(ctx).First(&accountModel, id)
	if result.Error != nil {
		return nil, r.handleDatabaseError("getting account", result.Error, id)
	}
	return r.modelToEntity(&accountModel), nil
}

// GetByUserID retrieves the account owned by a user
func (r *AccountRepository) GetByUserID(ctx context.Context, userID uint64) (*entity.Account, error) {
	var accountModel model.Account
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&accountModel)
	if result.Error != nil {
		return nil, r.handleDatabaseError("getting account by user", result.Error, userID)
	}
	return r.modelToEntity(&accountModel), nil
}

// GetByIDForUpdate retrieves an account holding an exclusive row lock for the
// rest of the enclosing transaction
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*entity.Account, error) {
	var accountModel model.Account
	result := forUpdate(r.db.WithContext(ctx)).First(&accountModel, id)
	if result.Error != nil {
		return nil, r.handleDatabaseError("locking account", result.Error, id)
	}
	return r.modelToEntity(&accountModel), nil
}

// UpdateBalance writes the new balance for an account
func (r *AccountRepository) UpdateBalance(ctx context.Context, id uint64, balance int64, updatedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"balance":    balance,
			"updated_at": updatedAt,
		})

	if result.Error != nil {
		return r.handleDatabaseError("updating balance", result.Error, id)
	}
	if result.RowsAffected == 0 {
		r.logger.Warn("Account not found during balance update", map[string]any{
			"account_id": id,
		})
		return errs.ErrAccountNotFound
	}
	return nil
}
