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

// ChargeOrderRepository implements ChargeOrderRepository interface using GORM
type ChargeOrderRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewChargeOrderRepository creates a new ChargeOrderRepository instance
func NewChargeOrderRepository(db *gorm.DB, logger coreport.Logger) *ChargeOrderRepository {
	return &ChargeOrderRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *ChargeOrderRepository) modelToEntity(orderModel *model.ChargeOrder) *entity.ChargeOrder {
	return &entity.ChargeOrder{
		ID:                     orderModel.ID,
		AccountID:              orderModel.AccountID,
		Provider:               orderModel.Provider,
		OutTradeNo:             orderModel.OutTradeNo,
		Amount:                 orderModel.Amount,
		Status:                 entity.OrderStatus(orderModel.Status),
		ConfirmedTransactionID: orderModel.ConfirmedTransactionID,
		CreatedAt:              orderModel.CreatedAt,
		ExpireAt:               orderModel.ExpireAt,
	}
}

func (r *ChargeOrderRepository) getByOutTradeNo(ctx context.Context, outTradeNo string, locked bool) (*entity.ChargeOrder, error) {
	db := r.db.WithContext(ctx)
	if locked {
		db = forUpdate(db)
	}

	var orderModel model.ChargeOrder
	result := db.Where("out_trade_no = ?", outTradeNo).First(&orderModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			r.logger.Warn("Order not found", map[string]any{
				"out_trade_no": outTradeNo,
			})
			return nil, errs.ErrOrderNotFound
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return r.modelToEntity(&orderModel), nil
}

// Create persists a new order in the paying state and fills its ID
func (r *ChargeOrderRepository) Create(ctx context.Context, order *entity.ChargeOrder) error {
	orderModel := model.ChargeOrder{
		AccountID:  order.AccountID,
		Provider:   order.Provider,
		OutTradeNo: order.OutTradeNo,
		Amount:     order.Amount,
		Status:     string(order.Status),
		CreatedAt:  order.CreatedAt,
		ExpireAt:   order.ExpireAt,
	}

	result := r.db.WithContext(ctx).Create(&orderModel)
	if result.Error != nil {
		r.logger.Error("Database error when creating order", map[string]any{
			"out_trade_no": order.OutTradeNo,
			"error":        result.Error.Error(),
		})
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			return fmt.Errorf("%w: out_trade_no %s already exists", errs.ErrInvalidRequest, order.OutTradeNo)
		}
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	order.ID = orderModel.ID
	return nil
}

// GetByOutTradeNo retrieves an order by its external reference
func (r *ChargeOrderRepository) GetByOutTradeNo(ctx context.Context, outTradeNo string) (*entity.ChargeOrder, error) {
	return r.getByOutTradeNo(ctx, outTradeNo, false)
}

// GetByOutTradeNoForUpdate retrieves an order holding an exclusive row lock
func (r *ChargeOrderRepository) GetByOutTradeNoForUpdate(ctx context.Context, outTradeNo string) (*entity.ChargeOrder, error) {
	return r.getByOutTradeNo(ctx, outTradeNo, true)
}

// MarkSuccess performs the conditional paying -> success transition and
// records the crediting ledger entry on the order. RowsAffected distinguishes
// the winner of a confirmation race from the loser.
func (r *ChargeOrderRepository) MarkSuccess(ctx context.Context, outTradeNo string, transactionID uint64, paidAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.ChargeOrder{}).
		Where("out_trade_no = ? AND status = ?", outTradeNo, string(entity.OrderStatusPaying)).
		Updates(map[string]interface{}{
			"status":                   string(entity.OrderStatusSuccess),
			"confirmed_transaction_id": transactionID,
			"confirmed_at":             paidAt,
		})
	if result.Error != nil {
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return errs.NewOrderNotPayableError(outTradeNo, "not in paying state")
	}
	return nil
}

// Transition performs a conditional status move per the state machine
func (r *ChargeOrderRepository) Transition(ctx context.Context, outTradeNo string, from, to entity.OrderStatus) error {
	if !entity.CanTransition(from, to) {
		return errs.NewOrderNotPayableError(outTradeNo, string(from))
	}

	result := r.db.WithContext(ctx).Model(&model.ChargeOrder{}).
		Where("out_trade_no = ? AND status = ?", outTradeNo, string(from)).
		Update("status", string(to))
	if result.Error != nil {
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return errs.NewOrderNotPayableError(outTradeNo, "not in "+string(from)+" state")
	}

	r.logger.Debug("Order status transitioned", map[string]any{
		"out_trade_no": outTradeNo,
		"from":         from,
		"to":           to,
	})
	return nil
}

// ListStalePaying returns paying orders whose TTL elapsed before the given time
func (r *ChargeOrderRepository) ListStalePaying(ctx context.Context, before time.Time, limit int) ([]*entity.ChargeOrder, error) {
	var models []model.ChargeOrder
	result := r.db.WithContext(ctx).
		Where("status = ? AND expire_at <= ?", string(entity.OrderStatusPaying), before).
		Order("expire_at ASC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	orders := make([]*entity.ChargeOrder, 0, len(models))
	for i := range models {
		orders = append(orders, r.modelToEntity(&models[i]))
	}
	return orders, nil
}
