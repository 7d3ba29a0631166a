package payment

import (
	"context"
	"fmt"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
	gatewayport "github.com/arman-rahimi/credit-ledger/internal/domain/port/gateway"
)

// CreateOrderResult bundles the persisted order with the provider's payment
// instructions
type CreateOrderResult struct {
	Order        *entity.ChargeOrder
	Instructions *gatewayport.PaymentInstructions
}

// CreateOrder validates the amount against provider bounds, registers the
// order with the gateway and persists it in the paying state. If the gateway
// cannot be reached no order is persisted.
func (s *Service) CreateOrder(ctx context.Context, accountID uint64, amount int64) (*CreateOrderResult, error) {
	if err := entity.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if amount < s.policy.MinAmount || amount > s.policy.MaxAmount {
		return nil, errs.NewAmountOutOfRangeError(amount, s.policy.MinAmount, s.policy.MaxAmount)
	}

	repos := s.uow.Repositories()
	if _, err := repos.Accounts.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	outTradeNo := s.tradeNoFn()

	instructions, err := s.gateway.CreateRemoteOrder(ctx, amount, outTradeNo)
	if err != nil {
		s.logger.Error("Gateway order creation failed", map[string]any{
			"account_id":   accountID,
			"out_trade_no": outTradeNo,
			"amount":       amount,
			"error":        err.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrGatewayUnavailable, err.Error())
	}

	order, err := entity.NewChargeOrder(accountID, s.policy.Provider, outTradeNo, amount, s.policy.TTL, s.timeProvider)
	if err != nil {
		return nil, err
	}
	if err := repos.Orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Charge order created", map[string]any{
		"account_id":   accountID,
		"out_trade_no": outTradeNo,
		"amount":       entity.FormatAmount(amount),
		"expire_at":    order.ExpireAt,
	})
	return &CreateOrderResult{Order: order, Instructions: instructions}, nil
}
