package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
	gatewayport "github.com/arman-rahimi/credit-ledger/internal/domain/port/gateway"
)

// OrderView is the reconciled status of one order
type OrderView struct {
	OutTradeNo string
	Amount     int64
	Status     entity.OrderStatus
	Confirmed  *ConfirmResult // set when this call or an earlier one credited the order
}

// OrderStatus returns the order's status, applying lazy expiry: a paying
// order whose TTL elapsed reads as expired and the transition is persisted.
func (s *Service) OrderStatus(ctx context.Context, outTradeNo string) (*OrderView, error) {
	repos := s.uow.Repositories()
	order, err := repos.Orders.GetByOutTradeNo(ctx, outTradeNo)
	if err != nil {
		return nil, err
	}

	if order.Status == entity.OrderStatusPaying && order.Expired(s.timeProvider.Now()) {
		if err := repos.Orders.Transition(ctx, outTradeNo, entity.OrderStatusPaying, entity.OrderStatusExpired); err != nil {
			// A concurrent confirmation may have won the transition; report
			// whatever the row says now.
			if !errors.Is(err, errs.ErrOrderNotPayable) {
				return nil, err
			}
		}
		order, err = repos.Orders.GetByOutTradeNo(ctx, outTradeNo)
		if err != nil {
			return nil, err
		}
	}

	return &OrderView{
		OutTradeNo: order.OutTradeNo,
		Amount:     order.Amount,
		Status:     order.Status,
	}, nil
}

// Reconcile aligns one order with the gateway's authoritative status. This is
// the primitive behind client polling and the background sweep: it may be
// called at any frequency, and each call is side-effect-idempotent except for
// the single state transition it can cause. Gateway responses are untrusted;
// a paid report with a mismatched amount or reference is ignored.
func (s *Service) Reconcile(ctx context.Context, outTradeNo string) (*OrderView, error) {
	repos := s.uow.Repositories()
	order, err := repos.Orders.GetByOutTradeNo(ctx, outTradeNo)
	if err != nil {
		return nil, err
	}

	if order.Status != entity.OrderStatusPaying {
		view := &OrderView{OutTradeNo: outTradeNo, Amount: order.Amount, Status: order.Status}
		if order.Status == entity.OrderStatusSuccess {
			confirmed, err := s.ConfirmPayment(ctx, outTradeNo)
			if err != nil {
				s.logger.Warn("Could not load recorded credit during reconciliation", map[string]any{
					"out_trade_no": outTradeNo,
					"error":        err.Error(),
				})
			} else {
				view.Confirmed = confirmed
			}
		}
		return view, nil
	}

	remote, err := s.gateway.QueryRemoteOrder(ctx, outTradeNo)
	if err != nil {
		s.logger.Warn("Gateway query failed during reconciliation", map[string]any{
			"out_trade_no": outTradeNo,
			"error":        err.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrGatewayUnavailable, err.Error())
	}

	switch remote.Status {
	case gatewayport.RemoteStatusPaid:
		if remote.OutTradeNo != order.OutTradeNo || remote.Amount != order.Amount {
			s.logger.Warn("Gateway success report rejected by validation", map[string]any{
				"out_trade_no":    order.OutTradeNo,
				"remote_trade_no": remote.OutTradeNo,
				"amount":          order.Amount,
				"remote_amount":   remote.Amount,
			})
			return &OrderView{OutTradeNo: outTradeNo, Amount: order.Amount, Status: order.Status}, nil
		}
		confirmed, err := s.ConfirmPayment(ctx, outTradeNo)
		if err != nil {
			if errors.Is(err, errs.ErrOrderNotPayable) {
				// Late success against an expired order: strictly rejected,
				// the WARN above the expiry transition is the audit trail.
				return s.OrderStatus(ctx, outTradeNo)
			}
			return nil, err
		}
		return &OrderView{
			OutTradeNo: outTradeNo,
			Amount:     order.Amount,
			Status:     entity.OrderStatusSuccess,
			Confirmed:  confirmed,
		}, nil

	case gatewayport.RemoteStatusFailed:
		if err := repos.Orders.Transition(ctx, outTradeNo, entity.OrderStatusPaying, entity.OrderStatusFailed); err != nil {
			if !errors.Is(err, errs.ErrOrderNotPayable) {
				return nil, err
			}
		}
		s.logger.Info("Order failed per gateway report", map[string]any{
			"out_trade_no": outTradeNo,
		})
		return s.OrderStatus(ctx, outTradeNo)

	default:
		// Still pending at the provider; apply lazy expiry locally.
		return s.OrderStatus(ctx, outTradeNo)
	}
}
