package payment

import (
	"context"
	"encoding/json"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
	"github.com/arman-rahimi/credit-ledger/internal/domain/port/persistence"
)

// ConfirmResult reports the crediting ledger entry. AlreadyConfirmed marks
// the idempotent no-op path: the entry id then refers to the credit recorded
// by the call that won the transition.
type ConfirmResult struct {
	TransactionID    uint64
	Amount           int64
	Balance          int64
	AlreadyConfirmed bool
}

// stageRechargeEvent appends the recharge outbox event in the same atomic
// unit as the credit
func (s *Service) stageRechargeEvent(ctx context.Context, repos persistence.Repositories, order *entity.ChargeOrder, entry *entity.Transaction) error {
	payload, err := json.Marshal(map[string]any{
		"out_trade_no":   order.OutTradeNo,
		"account_id":     order.AccountID,
		"transaction_id": entry.ID,
		"amount":         entry.Amount,
		"balance_after":  entry.BalanceAfter,
		"provider":       order.Provider,
		"created_at":     entry.CreatedAt,
	})
	if err != nil {
		return err
	}
	msg := entity.NewOutboxMessage(entity.TopicLedgerRecharged, order.OutTradeNo, string(payload), s.timeProvider)
	return repos.Outbox.Create(ctx, msg)
}

// ConfirmPayment performs the one-time credit for a paid order inside a
// single atomic unit. The order row is locked for the whole
// read-modify-write, so of two concurrent confirmations exactly one wins the
// paying -> success transition; the other observes success and returns the
// previously recorded transaction id. Expiry is applied lazily here: a
// confirmation arriving at or after expire_at expires the order instead of
// crediting.
func (s *Service) ConfirmPayment(ctx context.Context, outTradeNo string) (*ConfirmResult, error) {
	var result ConfirmResult
	var expired *entity.ChargeOrder
	err := s.uow.Execute(ctx, func(ctx context.Context, repos persistence.Repositories) error {
		expired = nil // the unit may be replayed
		order, err := repos.Orders.GetByOutTradeNoForUpdate(ctx, outTradeNo)
		if err != nil {
			return err
		}

		switch order.Status {
		case entity.OrderStatusSuccess:
			if order.ConfirmedTransactionID == nil {
				return errs.ErrInternalServer
			}
			prior, err := repos.Transactions.GetByID(ctx, *order.ConfirmedTransactionID)
			if err != nil {
				return err
			}
			result = ConfirmResult{
				TransactionID:    prior.ID,
				Amount:           prior.Amount,
				Balance:          prior.BalanceAfter,
				AlreadyConfirmed: true,
			}
			return nil

		case entity.OrderStatusFailed, entity.OrderStatusExpired:
			return errs.NewOrderNotPayableError(outTradeNo, string(order.Status))
		}

		now := s.timeProvider.Now()
		if order.Expired(now) {
			// Returning an error here would roll the transition back with the
			// rest of the unit. Commit it, report not-payable after.
			if err := repos.Orders.Transition(ctx, outTradeNo, entity.OrderStatusPaying, entity.OrderStatusExpired); err != nil {
				return err
			}
			expired = order
			return nil
		}

		account, err := repos.Accounts.GetByIDForUpdate(ctx, order.AccountID)
		if err != nil {
			return err
		}

		entry, err := entity.NewRecharge(order.AccountID, order.Amount, account.Balance(), s.timeProvider)
		if err != nil {
			return err
		}
		if err := account.Credit(order.Amount, s.timeProvider); err != nil {
			return err
		}
		if err := repos.Accounts.UpdateBalance(ctx, order.AccountID, account.Balance(), account.UpdatedAt); err != nil {
			return err
		}
		if err := repos.Transactions.Create(ctx, entry); err != nil {
			return err
		}
		if err := repos.Orders.MarkSuccess(ctx, outTradeNo, entry.ID, now); err != nil {
			return err
		}
		if err := s.stageRechargeEvent(ctx, repos, order, entry); err != nil {
			return err
		}

		result = ConfirmResult{
			TransactionID: entry.ID,
			Amount:        order.Amount,
			Balance:       entry.BalanceAfter,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if expired != nil {
		s.logger.Warn("Confirmation after expiry, order expired without credit", map[string]any{
			"out_trade_no": outTradeNo,
			"account_id":   expired.AccountID,
			"amount":       expired.Amount,
			"expire_at":    expired.ExpireAt,
		})
		return nil, errs.NewOrderNotPayableError(outTradeNo, string(entity.OrderStatusExpired))
	}

	if result.AlreadyConfirmed {
		s.logger.Debug("Duplicate confirmation ignored", map[string]any{
			"out_trade_no":   outTradeNo,
			"transaction_id": result.TransactionID,
		})
	} else {
		s.logger.Info("Payment confirmed, balance credited", map[string]any{
			"out_trade_no":   outTradeNo,
			"transaction_id": result.TransactionID,
			"amount":         entity.FormatAmount(result.Amount),
			"balance":        entity.FormatAmount(result.Balance),
		})
	}
	return &result, nil
}
