package billing

import (
	"context"
	"errors"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
	"github.com/arman-rahimi/credit-ledger/internal/domain/port/persistence"
)

// RefundResult reports the compensating ledger entry
type RefundResult struct {
	TransactionID uint64
	Amount        int64
	Balance       int64
}

// RefundTask credits back the full pre-charged amount of a failed task,
// exactly once. The existence check for a prior task_refund entry happens
// inside the same atomic unit as the credit, and a unique index on
// (task_id, category) backs it, so a second concurrent refund attempt
// observes AlreadyRefunded instead of crediting twice.
func (s *Service) RefundTask(ctx context.Context, taskID uint64, reason string) (*RefundResult, error) {
	var result RefundResult
	err := s.uow.Execute(ctx, func(ctx context.Context, repos persistence.Repositories) error {
		task, err := repos.Tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if task.Status == entity.TaskStatusSuccess {
			return errs.ErrNothingToRefund
		}

		charge, err := repos.Transactions.GetByTaskAndCategory(ctx, taskID, entity.CategoryTaskCharge)
		if err != nil {
			if errors.Is(err, errs.ErrTransactionNotFound) {
				return errs.ErrNothingToRefund
			}
			return err
		}

		prior, err := repos.Transactions.GetByTaskAndCategory(ctx, taskID, entity.CategoryTaskRefund)
		if err == nil {
			return errs.NewAlreadyRefundedError(taskID, prior.ID)
		}
		if !errors.Is(err, errs.ErrTransactionNotFound) {
			return err
		}

		account, err := repos.Accounts.GetByIDForUpdate(ctx, task.AccountID)
		if err != nil {
			return err
		}

		entry, err := entity.NewTaskRefund(task.AccountID, taskID, charge.Amount, account.Balance(), s.timeProvider)
		if err != nil {
			return err
		}
		if err := account.Credit(charge.Amount, s.timeProvider); err != nil {
			return err
		}
		if err := repos.Accounts.UpdateBalance(ctx, task.AccountID, account.Balance(), account.UpdatedAt); err != nil {
			return err
		}
		if err := repos.Transactions.Create(ctx, entry); err != nil {
			return err
		}
		if err := stageLedgerEvent(ctx, repos, entity.TopicLedgerRefunded, task.AccountID, entry, s.timeProvider); err != nil {
			return err
		}

		result = RefundResult{
			TransactionID: entry.ID,
			Amount:        charge.Amount,
			Balance:       entry.BalanceAfter,
		}
		return nil
	})
	if err != nil {
		if errs.IsAlreadyRefundedError(err) || errors.Is(err, errs.ErrNothingToRefund) || errs.IsNotFoundError(err) {
			s.logger.Warn("Refund not applied", map[string]any{
				"task_id": taskID,
				"reason":  reason,
				"error":   err.Error(),
			})
		} else {
			s.logger.Error("Refund failed", map[string]any{
				"task_id": taskID,
				"reason":  reason,
				"error":   err.Error(),
			})
		}
		return nil, err
	}

	s.logger.Info("Task refunded", map[string]any{
		"task_id":        taskID,
		"transaction_id": result.TransactionID,
		"amount":         entity.FormatAmount(result.Amount),
		"balance":        entity.FormatAmount(result.Balance),
		"reason":         reason,
	})
	return &result, nil
}
