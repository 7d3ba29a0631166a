package billing

import (
	"context"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
	"github.com/arman-rahimi/credit-ledger/internal/domain/port/persistence"
)

// ChargeRequest describes a priced task to pre-charge
type ChargeRequest struct {
	TaskType    string
	ImageNumber int
	Payload     string // opaque task attributes, stored with the task
}

// ChargeResult reports the created task and ledger entry
type ChargeResult struct {
	TaskID        uint64
	TransactionID uint64
	Amount        int64
	Balance       int64
}

// ChargeForTask atomically verifies balance, debits it, creates the task and
// appends the task_charge ledger entry. The full cost of all requested
// outputs is collected up front. Either all three writes commit or none do.
func (s *Service) ChargeForTask(ctx context.Context, accountID uint64, req ChargeRequest) (*ChargeResult, error) {
	unitPrice, err := s.ResolvePrice(ctx, req.TaskType, entity.PriceUnitPerImage)
	if err != nil {
		return nil, err
	}

	totalCost, err := entity.CheckedMul(unitPrice, int64(req.ImageNumber))
	if err != nil {
		return nil, err
	}
	if err := entity.ValidateAmount(totalCost); err != nil {
		return nil, err
	}

	var result ChargeResult
	err = s.uow.Execute(ctx, func(ctx context.Context, repos persistence.Repositories) error {
		account, err := repos.Accounts.GetByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		if !account.CanDebit(totalCost) {
			return errs.NewInsufficientBalanceError(accountID, totalCost, account.Balance())
		}

		task, err := entity.NewTask(accountID, req.TaskType, req.ImageNumber, entity.PriceUnitPerImage, req.Payload, s.timeProvider)
		if err != nil {
			return err
		}
		if err := repos.Tasks.Create(ctx, task); err != nil {
			return err
		}

		entry, err := entity.NewTaskCharge(accountID, task.ID, totalCost, account.Balance(), s.timeProvider)
		if err != nil {
			return err
		}

		if err := account.Debit(totalCost, s.timeProvider); err != nil {
			return err
		}
		if err := repos.Accounts.UpdateBalance(ctx, accountID, account.Balance(), account.UpdatedAt); err != nil {
			return err
		}
		if err := repos.Transactions.Create(ctx, entry); err != nil {
			return err
		}
		if err := stageLedgerEvent(ctx, repos, entity.TopicLedgerCharged, accountID, entry, s.timeProvider); err != nil {
			return err
		}

		result = ChargeResult{
			TaskID:        task.ID,
			TransactionID: entry.ID,
			Amount:        totalCost,
			Balance:       entry.BalanceAfter,
		}
		return nil
	})
	if err != nil {
		if errs.IsInsufficientBalanceError(err) || errs.IsNotFoundError(err) {
			s.logger.Warn("Task charge rejected", map[string]any{
				"account_id":   accountID,
				"task_type":    req.TaskType,
				"image_number": req.ImageNumber,
				"cost":         totalCost,
				"error":        err.Error(),
			})
		} else {
			s.logger.Error("Task charge failed", map[string]any{
				"account_id": accountID,
				"task_type":  req.TaskType,
				"cost":       totalCost,
				"error":      err.Error(),
			})
		}
		return nil, err
	}

	s.logger.Info("Task charged", map[string]any{
		"account_id":     accountID,
		"task_id":        result.TaskID,
		"transaction_id": result.TransactionID,
		"amount":         entity.FormatAmount(result.Amount),
		"balance":        entity.FormatAmount(result.Balance),
	})
	return &result, nil
}

// AnalysisResult reports the ledger entry for an image-analysis debit
type AnalysisResult struct {
	TransactionID uint64
	Amount        int64
	Balance       int64
}

// ChargeForAnalysis debits the flat per-image analysis price without
// creating a task. The entry carries the analysis_charge category so the
// ledger distinguishes it from generation charges.
func (s *Service) ChargeForAnalysis(ctx context.Context, accountID uint64, imageNumber int) (*AnalysisResult, error) {
	unitPrice, err := s.ResolvePrice(ctx, entity.TaskTypeImageAnalysis, entity.PriceUnitPerImage)
	if err != nil {
		return nil, err
	}

	totalCost, err := entity.CheckedMul(unitPrice, int64(imageNumber))
	if err != nil {
		return nil, err
	}
	if err := entity.ValidateAmount(totalCost); err != nil {
		return nil, err
	}

	var result AnalysisResult
	err = s.uow.Execute(ctx, func(ctx context.Context, repos persistence.Repositories) error {
		account, err := repos.Accounts.GetByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if !account.CanDebit(totalCost) {
			return errs.NewInsufficientBalanceError(accountID, totalCost, account.Balance())
		}

		entry, err := entity.NewAnalysisCharge(accountID, totalCost, account.Balance(), s.timeProvider)
		if err != nil {
			return err
		}
		if err := account.Debit(totalCost, s.timeProvider); err != nil {
			return err
		}
		if err := repos.Accounts.UpdateBalance(ctx, accountID, account.Balance(), account.UpdatedAt); err != nil {
			return err
		}
		if err := repos.Transactions.Create(ctx, entry); err != nil {
			return err
		}
		if err := stageLedgerEvent(ctx, repos, entity.TopicLedgerCharged, accountID, entry, s.timeProvider); err != nil {
			return err
		}

		result = AnalysisResult{
			TransactionID: entry.ID,
			Amount:        totalCost,
			Balance:       entry.BalanceAfter,
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Analysis charge rejected", map[string]any{
			"account_id":   accountID,
			"image_number": imageNumber,
			"cost":         totalCost,
			"error":        err.Error(),
		})
		return nil, err
	}

	s.logger.Info("Analysis charged", map[string]any{
		"account_id":     accountID,
		"transaction_id": result.TransactionID,
		"amount":         entity.FormatAmount(result.Amount),
		"balance":        entity.FormatAmount(result.Balance),
	})
	return &result, nil
}
