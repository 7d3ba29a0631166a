package memory

import (
	"context"
	"sort"
	"time"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
)

// accountRepo implements persistence.AccountRepository
type accountRepo struct {
	s *Store
}

func (r *accountRepo) Create(ctx context.Context, account *entity.Account) error {
	if err := r.s.failureFor("accounts.create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.st.userIndex[account.UserID]; exists {
		return errs.ErrAccountExists
	}
	r.s.st.nextAccountID++
	account.ID = r.s.st.nextAccountID
	r.s.st.accounts[account.ID] = *account
	r.s.st.userIndex[account.UserID] = account.ID
	return nil
}

func (r *accountRepo) GetByID(ctx context.Context, id uint64) (*entity.Account, error) {
	if err := r.s.failureFor("accounts.getbyid"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	acc, ok := r.s.st.accounts[id]
	if !ok {
		return nil, errs.ErrAccountNotFound
	}
	return &acc, nil
}

func (r *accountRepo) GetByUserID(ctx context.Context, userID uint64) (*entity.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.s.st.userIndex[userID]
	if !ok {
		return nil, errs.ErrAccountNotFound
	}
	acc := r.s.st.accounts[id]
	return &acc, nil
}

func (r *accountRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*entity.Account, error) {
	// Atomic units are already serialized by the store, a row lock is implicit
	return r.GetByID(ctx, id)
}

func (r *accountRepo) UpdateBalance(ctx context.Context, id uint64, balance int64, updatedAt time.Time) error {
	if err := r.s.failureFor("accounts.updatebalance"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	acc, ok := r.s.st.accounts[id]
	if !ok {
		return errs.ErrAccountNotFound
	}
	acc.SetBalance(balance)
	acc.UpdatedAt = updatedAt
	r.s.st.accounts[id] = acc
	return nil
}

// transactionRepo implements persistence.TransactionRepository
type transactionRepo struct {
	s *Store
}

func (r *transactionRepo) Create(ctx context.Context, transaction *entity.Transaction) error {
	if err := r.s.failureFor("transactions.create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if transaction.TaskID != nil {
		for _, existing := range r.s.st.transactions {
			if existing.TaskID != nil && *existing.TaskID == *transaction.TaskID &&
				existing.Category == transaction.Category {
				if transaction.Category == entity.CategoryTaskRefund {
					return errs.NewAlreadyRefundedError(*transaction.TaskID, existing.ID)
				}
				return errs.ErrInternalServer
			}
		}
	}

	r.s.st.nextTransactionID++
	transaction.ID = r.s.st.nextTransactionID
	stored := *transaction
	stored.TaskID = copyUint64Ptr(transaction.TaskID)
	r.s.st.transactions[transaction.ID] = stored
	return nil
}

func (r *transactionRepo) GetByID(ctx context.Context, id uint64) (*entity.Transaction, error) {
	if err := r.s.failureFor("transactions.getbyid"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tx, ok := r.s.st.transactions[id]
	if !ok {
		return nil, errs.ErrTransactionNotFound
	}
	tx.TaskID = copyUint64Ptr(tx.TaskID)
	return &tx, nil
}

func (r *transactionRepo) GetByTaskAndCategory(ctx context.Context, taskID uint64, category entity.Category) (*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, tx := range r.s.st.transactions {
		if tx.TaskID != nil && *tx.TaskID == taskID && tx.Category == category {
			tx.TaskID = copyUint64Ptr(tx.TaskID)
			return &tx, nil
		}
	}
	return nil, errs.ErrTransactionNotFound
}

func (r *transactionRepo) ListByAccount(ctx context.Context, accountID uint64, page, pageSize int) ([]*entity.Transaction, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var all []entity.Transaction
	for _, tx := range r.s.st.transactions {
		if tx.AccountID == accountID {
			tx.TaskID = copyUint64Ptr(tx.TaskID)
			all = append(all, tx)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}

	entries := make([]*entity.Transaction, 0, end-start)
	for i := start; i < end; i++ {
		tx := all[i]
		entries = append(entries, &tx)
	}
	return entries, total, nil
}

func (r *transactionRepo) DailySummary(ctx context.Context, accountID uint64, since time.Time) ([]entity.DailyTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	type key struct {
		day      string
		category entity.Category
	}
	totals := make(map[key]*entity.DailyTotal)
	for _, tx := range r.s.st.transactions {
		if tx.AccountID != accountID || tx.CreatedAt.Before(since) {
			continue
		}
		k := key{day: tx.CreatedAt.Format("2006-01-02"), category: tx.Category}
		if _, ok := totals[k]; !ok {
			totals[k] = &entity.DailyTotal{Day: k.day, Category: k.category}
		}
		totals[k].Total += tx.Amount
		totals[k].Count++
	}

	rows := make([]entity.DailyTotal, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, *t)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Day == rows[j].Day {
			return rows[i].Category < rows[j].Category
		}
		return rows[i].Day > rows[j].Day
	})
	return rows, nil
}

// taskRepo implements persistence.TaskRepository
type taskRepo struct {
	s *Store
}

func (r *taskRepo) Create(ctx context.Context, task *entity.Task) error {
	if err := r.s.failureFor("tasks.create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.st.nextTaskID++
	task.ID = r.s.st.nextTaskID
	r.s.st.tasks[task.ID] = *task
	return nil
}

func (r *taskRepo) GetByID(ctx context.Context, id uint64) (*entity.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	task, ok := r.s.st.tasks[id]
	if !ok {
		return nil, errs.ErrTaskNotFound
	}
	return &task, nil
}

func (r *taskRepo) UpdateStatus(ctx context.Context, id uint64, status entity.TaskStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	task, ok := r.s.st.tasks[id]
	if !ok {
		return errs.ErrTaskNotFound
	}
	task.Status = status
	r.s.st.tasks[id] = task
	return nil
}

// priceRepo implements persistence.PriceRepository
type priceRepo struct {
	s *Store
}

func (r *priceRepo) Get(ctx context.Context, taskType string, unit entity.PriceUnit) (*entity.Price, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	price, ok := r.s.st.prices[priceKey(taskType, unit)]
	if !ok {
		return nil, errs.ErrPricingNotConfigured
	}
	return &price, nil
}

// orderRepo implements persistence.ChargeOrderRepository
type orderRepo struct {
	s *Store
}

func (r *orderRepo) Create(ctx context.Context, order *entity.ChargeOrder) error {
	if err := r.s.failureFor("orders.create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.st.orders[order.OutTradeNo]; exists {
		return errs.ErrInvalidRequest
	}
	r.s.st.nextOrderID++
	order.ID = r.s.st.nextOrderID
	stored := *order
	stored.ConfirmedTransactionID = copyUint64Ptr(order.ConfirmedTransactionID)
	r.s.st.orders[order.OutTradeNo] = stored
	return nil
}

func (r *orderRepo) GetByOutTradeNo(ctx context.Context, outTradeNo string) (*entity.ChargeOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	order, ok := r.s.st.orders[outTradeNo]
	if !ok {
		return nil, errs.ErrOrderNotFound
	}
	order.ConfirmedTransactionID = copyUint64Ptr(order.ConfirmedTransactionID)
	return &order, nil
}

func (r *orderRepo) GetByOutTradeNoForUpdate(ctx context.Context, outTradeNo string) (*entity.ChargeOrder, error) {
	return r.GetByOutTradeNo(ctx, outTradeNo)
}

func (r *orderRepo) MarkSuccess(ctx context.Context, outTradeNo string, transactionID uint64, paidAt time.Time) error {
	if err := r.s.failureFor("orders.marksuccess"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	order, ok := r.s.st.orders[outTradeNo]
	if !ok {
		return errs.ErrOrderNotFound
	}
	if order.Status != entity.OrderStatusPaying {
		return errs.NewOrderNotPayableError(outTradeNo, "not in paying state")
	}
	order.Status = entity.OrderStatusSuccess
	order.ConfirmedTransactionID = &transactionID
	r.s.st.orders[outTradeNo] = order
	return nil
}

func (r *orderRepo) Transition(ctx context.Context, outTradeNo string, from, to entity.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !entity.CanTransition(from, to) {
		return errs.NewOrderNotPayableError(outTradeNo, string(from))
	}
	order, ok := r.s.st.orders[outTradeNo]
	if !ok {
		return errs.ErrOrderNotFound
	}
	if order.Status != from {
		return errs.NewOrderNotPayableError(outTradeNo, "not in "+string(from)+" state")
	}
	order.Status = to
	r.s.st.orders[outTradeNo] = order
	return nil
}

func (r *orderRepo) ListStalePaying(ctx context.Context, before time.Time, limit int) ([]*entity.ChargeOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var stale []*entity.ChargeOrder
	for _, order := range r.s.st.orders {
		if order.Status == entity.OrderStatusPaying && !order.ExpireAt.After(before) {
			o := order
			o.ConfirmedTransactionID = copyUint64Ptr(order.ConfirmedTransactionID)
			stale = append(stale, &o)
		}
	}
	sort.Slice(stale, func(i, j int) bool {
		return stale[i].ExpireAt.Before(stale[j].ExpireAt)
	})
	if len(stale) > limit {
		stale = stale[:limit]
	}
	return stale, nil
}

// outboxRepo implements persistence.OutboxRepository
type outboxRepo struct {
	s *Store
}

func (r *outboxRepo) Create(ctx context.Context, message *entity.OutboxMessage) error {
	if err := r.s.failureFor("outbox.create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.st.nextOutboxID++
	message.ID = r.s.st.nextOutboxID
	r.s.st.outbox[message.ID] = *message
	return nil
}

func (r *outboxRepo) ListPending(ctx context.Context, limit int) ([]*entity.OutboxMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var pending []*entity.OutboxMessage
	for _, msg := range r.s.st.outbox {
		if msg.Status == entity.OutboxStatusPending {
			m := msg
			pending = append(pending, &m)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].ID < pending[j].ID
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r *outboxRepo) MarkSent(ctx context.Context, id uint64) error {
	return r.setStatus(id, entity.OutboxStatusSent)
}

func (r *outboxRepo) IncrementRetry(ctx context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	msg, ok := r.s.st.outbox[id]
	if !ok {
		return errs.ErrInternalServer
	}
	msg.RetryCount++
	r.s.st.outbox[id] = msg
	return nil
}

func (r *outboxRepo) MarkFailed(ctx context.Context, id uint64) error {
	return r.setStatus(id, entity.OutboxStatusFailed)
}

func (r *outboxRepo) setStatus(id uint64, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	msg, ok := r.s.st.outbox[id]
	if !ok {
		return errs.ErrInternalServer
	}
	msg.Status = status
	r.s.st.outbox[id] = msg
	return nil
}
