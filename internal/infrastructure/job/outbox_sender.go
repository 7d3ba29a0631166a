package job

import (
	"context"
	"time"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
	"github.com/arman-rahimi/credit-ledger/internal/domain/port/persistence"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/lock"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/mq"
)

// OutboxSender drains pending ledger events to the broker. Delivery is
// at-least-once: a message is marked sent only after broker acknowledgement,
// and parked as failed once it exhausts maxRetry attempts.
type OutboxSender struct {
	uow       persistence.UnitOfWork
	producer  mq.Producer
	sendLock  *lock.DistributedLock
	logger    coreport.Logger
	interval  time.Duration
	batchSize int
	maxRetry  int
	stopCh    chan struct{}
}

// NewOutboxSender creates the sender job. sendLock may be nil in
// single-instance deployments.
func NewOutboxSender(
	uow persistence.UnitOfWork,
	producer mq.Producer,
	sendLock *lock.DistributedLock,
	logger coreport.Logger,
	interval time.Duration,
	batchSize int,
	maxRetry int,
) *OutboxSender {
	return &OutboxSender{
		uow:       uow,
		producer:  producer,
		sendLock:  sendLock,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
		maxRetry:  maxRetry,
		stopCh:    make(chan struct{}),
	}
}

// Start runs the send loop until the context is cancelled or Stop is called
func (s *OutboxSender) Start(ctx context.Context) {
	s.logger.Info("Outbox sender started", map[string]any{
		"interval":   s.interval.String(),
		"batch_size": s.batchSize,
	})

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Outbox sender stopped", nil)
			return
		case <-s.stopCh:
			s.logger.Info("Outbox sender stopped", nil)
			return
		case <-ticker.C:
			s.drain(ctx)
		}
	}
}

// Stop signals the loop to exit
func (s *OutboxSender) Stop() {
	close(s.stopCh)
}

// drain sends one batch of pending messages
func (s *OutboxSender) drain(ctx context.Context) {
	if s.sendLock != nil {
		acquired, err := s.sendLock.TryLock(ctx)
		if err != nil || !acquired {
			return
		}
		defer func() {
			if err := s.sendLock.Unlock(ctx); err != nil {
				s.logger.Warn("Failed to release outbox lock", map[string]any{"error": err.Error()})
			}
		}()
	}

	outbox := s.uow.Repositories().Outbox
	messages, err := outbox.ListPending(ctx, s.batchSize)
	if err != nil {
		s.logger.Error("Failed to list pending outbox messages", map[string]any{"error": err.Error()})
		return
	}

	for _, msg := range messages {
		s.send(ctx, msg)
	}
}

func (s *OutboxSender) send(ctx context.Context, msg *entity.OutboxMessage) {
	outbox := s.uow.Repositories().Outbox

	if err := s.producer.Send(msg.Topic, msg.MessageKey, msg.Payload); err != nil {
		s.logger.Warn("Outbox delivery failed", map[string]any{
			"message_id": msg.ID,
			"topic":      msg.Topic,
			"retries":    msg.RetryCount,
			"error":      err.Error(),
		})
		if retryErr := outbox.IncrementRetry(ctx, msg.ID); retryErr != nil {
			s.logger.Error("Failed to record outbox retry", map[string]any{
				"message_id": msg.ID,
				"error":      retryErr.Error(),
			})
		}
		if msg.RetryCount+1 >= s.maxRetry {
			if failErr := outbox.MarkFailed(ctx, msg.ID); failErr != nil {
				s.logger.Error("Failed to park outbox message", map[string]any{
					"message_id": msg.ID,
					"error":      failErr.Error(),
				})
			} else {
				s.logger.Error("Outbox message exhausted retries", map[string]any{
					"message_id": msg.ID,
					"topic":      msg.Topic,
				})
			}
		}
		return
	}

	if err := outbox.MarkSent(ctx, msg.ID); err != nil {
		// The broker accepted the message but the status write failed; the
		// next tick resends it, which consumers must tolerate.
		s.logger.Error("Failed to mark outbox message sent", map[string]any{
			"message_id": msg.ID,
			"error":      err.Error(),
		})
		return
	}

	s.logger.Debug("Outbox message delivered", map[string]any{
		"message_id": msg.ID,
		"topic":      msg.Topic,
		"key":        msg.MessageKey,
	})
}
