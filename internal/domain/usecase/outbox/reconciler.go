package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	coreport "github.com/jchacon/fraud-detection-service/internal/domain/port/core"
	"github.com/jchacon/fraud-detection-service/internal/domain/port/persistence"
	"github.com/jchacon/fraud-detection-service/internal/domain/usecase/fraud"
)

// sweepBatchSize bounds how many failed rows one sweep picks up
const sweepBatchSize = 50

// Reconciler re-delivers events the synchronous path could not confirm. It
// sweeps the outbox on a fixed interval, oldest row first, one at a time, so
// delivery order within a customer's timeline is preserved. Rows that exhaust
// the retry ceiling go FATAL and are never touched automatically again.
type Reconciler struct {
	outboxRepo   persistence.OutboxRepository
	publisher    *fraud.RetryingPublisher
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	interval     time.Duration
	maxRetries   int

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewReconciler creates a new outbox Reconciler
func NewReconciler(
	outboxRepo persistence.OutboxRepository,
	publisher *fraud.RetryingPublisher,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	interval time.Duration,
	maxRetries int,
) *Reconciler {
	return &Reconciler{
		outboxRepo:   outboxRepo,
		publisher:    publisher,
		timeProvider: timeProvider,
		logger:       logger,
		interval:     interval,
		maxRetries:   maxRetries,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start launches the periodic sweep in a background goroutine
func (r *Reconciler) Start(ctx context.Context) {
	r.logger.Info("Outbox reconciler started", map[string]any{
		"interval":    r.interval.String(),
		"max_retries": r.maxRetries,
	})

	go func() {
		defer close(r.doneCh)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := r.Sweep(ctx); err != nil {
					r.logger.Error("Outbox sweep failed", map[string]any{
						"error": err.Error(),
					})
				}
			case <-ctx.Done():
				return
			case <-r.stopCh:
				return
			}
		}
	}()
}

// Stop signals the sweep loop to exit and waits for it to finish
func (r *Reconciler) Stop() {
	close(r.stopCh)
	<-r.doneCh
	r.logger.Info("Outbox reconciler stopped", nil)
}

// Sweep processes all FAILED rows in creation order. Exported so tests can
// drive the reconciler without real time passing.
func (r *Reconciler) Sweep(ctx context.Context) error {
	events, err := r.outboxRepo.ListByStatus(ctx, entity.OutboxStatusFailed, sweepBatchSize)
	if err != nil {
		return err
	}

	for _, event := range events {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		r.retryEvent(ctx, event)
	}
	return nil
}

// retryEvent attempts one delivery of an outbox row. The row is claimed as
// PROCESSING for the duration of the attempt; success deletes it, failure
// returns it to FAILED and may transition it to FATAL.
func (r *Reconciler) retryEvent(ctx context.Context, outboxEvent *entity.OutboxEvent) {
	var event entity.TransactionEvent
	if err := json.Unmarshal([]byte(outboxEvent.Payload), &event); err != nil {
		// An unreadable payload can never deliver; count it like a failure so
		// the row eventually goes FATAL for manual inspection
		r.logger.Error("Outbox payload could not be deserialized", map[string]any{
			"outbox_id":      outboxEvent.ID,
			"transaction_id": outboxEvent.TransactionID,
			"error":          err.Error(),
		})
		r.recordFailure(ctx, outboxEvent, err.Error())
		return
	}

	outboxEvent.MarkProcessing(r.timeProvider)
	if err := r.outboxRepo.Update(ctx, outboxEvent); err != nil {
		// Leave the row FAILED in storage; the next sweep picks it up again
		r.logger.Error("Could not claim outbox row for retry", map[string]any{
			"outbox_id": outboxEvent.ID,
			"error":     err.Error(),
		})
		return
	}

	r.logger.Info("Outbox reconciler retrying delivery", map[string]any{
		"outbox_id":      outboxEvent.ID,
		"transaction_id": outboxEvent.TransactionID,
		"retry_count":    outboxEvent.RetryCount,
	})

	if _, err := r.publisher.Publish(ctx, event); err != nil {
		r.recordFailure(ctx, outboxEvent, err.Error())
		return
	}

	if err := r.outboxRepo.Delete(ctx, outboxEvent.ID); err != nil {
		r.logger.Error("Delivered outbox row could not be deleted", map[string]any{
			"outbox_id": outboxEvent.ID,
			"error":     err.Error(),
		})
		return
	}

	r.logger.Info("Outbox row delivered and removed", map[string]any{
		"outbox_id":      outboxEvent.ID,
		"transaction_id": outboxEvent.TransactionID,
	})
}

// recordFailure persists the retry bookkeeping for a failed delivery
func (r *Reconciler) recordFailure(ctx context.Context, outboxEvent *entity.OutboxEvent, errorMessage string) {
	outboxEvent.RecordFailure(errorMessage, r.maxRetries, r.timeProvider)

	if outboxEvent.IsFatal() {
		r.logger.Error("Outbox row reached retry ceiling, manual intervention required", map[string]any{
			"outbox_id":      outboxEvent.ID,
			"transaction_id": outboxEvent.TransactionID,
			"retry_count":    outboxEvent.RetryCount,
		})
	}

	if err := r.outboxRepo.Update(ctx, outboxEvent); err != nil {
		r.logger.Error("Failed to update outbox row after delivery failure", map[string]any{
			"outbox_id": outboxEvent.ID,
			"error":     err.Error(),
		})
	}
}
