package fraud

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	errs "github.com/jchacon/fraud-detection-service/internal/domain/error"
	coreport "github.com/jchacon/fraud-detection-service/internal/domain/port/core"
	"github.com/jchacon/fraud-detection-service/internal/domain/port/persistence"
)

// commitAttempts bounds the evaluate-and-commit loop when concurrent
// approvals race on the same customer's limit row
const commitAttempts = 3

// outboxSaveTimeout bounds the fallback outbox write, independently of the
// request's processing deadline
const outboxSaveTimeout = 2 * time.Second

// Processor orchestrates transaction admission: duplicate check, limit
// evaluation, atomic persistence, response caching and event emission. It owns
// the exactly-once-effective invariant.
type Processor struct {
	uow            persistence.UnitOfWork
	outboxRepo     persistence.OutboxRepository
	guard          *IdempotencyGuard
	ledger         *LimitLedger
	publisher      *RetryingPublisher
	timeProvider   coreport.TimeProvider
	logger         coreport.Logger
	processTimeout time.Duration
}

// NewProcessor creates a new transaction Processor
func NewProcessor(
	uow persistence.UnitOfWork,
	outboxRepo persistence.OutboxRepository,
	guard *IdempotencyGuard,
	ledger *LimitLedger,
	publisher *RetryingPublisher,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	processTimeout time.Duration,
) *Processor {
	return &Processor{
		uow:            uow,
		outboxRepo:     outboxRepo,
		guard:          guard,
		ledger:         ledger,
		publisher:      publisher,
		timeProvider:   timeProvider,
		logger:         logger,
		processTimeout: processTimeout,
	}
}

// Process admits a single transaction request. Duplicate detection always wins
// over re-evaluation: a replayed transaction returns its stored decision, even
// a rejection, and never touches the ledger again.
func (p *Processor) Process(ctx context.Context, params entity.NewTransactionParams) (*entity.TransactionResponse, error) {
	// Step 1: fast-path and durable duplicate detection
	cached, found, err := p.guard.Resolve(ctx, params.TransactionID)
	if err != nil {
		return nil, errs.NewTechnicalError("idempotency check", err)
	}
	if found {
		return cached, nil
	}

	// The whole evaluate+persist+publish sequence runs under one deadline.
	// A write that commits before the deadline fires is never compensated;
	// the caller's retry lands on the idempotency path instead.
	procCtx, cancel := p.timeProvider.WithTimeout(ctx, coreport.Duration(p.processTimeout))
	defer cancel()

	txn, err := entity.NewTransaction(params, p.timeProvider)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Processing new transaction", map[string]any{
		"transaction_id": txn.TransactionID,
		"customer_id":    txn.CustomerID,
		"operation_type": txn.OperationType,
		"correlation_id": txn.CorrelationID,
	})

	response, replayed, err := p.decide(procCtx, txn)
	if err != nil {
		return response, err
	}
	if replayed {
		// The request that won the insert race already published the event;
		// emitting another here would duplicate it. Refresh the cache only.
		p.guard.Record(procCtx, txn.TransactionID, response)
		return response, nil
	}

	p.finish(procCtx, txn, response)
	return response, nil
}

// decide runs the evaluation/persistence state machine and returns the
// decided response. The replayed flag marks a decision taken from storage
// after losing a duplicate race; such a decision must not be re-published.
// The CAS loop re-evaluates when a concurrent approval for the same customer
// wins the race on the limit row.
func (p *Processor) decide(ctx context.Context, txn *entity.Transaction) (*entity.TransactionResponse, bool, error) {
	for attempt := 1; attempt <= commitAttempts; attempt++ {
		evaluation, err := p.ledger.Evaluate(ctx, txn.CustomerID, txn.AmountInCents, txn.OperationType)
		if err != nil {
			if errs.IsCustomerNotFoundError(err) {
				response, cnfErr := p.persistCustomerNotFound(ctx, txn)
				return response, false, cnfErr
			}
			return nil, false, p.asTechnical(ctx, "limit evaluation", err)
		}

		if !evaluation.Approved {
			txn.MarkRejected()
			if err := p.persistRejected(ctx, txn); err != nil {
				if errs.IsDuplicateTransactionError(err) {
					response, replayErr := p.replayStored(ctx, txn.TransactionID)
					return response, true, replayErr
				}
				return nil, false, p.asTechnical(ctx, "transaction persistence", err)
			}
			response := txn.ToResponse()
			return &response, false, nil
		}

		txn.MarkApproved()
		err = p.commitApproved(ctx, txn, evaluation)
		if err == nil {
			response := txn.ToResponse()
			return &response, false, nil
		}
		if errors.Is(err, errs.ErrLimitConflict) {
			p.logger.Warn("Concurrent limit update detected, re-evaluating", map[string]any{
				"transaction_id": txn.TransactionID,
				"customer_id":    txn.CustomerID,
				"attempt":        attempt,
			})
			continue
		}
		if errs.IsDuplicateTransactionError(err) {
			response, replayErr := p.replayStored(ctx, txn.TransactionID)
			return response, true, replayErr
		}
		return nil, false, p.asTechnical(ctx, "approved transaction commit", err)
	}

	return nil, false, errs.NewTechnicalError("approved transaction commit", errs.ErrLimitConflict)
}

// commitApproved advances the customer's spend and records the transaction as
// one atomic unit: both writes commit together or neither does. The
// conditional spend update is the serialization point for concurrent
// approvals racing on the same customer.
func (p *Processor) commitApproved(ctx context.Context, txn *entity.Transaction, evaluation *Evaluation) error {
	txCtx, err := p.uow.Begin(ctx)
	if err != nil {
		return err
	}

	limitRepo := p.uow.GetCustomerLimitRepository(txCtx)
	if err := limitRepo.UpdateSpent(txCtx, txn.CustomerID, evaluation.CurrentSpentInCents, evaluation.ProjectedSpentInCents); err != nil {
		if rbErr := p.uow.Rollback(txCtx); rbErr != nil {
			p.logger.Error("Rollback failed after spend update error", map[string]any{
				"transaction_id": txn.TransactionID,
				"error":          rbErr.Error(),
			})
		}
		return err
	}

	txnRepo := p.uow.GetTransactionRepository(txCtx)
	if err := txnRepo.Create(txCtx, txn); err != nil {
		if rbErr := p.uow.Rollback(txCtx); rbErr != nil {
			p.logger.Error("Rollback failed after transaction create error", map[string]any{
				"transaction_id": txn.TransactionID,
				"error":          rbErr.Error(),
			})
		}
		return err
	}

	if err := p.uow.Commit(txCtx); err != nil {
		return err
	}

	p.logger.Info("Transaction approved and ledger advanced", map[string]any{
		"transaction_id": txn.TransactionID,
		"customer_id":    txn.CustomerID,
		"new_spent":      entity.AmountInCentsToString(evaluation.ProjectedSpentInCents),
	})
	return nil
}

// persistRejected records the rejection fact. The ledger is untouched: a
// rejected transaction has zero effect on spend.
func (p *Processor) persistRejected(ctx context.Context, txn *entity.Transaction) error {
	txnRepo := p.uow.GetTransactionRepository(ctx)
	return txnRepo.Create(ctx, txn)
}

// persistCustomerNotFound records the error fact durably so a replay of the
// same business ID yields the same outcome, then surfaces the business error.
func (p *Processor) persistCustomerNotFound(ctx context.Context, txn *entity.Transaction) (*entity.TransactionResponse, error) {
	txn.MarkCustomerNotFound()

	txnRepo := p.uow.GetTransactionRepository(ctx)
	if err := txnRepo.Create(ctx, txn); err != nil {
		if errs.IsDuplicateTransactionError(err) {
			response, replayErr := p.replayStored(ctx, txn.TransactionID)
			if replayErr != nil {
				return nil, replayErr
			}
			return response, errs.NewBusinessError(txn.TransactionID, txn.CustomerID, errs.ErrCustomerNotFound)
		}
		return nil, p.asTechnical(ctx, "transaction persistence", err)
	}

	response := txn.ToResponse()
	p.guard.Record(ctx, txn.TransactionID, &response)
	return &response, errs.NewBusinessError(txn.TransactionID, txn.CustomerID, errs.ErrCustomerNotFound)
}

// replayStored maps an already-persisted transaction to the response shape.
// This path covers two requests racing past the idempotency check.
func (p *Processor) replayStored(ctx context.Context, transactionID string) (*entity.TransactionResponse, error) {
	txnRepo := p.uow.GetTransactionRepository(ctx)
	existing, err := txnRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, p.asTechnical(ctx, "duplicate replay", err)
	}

	p.logger.Warn("Duplicate transaction raced past idempotency check, replaying stored decision", map[string]any{
		"transaction_id": transactionID,
	})
	response := existing.ToResponse()
	return &response, nil
}

// finish caches the response and emits the decision event. By this point the
// transaction row is durable, so nothing here may fail the request: cache
// trouble is swallowed and a delivery failure lands in the outbox.
func (p *Processor) finish(ctx context.Context, txn *entity.Transaction, response *entity.TransactionResponse) {
	p.guard.Record(ctx, txn.TransactionID, response)

	// Only decided outcomes are announced; error decisions stay internal
	if !txn.IsDecided() || txn.Status == entity.StatusError {
		return
	}

	event := txn.ToEvent()
	if _, err := p.publisher.Publish(ctx, event); err != nil {
		p.saveToOutbox(ctx, event, err)
	}
}

// saveToOutbox persists the failed delivery intent so the reconciler can
// resume it. A serialization failure is unrecoverable and only logged.
func (p *Processor) saveToOutbox(ctx context.Context, event entity.TransactionEvent, deliveryErr error) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Serialization error while saving event to outbox", map[string]any{
			"transaction_id": event.TransactionID,
			"error":          err.Error(),
		})
		return
	}

	// Publish retries may have consumed the processing budget by now. The
	// outbox row is what keeps the at-least-once guarantee, so it is written
	// under its own deadline, detached from the request's.
	saveCtx, cancel := p.timeProvider.WithTimeout(context.WithoutCancel(ctx), coreport.Duration(outboxSaveTimeout))
	defer cancel()

	outboxEvent := entity.NewOutboxEvent(event.TransactionID, string(payload), deliveryErr.Error(), p.timeProvider)
	if err := p.outboxRepo.Save(saveCtx, outboxEvent); err != nil {
		p.logger.Error("Could not persist event to outbox table", map[string]any{
			"transaction_id": event.TransactionID,
			"error":          err.Error(),
		})
		return
	}

	p.logger.Info("Event saved to outbox for later delivery", map[string]any{
		"transaction_id": event.TransactionID,
	})
}

// asTechnical folds storage errors into the technical taxonomy, preferring the
// deadline classification when the processing budget has been spent.
func (p *Processor) asTechnical(ctx context.Context, operation string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errs.NewTechnicalError(operation, errs.ErrStorageTimeout)
	}
	if errs.IsTechnicalError(err) {
		return err
	}
	return errs.NewTechnicalError(operation, err)
}
