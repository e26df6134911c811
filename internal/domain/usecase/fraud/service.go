package fraud

import (
	"context"
	"net/http"
	"time"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	errs "github.com/jchacon/fraud-detection-service/internal/domain/error"
	cacheport "github.com/jchacon/fraud-detection-service/internal/domain/port/cache"
	coreport "github.com/jchacon/fraud-detection-service/internal/domain/port/core"
	"github.com/jchacon/fraud-detection-service/internal/domain/port/messaging"
	"github.com/jchacon/fraud-detection-service/internal/domain/port/persistence"
)

// Config carries the tunable knobs of the admission pipeline
type Config struct {
	ProcessTimeout     time.Duration // Deadline over evaluate+persist+publish
	LimitLookupTimeout time.Duration // Deadline for the ledger lookup alone
	IdempotencyTTL     time.Duration // Cache TTL for decided responses
	RetryPolicy        RetryPolicy   // Delivery retry/backoff policy
}

// Service ties together the admission pipeline components
type Service struct {
	processor *Processor
	guard     *IdempotencyGuard
	ledger    *LimitLedger
	publisher *RetryingPublisher
	logger    coreport.Logger
}

// NewService creates a fully wired transaction admission service
func NewService(
	uow persistence.UnitOfWork,
	outboxRepo persistence.OutboxRepository,
	responseCache cacheport.ResponseCache,
	eventPublisher messaging.EventPublisher,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg Config,
) *Service {
	txnRepo := uow.GetTransactionRepository(context.Background())
	limitRepo := uow.GetCustomerLimitRepository(context.Background())

	guard := NewIdempotencyGuard(responseCache, txnRepo, logger, cfg.IdempotencyTTL)
	ledger := NewLimitLedger(limitRepo, timeProvider, logger, cfg.LimitLookupTimeout)
	publisher := NewRetryingPublisher(eventPublisher, cfg.RetryPolicy, timeProvider, logger)
	processor := NewProcessor(uow, outboxRepo, guard, ledger, publisher, timeProvider, logger, cfg.ProcessTimeout)

	return &Service{
		processor: processor,
		guard:     guard,
		ledger:    ledger,
		publisher: publisher,
		logger:    logger,
	}
}

// ProcessTransaction runs a transaction through the admission pipeline
func (s *Service) ProcessTransaction(ctx context.Context, params entity.NewTransactionParams) (*entity.TransactionResponse, error) {
	response, err := s.processor.Process(ctx, params)
	if err != nil {
		s.logger.Error("Transaction processing failed", map[string]any{
			"transaction_id": params.TransactionID,
			"customer_id":    params.CustomerID,
			"error":          err.Error(),
		})
	}
	return response, err
}

// GetCustomerLimit returns the current daily limit row for a customer
func (s *Service) GetCustomerLimit(ctx context.Context, customerID string) (*entity.CustomerLimit, error) {
	return s.ledger.Snapshot(ctx, customerID)
}

// Publisher exposes the retrying publisher for the outbox reconciler, which
// shares the same delivery path.
func (s *Service) Publisher() *RetryingPublisher {
	return s.publisher
}

// HTTPStatusFor maps the error taxonomy to an HTTP status for the API layer.
// Business failures carry their own response codes; technical failures are a
// generic 500 without leaking internals.
func HTTPStatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errs.IsCustomerNotFoundError(err):
		return http.StatusUnprocessableEntity
	case errs.IsLimitExceededError(err):
		return http.StatusOK
	case errs.IsBusinessError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
