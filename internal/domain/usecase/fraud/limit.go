package fraud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	errs "github.com/jchacon/fraud-detection-service/internal/domain/error"
	coreport "github.com/jchacon/fraud-detection-service/internal/domain/port/core"
	"github.com/jchacon/fraud-detection-service/internal/domain/port/persistence"
)

// Evaluation is the outcome of checking a transaction against the daily limit
type Evaluation struct {
	Approved              bool
	CurrentSpentInCents   int64 // Spend observed at evaluation time, the CAS expectation for the commit
	ProjectedSpentInCents int64 // Spend the ledger would hold if the transaction were applied
	DailyMaxInCents       int64
}

// LimitLedger evaluates transactions against a customer's daily spending limit
type LimitLedger struct {
	limitRepo     persistence.CustomerLimitRepository
	timeProvider  coreport.TimeProvider
	logger        coreport.Logger
	lookupTimeout time.Duration
}

// NewLimitLedger creates a new LimitLedger
func NewLimitLedger(
	limitRepo persistence.CustomerLimitRepository,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	lookupTimeout time.Duration,
) *LimitLedger {
	return &LimitLedger{
		limitRepo:     limitRepo,
		timeProvider:  timeProvider,
		logger:        logger,
		lookupTimeout: lookupTimeout,
	}
}

// Evaluate looks up the customer's limit row and projects the transaction's
// impact onto it. A missing row is a business condition (ErrCustomerNotFound);
// a lookup exceeding the short timeout is a technical failure, kept distinct.
// Evaluate never writes; committing the projected spend is the processor's job.
func (l *LimitLedger) Evaluate(
	ctx context.Context,
	customerID string,
	amountInCents int64,
	operationType entity.OperationType,
) (*Evaluation, error) {
	lookupCtx, cancel := l.timeProvider.WithTimeout(ctx, coreport.Duration(l.lookupTimeout))
	defer cancel()

	limit, err := l.limitRepo.GetByCustomerID(lookupCtx, customerID)
	if err != nil {
		if errors.Is(err, errs.ErrCustomerNotFound) {
			l.logger.Warn("Validation failed: customer not found", map[string]any{
				"customer_id": customerID,
			})
			return nil, errs.ErrCustomerNotFound
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, errs.ErrStorageTimeout) {
			return nil, errs.NewTechnicalError("limit lookup", fmt.Errorf("%w: %s", errs.ErrStorageTimeout, err.Error()))
		}
		return nil, errs.NewTechnicalError("limit lookup", err)
	}

	impact := entity.LimitImpact(operationType, amountInCents)
	projected := limit.ProjectedSpent(impact)

	evaluation := &Evaluation{
		Approved:              !limit.WouldExceed(impact),
		CurrentSpentInCents:   limit.CurrentSpentInCents,
		ProjectedSpentInCents: projected,
		DailyMaxInCents:       limit.DailyMaxInCents,
	}

	if !evaluation.Approved {
		l.logger.Warn("Fraud alert: limit exceeded for customer", map[string]any{
			"customer_id":     customerID,
			"projected_spent": entity.AmountInCentsToString(projected),
			"daily_max":       limit.DailyMax(),
		})
	}

	return evaluation, nil
}

// Snapshot returns the current limit row for a customer without projecting
// any impact onto it. Used by the read-only limit endpoint.
func (l *LimitLedger) Snapshot(ctx context.Context, customerID string) (*entity.CustomerLimit, error) {
	lookupCtx, cancel := l.timeProvider.WithTimeout(ctx, coreport.Duration(l.lookupTimeout))
	defer cancel()

	limit, err := l.limitRepo.GetByCustomerID(lookupCtx, customerID)
	if err != nil {
		if errors.Is(err, errs.ErrCustomerNotFound) {
			return nil, errs.ErrCustomerNotFound
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, errs.ErrStorageTimeout) {
			return nil, errs.NewTechnicalError("limit lookup", fmt.Errorf("%w: %s", errs.ErrStorageTimeout, err.Error()))
		}
		return nil, errs.NewTechnicalError("limit lookup", err)
	}

	return limit, nil
}
