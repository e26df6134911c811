package entity

import (
	"time"

	errs "github.com/jchacon/fraud-detection-service/internal/domain/error"
	coreport "github.com/jchacon/fraud-detection-service/internal/domain/port/core"
)

// CustomerLimit is the mutable daily limit ledger row, one per customer.
// Invariant: currentSpent <= dailyMax must hold after every successful write;
// candidate writes that would violate it are rejected before persistence.
type CustomerLimit struct {
	CustomerID          string    // Customer identifier (key)
	DailyMaxInCents     int64     // Daily maximum amount in cents
	CurrentSpentInCents int64     // Current daily spent amount in cents
	LastReset           time.Time // When the daily counter was last rolled over
}

// NewCustomerLimit creates a new customer limit row
func NewCustomerLimit(customerID string, dailyMax string, timeProvider coreport.TimeProvider) (*CustomerLimit, error) {
	if customerID == "" {
		return nil, errs.ErrInvalidCustomerID
	}

	maxInCents, err := ValidateAndConvertAmount(dailyMax)
	if err != nil {
		return nil, err
	}

	return &CustomerLimit{
		CustomerID:      customerID,
		DailyMaxInCents: maxInCents,
		LastReset:       timeProvider.Now(),
	}, nil
}

// ProjectedSpent returns the spend the ledger would hold if the impact were applied
func (l *CustomerLimit) ProjectedSpent(impactInCents int64) int64 {
	return l.CurrentSpentInCents + impactInCents
}

// WouldExceed reports whether applying the impact would push spend past the daily maximum
func (l *CustomerLimit) WouldExceed(impactInCents int64) bool {
	return l.ProjectedSpent(impactInCents) > l.DailyMaxInCents
}

// DailyMax returns the daily maximum as a string with 2 decimal places
func (l *CustomerLimit) DailyMax() string {
	return AmountInCentsToString(l.DailyMaxInCents)
}

// CurrentSpent returns the current daily spend as a string with 2 decimal places
func (l *CustomerLimit) CurrentSpent() string {
	return AmountInCentsToString(l.CurrentSpentInCents)
}

// LimitImpact returns how much a transaction of the given operation type
// consumes from the daily limit. Every kind in scope consumes the full amount
// today; the switch is the seam for asymmetric handling such as refunds
// reducing spend.
func LimitImpact(operationType OperationType, amountInCents int64) int64 {
	switch operationType {
	case OperationDebit, OperationTransfer, OperationCashWithdrawal:
		return amountInCents
	case OperationCredit:
		return amountInCents
	default:
		return amountInCents
	}
}
