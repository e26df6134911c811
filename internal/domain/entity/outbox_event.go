package entity

import (
	"time"

	coreport "github.com/jchacon/fraud-detection-service/internal/domain/port/core"
)

// OutboxEventStatus defines the delivery states of an outbox row
type OutboxEventStatus string

// Outbox event states
const (
	OutboxStatusFailed     OutboxEventStatus = "FAILED"     // Synchronous delivery failed, waiting for the reconciler
	OutboxStatusProcessing OutboxEventStatus = "PROCESSING" // Currently being retried
	OutboxStatusCompleted  OutboxEventStatus = "COMPLETED"  // Delivered (rows are normally deleted instead)
	OutboxStatusFatal      OutboxEventStatus = "FATAL"      // Retry ceiling reached, manual intervention required
)

// OutboxEvent is the durable proof-of-intent for a transaction notification
// that could not be confirmed synchronously. Rows are owned exclusively by
// the reconciler once created and deleted on confirmed delivery.
type OutboxEvent struct {
	ID            uint64            // Surrogate identifier
	TransactionID string            // Business transaction ID the event mirrors
	Payload       string            // Serialized TransactionEvent JSON
	Status        OutboxEventStatus // Delivery state
	ErrorMessage  string            // Last delivery error
	RetryCount    int               // Monotonically non-decreasing retry counter
	CreatedAt     time.Time         // When the row was created
	UpdatedAt     time.Time         // When the row was last touched
}

// NewOutboxEvent creates a pending outbox row for a failed delivery
func NewOutboxEvent(transactionID, payload, errorMessage string, timeProvider coreport.TimeProvider) *OutboxEvent {
	now := timeProvider.Now()
	return &OutboxEvent{
		TransactionID: transactionID,
		Payload:       payload,
		Status:        OutboxStatusFailed,
		ErrorMessage:  errorMessage,
		RetryCount:    0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// MarkProcessing flags the row while a retry pass owns it
func (e *OutboxEvent) MarkProcessing(timeProvider coreport.TimeProvider) {
	e.Status = OutboxStatusProcessing
	e.UpdatedAt = timeProvider.Now()
}

// RecordFailure increments the retry counter, returns the row to FAILED and
// transitions to FATAL once the ceiling is reached. A FATAL row must never be
// retried automatically again.
func (e *OutboxEvent) RecordFailure(errorMessage string, maxRetries int, timeProvider coreport.TimeProvider) {
	e.RetryCount++
	e.ErrorMessage = errorMessage
	e.UpdatedAt = timeProvider.Now()
	e.Status = OutboxStatusFailed
	if e.RetryCount >= maxRetries {
		e.Status = OutboxStatusFatal
	}
}

// IsFatal reports whether the row has exhausted automatic retries
func (e *OutboxEvent) IsFatal() bool {
	return e.Status == OutboxStatusFatal
}
