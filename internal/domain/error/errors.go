package error

import (
	"errors"
	"fmt"
)

// ISO-8583 style response codes recorded on transactions and returned to callers
const (
	CodeApproved         = "00"
	CodeCustomerNotFound = "14"
	CodeLimitExceeded    = "51"
	CodeSystemError      = "96"
)

// Base error types
var (
	// ErrCustomerNotFound is returned when the customer has no limit row provisioned
	ErrCustomerNotFound = errors.New("customer not found in system")

	// ErrLimitExceeded is returned when a transaction would push daily spend past the maximum
	ErrLimitExceeded = errors.New("daily transaction limit exceeded")

	// ErrDuplicateTransaction is returned when a transaction with the same ID already exists
	ErrDuplicateTransaction = errors.New("transaction with this ID already exists")

	// ErrTransactionNotFound is returned when the requested transaction doesn't exist
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrOutboxEventNotFound is returned when the requested outbox event doesn't exist
	ErrOutboxEventNotFound = errors.New("outbox event not found")

	// ErrInvalidAmount is returned when the transaction amount format is invalid
	ErrInvalidAmount = errors.New("invalid amount format")

	// ErrNegativeAmount is returned when the transaction amount is negative
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrAmountOverflow is returned when the amount is too large and would cause overflow
	ErrAmountOverflow = errors.New("amount is too large and would cause overflow")

	// ErrInvalidTransactionID is returned when the business transaction ID is empty
	ErrInvalidTransactionID = errors.New("transaction ID cannot be empty")

	// ErrInvalidCustomerID is returned when the customer ID is empty
	ErrInvalidCustomerID = errors.New("customer ID cannot be empty")

	// ErrInvalidOperationType is returned when the operation type is not one of the allowed values
	ErrInvalidOperationType = errors.New("invalid operation type")

	// ErrInvalidCurrency is returned when the currency is not one of the allowed values
	ErrInvalidCurrency = errors.New("invalid currency")

	// ErrLimitConflict is returned when a concurrent update won the race on the limit row
	ErrLimitConflict = errors.New("customer limit was modified concurrently")

	// ErrDatabaseConnection is returned when there's a problem talking to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrStorageTimeout is returned when a storage lookup exceeds its deadline
	ErrStorageTimeout = errors.New("storage operation timed out")

	// ErrChannelTimeout is returned when the message channel did not acknowledge in time
	ErrChannelTimeout = errors.New("message channel timed out")

	// ErrChannelUnavailable is returned when the message channel cannot be reached
	ErrChannelUnavailable = errors.New("message channel unavailable")

	// ErrPublishExhausted is returned when the message channel rejected all delivery attempts
	ErrPublishExhausted = errors.New("event delivery attempts exhausted")

	// ErrNotSerializable is returned when an event payload cannot be serialized
	ErrNotSerializable = errors.New("event payload is not serializable")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ResponseCode maps known errors to the business response code recorded on the transaction
func ResponseCode(err error) string {
	switch {
	case errors.Is(err, ErrCustomerNotFound):
		return CodeCustomerNotFound
	case errors.Is(err, ErrLimitExceeded):
		return CodeLimitExceeded
	default:
		return CodeSystemError
	}
}

// BusinessError wraps an expected, user-facing rule failure. It is never
// retried automatically and its message is safe to surface to callers.
type BusinessError struct {
	TransactionID string
	CustomerID    string
	Code          string
	Err           error
}

// Error implements the error interface for BusinessError
func (e *BusinessError) Error() string {
	return fmt.Sprintf("business rule failure for transaction %s (customer: %s, code: %s): %v",
		e.TransactionID, e.CustomerID, e.Code, e.Err)
}

// Unwrap returns the underlying error
func (e *BusinessError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *BusinessError) LogFields() map[string]any {
	return map[string]any{
		"error_type":     "business_error",
		"transaction_id": e.TransactionID,
		"customer_id":    e.CustomerID,
		"response_code":  e.Code,
		"error":          e.Err.Error(),
	}
}

// NewBusinessError creates a business rule failure carrying its response code
func NewBusinessError(transactionID, customerID string, err error) error {
	return &BusinessError{
		TransactionID: transactionID,
		CustomerID:    customerID,
		Code:          ResponseCode(err),
		Err:           err,
	}
}

// TechnicalError wraps an infrastructure defect. Callers only ever see a
// generic message; the cause stays in the logs.
type TechnicalError struct {
	Operation string
	Err       error
}

// Error implements the error interface for TechnicalError
func (e *TechnicalError) Error() string {
	return fmt.Sprintf("technical failure during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error
func (e *TechnicalError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *TechnicalError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "technical_error",
		"operation":  e.Operation,
		"error":      e.Err.Error(),
	}
}

// NewTechnicalError wraps an infrastructure error with the operation that failed
func NewTechnicalError(operation string, err error) error {
	return &TechnicalError{
		Operation: operation,
		Err:       err,
	}
}

// IsBusinessError checks whether the error belongs to the business-rule taxonomy
func IsBusinessError(err error) bool {
	var be *BusinessError
	if errors.As(err, &be) {
		return true
	}
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrLimitExceeded) ||
		errors.Is(err, ErrDuplicateTransaction)
}

// IsTechnicalError checks whether the error belongs to the technical taxonomy
func IsTechnicalError(err error) bool {
	var te *TechnicalError
	if errors.As(err, &te) {
		return true
	}
	return errors.Is(err, ErrDatabaseConnection) ||
		errors.Is(err, ErrStorageTimeout) ||
		errors.Is(err, ErrLimitConflict) ||
		errors.Is(err, ErrInternalServer)
}

// IsCustomerNotFoundError checks if the error is a customer not found error
func IsCustomerNotFoundError(err error) bool {
	return errors.Is(err, ErrCustomerNotFound)
}

// IsLimitExceededError checks if the error is a limit exceeded error
func IsLimitExceededError(err error) bool {
	return errors.Is(err, ErrLimitExceeded)
}

// IsDuplicateTransactionError checks if the error is a duplicate transaction error
func IsDuplicateTransactionError(err error) bool {
	return errors.Is(err, ErrDuplicateTransaction)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrOutboxEventNotFound)
}

// IsRecoverableDeliveryError reports whether a publish failure is worth
// retrying. Only timeout and network-class failures qualify; anything else
// (serialization, broken payload) will fail the same way every time.
func IsRecoverableDeliveryError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotSerializable) {
		return false
	}
	return errors.Is(err, ErrChannelTimeout) ||
		errors.Is(err, ErrChannelUnavailable)
}
