package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	errs "github.com/jchacon/fraud-detection-service/internal/domain/error"
	coreport "github.com/jchacon/fraud-detection-service/internal/domain/port/core"
)

// OperationType represents the kind of banking operation
type OperationType string

// Operation types
const (
	OperationDebit          OperationType = "DEBIT"
	OperationCredit         OperationType = "CREDIT"
	OperationTransfer       OperationType = "TRANSFER"
	OperationCashWithdrawal OperationType = "CASH_WITHDRAWAL"
)

// Currency represents a supported currency code
type Currency string

// Supported currencies
const (
	CurrencyPEN Currency = "PEN"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// TransactionStatus defines possible decision outcomes for a transaction
type TransactionStatus string

// TransactionStatus constants
const (
	StatusApproved TransactionStatus = "APPROVED"
	StatusRejected TransactionStatus = "REJECTED"
	StatusError    TransactionStatus = "ERROR"
)

// Decision descriptions recorded on the transaction
const (
	DescriptionApproved         = "Transaction verified successfully"
	DescriptionLimitExceeded    = "Daily transaction limit exceeded"
	DescriptionCustomerNotFound = "Customer not found in system"
)

// TransactionResponse is the shape returned to the caller once a transaction is decided.
// It is also the value serialized into the idempotency cache, so replays are byte-identical.
type TransactionResponse struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transactionId"`
	Status        string    `json:"status"`
	ResponseCode  string    `json:"responseCode"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Transaction represents an admitted banking transaction. It is an immutable
// business fact: once the decision fields are set it is never revised in place.
type Transaction struct {
	ID            string            // Internal surrogate identifier (UUID)
	TransactionID string            // Business transaction ID supplied by the caller, used for idempotency
	CorrelationID string            // Correlation ID active when the transaction was created
	AccountID     string            // Account the operation is drawn against
	CustomerID    string            // Customer owning the daily limit
	Amount        string            // Amount as a string with 2 decimal places
	AmountInCents int64             // Amount converted to cents for precise calculations
	Currency      Currency          // Currency code
	OperationType OperationType     // Kind of banking operation
	MerchantID    string            // Merchant identifier
	MerchantName  string            // Merchant display name
	MCC           string            // Merchant category code
	TerminalID    string            // Terminal where the operation originated
	IPAddress     string            // Originating IP address
	Channel       string            // Channel (POS, ECOMMERCE, ATM, ...)
	Status        TransactionStatus // Decision outcome
	ResponseCode  string            // Business response code ("00", "51", ...)
	Description   string            // Human-readable decision description
	CreatedAt     time.Time         // When the transaction was created
}

// NewTransactionParams carries the caller-supplied attributes of a transaction request
type NewTransactionParams struct {
	TransactionID string
	CorrelationID string
	AccountID     string
	CustomerID    string
	Amount        string
	Currency      string
	OperationType string
	MerchantID    string
	MerchantName  string
	MCC           string
	TerminalID    string
	IPAddress     string
	Channel       string
}

// NewTransaction creates a new undecided transaction with basic validation
func NewTransaction(params NewTransactionParams, timeProvider coreport.TimeProvider) (*Transaction, error) {
	if params.TransactionID == "" {
		return nil, errs.ErrInvalidTransactionID
	}
	if params.CustomerID == "" {
		return nil, errs.ErrInvalidCustomerID
	}
	if !isValidOperationType(params.OperationType) {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidOperationType, params.OperationType)
	}
	if !isValidCurrency(params.Currency) {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCurrency, params.Currency)
	}

	amountInCents, err := ValidateAndConvertAmount(params.Amount)
	if err != nil {
		return nil, err
	}

	return &Transaction{
		ID:            uuid.NewString(),
		TransactionID: params.TransactionID,
		CorrelationID: params.CorrelationID,
		AccountID:     params.AccountID,
		CustomerID:    params.CustomerID,
		Amount:        EnsureTwoDecimalPlaces(params.Amount),
		AmountInCents: amountInCents,
		Currency:      Currency(params.Currency),
		OperationType: OperationType(params.OperationType),
		MerchantID:    params.MerchantID,
		MerchantName:  params.MerchantName,
		MCC:           params.MCC,
		TerminalID:    params.TerminalID,
		IPAddress:     params.IPAddress,
		Channel:       params.Channel,
		CreatedAt:     timeProvider.Now(),
	}, nil
}

// MarkApproved records the approved decision
func (t *Transaction) MarkApproved() {
	t.Status = StatusApproved
	t.ResponseCode = errs.CodeApproved
	t.Description = DescriptionApproved
}

// MarkRejected records the limit-exceeded rejection
func (t *Transaction) MarkRejected() {
	t.Status = StatusRejected
	t.ResponseCode = errs.CodeLimitExceeded
	t.Description = DescriptionLimitExceeded
}

// MarkCustomerNotFound records the customer-not-found error decision
func (t *Transaction) MarkCustomerNotFound() {
	t.Status = StatusError
	t.ResponseCode = errs.CodeCustomerNotFound
	t.Description = DescriptionCustomerNotFound
}

// IsDecided reports whether a decision has been recorded on the transaction
func (t *Transaction) IsDecided() bool {
	return t.Status != ""
}

// ToResponse converts the transaction to the caller-facing response shape
func (t *Transaction) ToResponse() TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		TransactionID: t.TransactionID,
		Status:        string(t.Status),
		ResponseCode:  t.ResponseCode,
		Description:   t.Description,
		CreatedAt:     t.CreatedAt,
	}
}

// ToEvent converts the decided transaction to its wire event representation
func (t *Transaction) ToEvent() TransactionEvent {
	return TransactionEvent{
		TransactionID: t.TransactionID,
		CustomerID:    t.CustomerID,
		Amount:        t.Amount,
		Status:        string(t.Status),
		ResponseCode:  t.ResponseCode,
		Timestamp:     t.CreatedAt,
		CorrelationID: t.CorrelationID,
	}
}

// Helper functions

// isValidOperationType validates if the operation type is allowed
func isValidOperationType(operationType string) bool {
	switch OperationType(operationType) {
	case OperationDebit, OperationCredit, OperationTransfer, OperationCashWithdrawal:
		return true
	}
	return false
}

// isValidCurrency validates if the currency is allowed
func isValidCurrency(currency string) bool {
	switch Currency(currency) {
	case CurrencyPEN, CurrencyUSD, CurrencyEUR:
		return true
	}
	return false
}
