package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	errs "github.com/jchacon/fraud-detection-service/internal/domain/error"
	mcore "github.com/jchacon/fraud-detection-service/mocks/port/core"
)

func fixedTimeProvider(now time.Time) *mcore.MockTimeProvider {
	tp := mcore.NewMockTimeProvider()
	tp.On("Now").Return(now)
	return tp
}

func baseParams() entity.NewTransactionParams {
	return entity.NewTransactionParams{
		TransactionID: "TXN-001",
		CorrelationID: "corr-123",
		AccountID:     "ACC-001",
		CustomerID:    "CUST-0001",
		Amount:        "150.75",
		Currency:      "PEN",
		OperationType: "DEBIT",
		MerchantID:    "MERCH-001",
		MerchantName:  "Test Store",
		MCC:           "5411",
		TerminalID:    "TERM-01",
		IPAddress:     "10.0.0.1",
		Channel:       "POS",
	}
}

func TestNewTransaction(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	t.Run("creates undecided transaction with normalized amount", func(t *testing.T) {
		txn, err := entity.NewTransaction(baseParams(), fixedTimeProvider(now))

		assert.NoError(t, err)
		assert.NotEmpty(t, txn.ID)
		assert.Equal(t, "TXN-001", txn.TransactionID)
		assert.Equal(t, "CUST-0001", txn.CustomerID)
		assert.Equal(t, "150.75", txn.Amount)
		assert.Equal(t, int64(15075), txn.AmountInCents)
		assert.Equal(t, entity.CurrencyPEN, txn.Currency)
		assert.Equal(t, entity.OperationDebit, txn.OperationType)
		assert.Equal(t, now, txn.CreatedAt)
		assert.False(t, txn.IsDecided())
	})

	t.Run("pads amount to two decimal places", func(t *testing.T) {
		params := baseParams()
		params.Amount = "150.7"
		txn, err := entity.NewTransaction(params, fixedTimeProvider(now))

		assert.NoError(t, err)
		assert.Equal(t, "150.70", txn.Amount)
		assert.Equal(t, int64(15070), txn.AmountInCents)
	})

	validationCases := []struct {
		name        string
		mutate      func(p *entity.NewTransactionParams)
		expectedErr error
	}{
		{
			name:        "empty transaction ID",
			mutate:      func(p *entity.NewTransactionParams) { p.TransactionID = "" },
			expectedErr: errs.ErrInvalidTransactionID,
		},
		{
			name:        "empty customer ID",
			mutate:      func(p *entity.NewTransactionParams) { p.CustomerID = "" },
			expectedErr: errs.ErrInvalidCustomerID,
		},
		{
			name:        "unsupported operation type",
			mutate:      func(p *entity.NewTransactionParams) { p.OperationType = "REVERSAL" },
			expectedErr: errs.ErrInvalidOperationType,
		},
		{
			name:        "unsupported currency",
			mutate:      func(p *entity.NewTransactionParams) { p.Currency = "GBP" },
			expectedErr: errs.ErrInvalidCurrency,
		},
		{
			name:        "negative amount",
			mutate:      func(p *entity.NewTransactionParams) { p.Amount = "-10.00" },
			expectedErr: errs.ErrNegativeAmount,
		},
		{
			name:        "malformed amount",
			mutate:      func(p *entity.NewTransactionParams) { p.Amount = "10.00.00" },
			expectedErr: errs.ErrInvalidAmount,
		},
	}

	for _, tc := range validationCases {
		t.Run("rejects "+tc.name, func(t *testing.T) {
			params := baseParams()
			tc.mutate(&params)

			txn, err := entity.NewTransaction(params, fixedTimeProvider(now))

			assert.Nil(t, txn)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestTransaction_DecisionMarks(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name                string
		mark                func(txn *entity.Transaction)
		expectedStatus      entity.TransactionStatus
		expectedCode        string
		expectedDescription string
	}{
		{
			name:                "approved",
			mark:                func(txn *entity.Transaction) { txn.MarkApproved() },
			expectedStatus:      entity.StatusApproved,
			expectedCode:        errs.CodeApproved,
			expectedDescription: entity.DescriptionApproved,
		},
		{
			name:                "rejected",
			mark:                func(txn *entity.Transaction) { txn.MarkRejected() },
			expectedStatus:      entity.StatusRejected,
			expectedCode:        errs.CodeLimitExceeded,
			expectedDescription: entity.DescriptionLimitExceeded,
		},
		{
			name:                "customer not found",
			mark:                func(txn *entity.Transaction) { txn.MarkCustomerNotFound() },
			expectedStatus:      entity.StatusError,
			expectedCode:        errs.CodeCustomerNotFound,
			expectedDescription: entity.DescriptionCustomerNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, err := entity.NewTransaction(baseParams(), fixedTimeProvider(now))
			assert.NoError(t, err)

			tt.mark(txn)

			assert.True(t, txn.IsDecided())
			assert.Equal(t, tt.expectedStatus, txn.Status)
			assert.Equal(t, tt.expectedCode, txn.ResponseCode)
			assert.Equal(t, tt.expectedDescription, txn.Description)
		})
	}
}

func TestTransaction_ToResponse(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	txn, err := entity.NewTransaction(baseParams(), fixedTimeProvider(now))
	assert.NoError(t, err)
	txn.MarkApproved()

	response := txn.ToResponse()

	assert.Equal(t, txn.ID, response.ID)
	assert.Equal(t, "TXN-001", response.TransactionID)
	assert.Equal(t, string(entity.StatusApproved), response.Status)
	assert.Equal(t, errs.CodeApproved, response.ResponseCode)
	assert.Equal(t, entity.DescriptionApproved, response.Description)
	assert.Equal(t, now, response.CreatedAt)
}

func TestTransaction_ToEvent(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	txn, err := entity.NewTransaction(baseParams(), fixedTimeProvider(now))
	assert.NoError(t, err)
	txn.MarkRejected()

	event := txn.ToEvent()

	assert.Equal(t, "TXN-001", event.TransactionID)
	assert.Equal(t, "CUST-0001", event.CustomerID)
	assert.Equal(t, "150.75", event.Amount)
	assert.Equal(t, string(entity.StatusRejected), event.Status)
	assert.Equal(t, errs.CodeLimitExceeded, event.ResponseCode)
	assert.Equal(t, now, event.Timestamp)
	assert.Equal(t, "corr-123", event.CorrelationID)
}
