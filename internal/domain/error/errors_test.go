package error

import (
	"errors"
	"fmt"
	"testing"
)

func TestResponseCode(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "customer not found", err: ErrCustomerNotFound, expected: CodeCustomerNotFound},
		{name: "limit exceeded", err: ErrLimitExceeded, expected: CodeLimitExceeded},
		{name: "wrapped customer not found", err: fmt.Errorf("lookup: %w", ErrCustomerNotFound), expected: CodeCustomerNotFound},
		{name: "unknown error maps to system error", err: errors.New("boom"), expected: CodeSystemError},
		{name: "database error maps to system error", err: ErrDatabaseConnection, expected: CodeSystemError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResponseCode(tc.err); got != tc.expected {
				t.Errorf("ResponseCode(%v) = %s, want %s", tc.err, got, tc.expected)
			}
		})
	}
}

func TestBusinessError(t *testing.T) {
	err := NewBusinessError("TXN-001", "CUST-0001", ErrCustomerNotFound)

	var be *BusinessError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BusinessError, got %T", err)
	}
	if be.Code != CodeCustomerNotFound {
		t.Errorf("Code = %s, want %s", be.Code, CodeCustomerNotFound)
	}
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Error("expected error to unwrap to ErrCustomerNotFound")
	}

	fields := be.LogFields()
	if fields["error_type"] != "business_error" {
		t.Errorf("error_type = %v, want business_error", fields["error_type"])
	}
	if fields["transaction_id"] != "TXN-001" {
		t.Errorf("transaction_id = %v, want TXN-001", fields["transaction_id"])
	}
	if fields["response_code"] != CodeCustomerNotFound {
		t.Errorf("response_code = %v, want %s", fields["response_code"], CodeCustomerNotFound)
	}
}

func TestTechnicalError(t *testing.T) {
	err := NewTechnicalError("limit lookup", ErrStorageTimeout)

	var te *TechnicalError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TechnicalError, got %T", err)
	}
	if te.Operation != "limit lookup" {
		t.Errorf("Operation = %s, want limit lookup", te.Operation)
	}
	if !errors.Is(err, ErrStorageTimeout) {
		t.Error("expected error to unwrap to ErrStorageTimeout")
	}

	fields := te.LogFields()
	if fields["error_type"] != "technical_error" {
		t.Errorf("error_type = %v, want technical_error", fields["error_type"])
	}
	if fields["operation"] != "limit lookup" {
		t.Errorf("operation = %v, want limit lookup", fields["operation"])
	}
}

func TestIsBusinessError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "customer not found", err: ErrCustomerNotFound, expected: true},
		{name: "limit exceeded", err: ErrLimitExceeded, expected: true},
		{name: "duplicate transaction", err: ErrDuplicateTransaction, expected: true},
		{name: "wrapped business error", err: NewBusinessError("TXN-001", "CUST-0001", ErrLimitExceeded), expected: true},
		{name: "database error", err: ErrDatabaseConnection, expected: false},
		{name: "plain error", err: errors.New("boom"), expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsBusinessError(tc.err); got != tc.expected {
				t.Errorf("IsBusinessError(%v) = %v, want %v", tc.err, got, tc.expected)
			}
		})
	}
}

func TestIsTechnicalError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "database connection", err: ErrDatabaseConnection, expected: true},
		{name: "storage timeout", err: ErrStorageTimeout, expected: true},
		{name: "limit conflict", err: ErrLimitConflict, expected: true},
		{name: "internal server", err: ErrInternalServer, expected: true},
		{name: "wrapped technical error", err: NewTechnicalError("commit", errors.New("boom")), expected: true},
		{name: "limit exceeded", err: ErrLimitExceeded, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTechnicalError(tc.err); got != tc.expected {
				t.Errorf("IsTechnicalError(%v) = %v, want %v", tc.err, got, tc.expected)
			}
		})
	}
}

func TestIsRecoverableDeliveryError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "channel timeout", err: ErrChannelTimeout, expected: true},
		{name: "channel unavailable", err: ErrChannelUnavailable, expected: true},
		{name: "wrapped channel timeout", err: fmt.Errorf("publish: %w", ErrChannelTimeout), expected: true},
		{name: "not serializable", err: ErrNotSerializable, expected: false},
		{name: "plain error", err: errors.New("boom"), expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRecoverableDeliveryError(tc.err); got != tc.expected {
				t.Errorf("IsRecoverableDeliveryError(%v) = %v, want %v", tc.err, got, tc.expected)
			}
		})
	}
}

func TestNotFoundHelpers(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "customer not found", err: ErrCustomerNotFound, expected: true},
		{name: "transaction not found", err: ErrTransactionNotFound, expected: true},
		{name: "outbox event not found", err: ErrOutboxEventNotFound, expected: true},
		{name: "limit exceeded", err: ErrLimitExceeded, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsNotFoundError(tc.err); got != tc.expected {
				t.Errorf("IsNotFoundError(%v) = %v, want %v", tc.err, got, tc.expected)
			}
		})
	}
}
