package persistence

import (
	"context"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
)

// TransactionRepository defines essential methods to interact with transaction data
type TransactionRepository interface {
	// Create saves a new decided transaction. Transactions are write-once.
	//
	// Possible errors:
	// - ErrDuplicateTransaction: If a transaction with the same business ID already exists
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, transaction *entity.Transaction) error

	// GetByTransactionID retrieves a transaction by its business transaction ID
	//
	// Possible errors:
	// - ErrTransactionNotFound: If transaction with the given ID doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByTransactionID(ctx context.Context, transactionID string) (*entity.Transaction, error)

	// TransactionExists checks if a transaction with the given business ID already exists.
	// Used for the durable side of idempotency checking.
	//
	// Possible errors:
	// - ErrDatabaseConnection: If database connection fails
	TransactionExists(ctx context.Context, transactionID string) (bool, error)
}
