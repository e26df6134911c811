package persistence

import (
	"context"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
)

// CustomerLimitRepository defines methods to interact with the daily limit ledger
type CustomerLimitRepository interface {
	// GetByCustomerID retrieves the limit row for a customer
	//
	// Possible errors:
	// - ErrCustomerNotFound: If the customer has no limit row provisioned
	// - ErrStorageTimeout: If the lookup exceeds its deadline
	// - ErrDatabaseConnection: If database connection fails
	GetByCustomerID(ctx context.Context, customerID string) (*entity.CustomerLimit, error)

	// UpdateSpent conditionally advances the customer's daily spend from
	// expectedSpentInCents to newSpentInCents. The compare-and-swap on the
	// expected value is what serializes concurrent approvals racing on the
	// same customer: the loser of the race sees zero rows updated.
	//
	// Possible errors:
	// - ErrLimitConflict: If the row no longer holds expectedSpentInCents
	// - ErrCustomerNotFound: If the customer has no limit row
	// - ErrDatabaseConnection: If database connection fails
	UpdateSpent(ctx context.Context, customerID string, expectedSpentInCents, newSpentInCents int64) error

	// Create provisions a new limit row. Used by migrations and tooling only;
	// production provisioning is owned by an external system.
	Create(ctx context.Context, limit *entity.CustomerLimit) error
}
