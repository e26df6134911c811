package persistence

import (
	"context"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
)

// OutboxRepository defines methods to interact with the outbox_events table
type OutboxRepository interface {
	// Save persists a new outbox row
	Save(ctx context.Context, event *entity.OutboxEvent) error

	// Update persists retry-count/status/error changes to an existing row
	//
	// Possible errors:
	// - ErrOutboxEventNotFound: If the row doesn't exist
	Update(ctx context.Context, event *entity.OutboxEvent) error

	// Delete removes a row after its event was confirmed delivered
	Delete(ctx context.Context, id uint64) error

	// ListByStatus returns rows in the given status ordered by creation time
	// ascending, bounded by limit. Oldest-first ordering preserves
	// notification sequencing for a customer's timeline.
	ListByStatus(ctx context.Context, status entity.OutboxEventStatus, limit int) ([]*entity.OutboxEvent, error)
}
