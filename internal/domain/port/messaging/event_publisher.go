package messaging

import (
	"context"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
)

// PublishAck carries the delivery coordinates of an accepted event. It exists
// for observability only and is not part of the correctness contract.
type PublishAck struct {
	Topic     string
	Partition int
	Offset    int64
}

// EventPublisher is a single synchronous delivery attempt to the message
// channel. Retry policy lives with the caller, not the adapter.
//
// Possible errors:
// - ErrChannelTimeout: The channel did not acknowledge in time (recoverable)
// - ErrChannelUnavailable: The channel cannot be reached (recoverable)
// - ErrNotSerializable: The payload cannot be serialized (not recoverable)
type EventPublisher interface {
	Publish(ctx context.Context, event entity.TransactionEvent) (*PublishAck, error)
}
