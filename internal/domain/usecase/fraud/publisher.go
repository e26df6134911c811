package fraud

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	errs "github.com/jchacon/fraud-detection-service/internal/domain/error"
	coreport "github.com/jchacon/fraud-detection-service/internal/domain/port/core"
	"github.com/jchacon/fraud-detection-service/internal/domain/port/messaging"
)

// RetryingPublisher wraps the message-channel port with the bounded
// retry/backoff policy. Only failures classified as recoverable are retried;
// a serialization failure aborts immediately since it can never succeed.
type RetryingPublisher struct {
	publisher    messaging.EventPublisher
	policy       RetryPolicy
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	rnd          func() float64
}

// NewRetryingPublisher creates a new RetryingPublisher
func NewRetryingPublisher(
	publisher messaging.EventPublisher,
	policy RetryPolicy,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *RetryingPublisher {
	return &RetryingPublisher{
		publisher:    publisher,
		policy:       policy,
		timeProvider: timeProvider,
		logger:       logger,
		rnd:          rand.Float64,
	}
}

// WithRandSource overrides the jitter source. Used by tests.
func (p *RetryingPublisher) WithRandSource(rnd func() float64) *RetryingPublisher {
	p.rnd = rnd
	return p
}

// Publish attempts synchronous delivery with bounded retries. On success the
// ack carries delivery coordinates for logging. On exhaustion the returned
// error wraps ErrPublishExhausted so the caller can route the event to the
// outbox instead of losing it.
func (p *RetryingPublisher) Publish(ctx context.Context, event entity.TransactionEvent) (*messaging.PublishAck, error) {
	var lastErr error

	for attempt := 1; attempt <= p.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			p.logger.Warn("Retrying event delivery", map[string]any{
				"transaction_id": event.TransactionID,
				"attempt":        attempt,
				"of":             p.policy.MaxAttempts,
			})
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %s", errs.ErrPublishExhausted, ctx.Err().Error())
			default:
			}
			p.timeProvider.Sleep(coreport.Duration(p.policy.Delay(attempt-1, p.rnd)))
		}

		ack, err := p.publisher.Publish(ctx, event)
		if err == nil {
			p.logger.Info("Event sent to message channel", map[string]any{
				"transaction_id": event.TransactionID,
				"topic":          ack.Topic,
				"partition":      ack.Partition,
			})
			return ack, nil
		}

		lastErr = err
		if !errs.IsRecoverableDeliveryError(err) {
			p.logger.Error("Event delivery failed with non-recoverable error", map[string]any{
				"transaction_id": event.TransactionID,
				"error":          err.Error(),
			})
			return nil, err
		}
	}

	p.logger.Error("Event delivery attempts exhausted", map[string]any{
		"transaction_id": event.TransactionID,
		"attempts":       p.policy.MaxAttempts,
		"error":          lastErr.Error(),
	})
	return nil, fmt.Errorf("%w: %s", errs.ErrPublishExhausted, lastErr.Error())
}
