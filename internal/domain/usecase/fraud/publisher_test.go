package fraud

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	errs "github.com/jchacon/fraud-detection-service/internal/domain/error"
	messagingport "github.com/jchacon/fraud-detection-service/internal/domain/port/messaging"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/logger"
	mcore "github.com/jchacon/fraud-detection-service/mocks/port/core"
	mmsg "github.com/jchacon/fraud-detection-service/mocks/port/messaging"
)

func testEvent() entity.TransactionEvent {
	return entity.TransactionEvent{
		TransactionID: "TXN-001",
		CustomerID:    "CUST-0001",
		Amount:        "150.75",
		Status:        string(entity.StatusApproved),
		ResponseCode:  errs.CodeApproved,
		Timestamp:     time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestRetryingPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	policy := RetryPolicy{
		MaxAttempts:  3,
		BaseDelay:    500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		JitterFactor: 0,
	}

	tests := []struct {
		name           string
		setupMocks     func(publisher *mmsg.MockEventPublisher, tp *mcore.MockTimeProvider)
		expectedErr    error
		expectedCalls  int
		expectedSleeps int
	}{
		{
			name: "first attempt succeeds without sleeping",
			setupMocks: func(publisher *mmsg.MockEventPublisher, tp *mcore.MockTimeProvider) {
				publisher.On("Publish", ctx, mock.AnythingOfType("entity.TransactionEvent")).
					Return(&messagingport.PublishAck{Topic: "fraud-detection-events"}, nil)
			},
			expectedCalls:  1,
			expectedSleeps: 0,
		},
		{
			name: "recoverable failure is retried until success",
			setupMocks: func(publisher *mmsg.MockEventPublisher, tp *mcore.MockTimeProvider) {
				publisher.On("Publish", ctx, mock.AnythingOfType("entity.TransactionEvent")).
					Return(nil, errs.ErrChannelTimeout).Twice()
				publisher.On("Publish", ctx, mock.AnythingOfType("entity.TransactionEvent")).
					Return(&messagingport.PublishAck{Topic: "fraud-detection-events"}, nil).Once()
				tp.On("Sleep", mock.Anything)
			},
			expectedCalls:  3,
			expectedSleeps: 2,
		},
		{
			name: "non-recoverable failure aborts immediately",
			setupMocks: func(publisher *mmsg.MockEventPublisher, tp *mcore.MockTimeProvider) {
				publisher.On("Publish", ctx, mock.AnythingOfType("entity.TransactionEvent")).
					Return(nil, errs.ErrNotSerializable)
			},
			expectedErr:    errs.ErrNotSerializable,
			expectedCalls:  1,
			expectedSleeps: 0,
		},
		{
			name: "exhausted attempts wrap the exhaustion error",
			setupMocks: func(publisher *mmsg.MockEventPublisher, tp *mcore.MockTimeProvider) {
				publisher.On("Publish", ctx, mock.AnythingOfType("entity.TransactionEvent")).
					Return(nil, errs.ErrChannelUnavailable)
				tp.On("Sleep", mock.Anything)
			},
			expectedErr:    errs.ErrPublishExhausted,
			expectedCalls:  3,
			expectedSleeps: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := mmsg.NewMockEventPublisher()
			tp := mcore.NewMockTimeProvider()
			tt.setupMocks(publisher, tp)

			retrying := NewRetryingPublisher(publisher, policy, tp, logger.NewNoopLogger()).
				WithRandSource(func() float64 { return 0.5 })
			ack, err := retrying.Publish(ctx, testEvent())

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, ack)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, ack)
				assert.Equal(t, "fraud-detection-events", ack.Topic)
			}

			publisher.AssertNumberOfCalls(t, "Publish", tt.expectedCalls)
			tp.AssertNumberOfCalls(t, "Sleep", tt.expectedSleeps)
		})
	}
}

func TestRetryingPublisher_Publish_CancelledContext(t *testing.T) {
	publisher := mmsg.NewMockEventPublisher()
	tp := mcore.NewMockTimeProvider()
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("entity.TransactionEvent")).
		Return(nil, errs.ErrChannelTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond, MaxDelay: 5 * time.Second}
	retrying := NewRetryingPublisher(publisher, policy, tp, logger.NewNoopLogger())

	ack, err := retrying.Publish(ctx, testEvent())

	assert.ErrorIs(t, err, errs.ErrPublishExhausted)
	assert.Nil(t, ack)
	// Cancellation short-circuits before the backoff sleep
	publisher.AssertNumberOfCalls(t, "Publish", 1)
	tp.AssertNotCalled(t, "Sleep", mock.Anything)
}
