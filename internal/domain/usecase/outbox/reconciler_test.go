package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	errs "github.com/jchacon/fraud-detection-service/internal/domain/error"
	messagingport "github.com/jchacon/fraud-detection-service/internal/domain/port/messaging"
	"github.com/jchacon/fraud-detection-service/internal/domain/usecase/fraud"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/logger"
	mcore "github.com/jchacon/fraud-detection-service/mocks/port/core"
	mmsg "github.com/jchacon/fraud-detection-service/mocks/port/messaging"
	mpers "github.com/jchacon/fraud-detection-service/mocks/port/persistence"
)

const testMaxRetries = 10

func pendingOutboxEvent(id uint64, transactionID string, retryCount int) *entity.OutboxEvent {
	payload, _ := json.Marshal(entity.TransactionEvent{
		TransactionID: transactionID,
		CustomerID:    "CUST-0001",
		Amount:        "150.75",
		Status:        string(entity.StatusApproved),
		ResponseCode:  errs.CodeApproved,
	})
	return &entity.OutboxEvent{
		ID:            id,
		TransactionID: transactionID,
		Payload:       string(payload),
		Status:        entity.OutboxStatusFailed,
		RetryCount:    retryCount,
		CreatedAt:     time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC),
	}
}

func newTestReconciler(outboxRepo *mpers.MockOutboxRepository, publisher *mmsg.MockEventPublisher, tp *mcore.MockTimeProvider) *Reconciler {
	// Single-attempt policy keeps the reconciler's own bookkeeping visible
	policy := fraud.RetryPolicy{MaxAttempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
	retrying := fraud.NewRetryingPublisher(publisher, policy, tp, logger.NewNoopLogger())
	return NewReconciler(outboxRepo, retrying, tp, logger.NewNoopLogger(), 5*time.Second, testMaxRetries)
}

func TestReconciler_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 10, 35, 0, 0, time.UTC)

	tests := []struct {
		name        string
		setupMocks  func(outboxRepo *mpers.MockOutboxRepository, publisher *mmsg.MockEventPublisher, tp *mcore.MockTimeProvider)
		expectedErr bool
		verify      func(t *testing.T, outboxRepo *mpers.MockOutboxRepository, publisher *mmsg.MockEventPublisher)
	}{
		{
			name: "delivered row is claimed then deleted",
			setupMocks: func(outboxRepo *mpers.MockOutboxRepository, publisher *mmsg.MockEventPublisher, tp *mcore.MockTimeProvider) {
				outboxRepo.On("ListByStatus", ctx, entity.OutboxStatusFailed, 50).
					Return([]*entity.OutboxEvent{pendingOutboxEvent(1, "TXN-001", 0)}, nil)
				outboxRepo.On("Update", ctx, mock.MatchedBy(func(e *entity.OutboxEvent) bool {
					return e.Status == entity.OutboxStatusProcessing
				})).Return(nil).Once()
				publisher.On("Publish", ctx, mock.AnythingOfType("entity.TransactionEvent")).
					Return(&messagingport.PublishAck{Topic: "fraud-detection-events"}, nil)
				outboxRepo.On("Delete", ctx, uint64(1)).Return(nil)
			},
			verify: func(t *testing.T, outboxRepo *mpers.MockOutboxRepository, publisher *mmsg.MockEventPublisher) {
				outboxRepo.AssertCalled(t, "Delete", ctx, uint64(1))
				outboxRepo.AssertNumberOfCalls(t, "Update", 1)
			},
		},
		{
			name: "failed delivery returns the claimed row to failed with a bumped counter",
			setupMocks: func(outboxRepo *mpers.MockOutboxRepository, publisher *mmsg.MockEventPublisher, tp *mcore.MockTimeProvider) {
				outboxRepo.On("ListByStatus", ctx, entity.OutboxStatusFailed, 50).
					Return([]*entity.OutboxEvent{pendingOutboxEvent(1, "TXN-001", 2)}, nil)
				outboxRepo.On("Update", ctx, mock.MatchedBy(func(e *entity.OutboxEvent) bool {
					return e.Status == entity.OutboxStatusProcessing && e.RetryCount == 2
				})).Return(nil).Once()
				publisher.On("Publish", ctx, mock.AnythingOfType("entity.TransactionEvent")).
					Return(nil, errs.ErrChannelUnavailable)
				outboxRepo.On("Update", ctx, mock.MatchedBy(func(e *entity.OutboxEvent) bool {
					return e.RetryCount == 3 && e.Status == entity.OutboxStatusFailed
				})).Return(nil).Once()
			},
			verify: func(t *testing.T, outboxRepo *mpers.MockOutboxRepository, publisher *mmsg.MockEventPublisher) {
				outboxRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			},
		},
		{
			name: "row reaching the retry ceiling goes fatal",
			setupMocks: func(outboxRepo *mpers.MockOutboxRepository, publisher *mmsg.MockEventPublisher, tp *mcore.MockTimeProvider) {
				outboxRepo.On("ListByStatus", ctx, entity.OutboxStatusFailed, 50).
					Return([]*entity.OutboxEvent{pendingOutboxEvent(1, "TXN-001", testMaxRetries-1)}, nil)
				outboxRepo.On("Update", ctx, mock.MatchedBy(func(e *entity.OutboxEvent) bool {
					return e.Status == entity.OutboxStatusProcessing
				})).Return(nil).Once()
				publisher.On("Publish", ctx, mock.AnythingOfType("entity.TransactionEvent")).
					Return(nil, errs.ErrChannelUnavailable)
				outboxRepo.On("Update", ctx, mock.MatchedBy(func(e *entity.OutboxEvent) bool {
					return e.RetryCount == testMaxRetries && e.Status == entity.OutboxStatusFatal
				})).Return(nil).Once()
			},
			verify: func(t *testing.T, outboxRepo *mpers.MockOutboxRepository, publisher *mmsg.MockEventPublisher) {
				outboxRepo.AssertExpectations(t)
			},
		},
		{
			name: "unclaimable row is skipped until the next sweep",
			setupMocks: func(outboxRepo *mpers.MockOutboxRepository, publisher *mmsg.MockEventPublisher, tp *mcore.MockTimeProvider) {
				outboxRepo.On("ListByStatus", ctx, entity.OutboxStatusFailed, 50).
					Return([]*entity.OutboxEvent{pendingOutboxEvent(1, "TXN-001", 0)}, nil)
				outboxRepo.On("Update", ctx, mock.MatchedBy(func(e *entity.OutboxEvent) bool {
					return e.Status == entity.OutboxStatusProcessing
				})).Return(errs.ErrDatabaseConnection).Once()
			},
			verify: func(t *testing.T, outboxRepo *mpers.MockOutboxRepository, publisher *mmsg.MockEventPublisher) {
				publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
				outboxRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			},
		},
		{
			name: "unreadable payload counts as a delivery failure",
			setupMocks: func(outboxRepo *mpers.MockOutboxRepository, publisher *mmsg.MockEventPublisher, tp *mcore.MockTimeProvider) {
				broken := pendingOutboxEvent(1, "TXN-001", 0)
				broken.Payload = "{not json"
				outboxRepo.On("ListByStatus", ctx, entity.OutboxStatusFailed, 50).
					Return([]*entity.OutboxEvent{broken}, nil)
				outboxRepo.On("Update", ctx, mock.MatchedBy(func(e *entity.OutboxEvent) bool {
					return e.RetryCount == 1 && e.Status == entity.OutboxStatusFailed
				})).Return(nil)
			},
			verify: func(t *testing.T, outboxRepo *mpers.MockOutboxRepository, publisher *mmsg.MockEventPublisher) {
				publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
			},
		},
		{
			name: "all queued rows are processed in one sweep",
			setupMocks: func(outboxRepo *mpers.MockOutboxRepository, publisher *mmsg.MockEventPublisher, tp *mcore.MockTimeProvider) {
				outboxRepo.On("ListByStatus", ctx, entity.OutboxStatusFailed, 50).
					Return([]*entity.OutboxEvent{
						pendingOutboxEvent(1, "TXN-001", 0),
						pendingOutboxEvent(2, "TXN-002", 0),
						pendingOutboxEvent(3, "TXN-003", 0),
					}, nil)
				outboxRepo.On("Update", ctx, mock.AnythingOfType("*entity.OutboxEvent")).Return(nil)
				publisher.On("Publish", ctx, mock.AnythingOfType("entity.TransactionEvent")).
					Return(&messagingport.PublishAck{Topic: "fraud-detection-events"}, nil)
				outboxRepo.On("Delete", ctx, mock.AnythingOfType("uint64")).Return(nil)
			},
			verify: func(t *testing.T, outboxRepo *mpers.MockOutboxRepository, publisher *mmsg.MockEventPublisher) {
				publisher.AssertNumberOfCalls(t, "Publish", 3)
				outboxRepo.AssertNumberOfCalls(t, "Delete", 3)
			},
		},
		{
			name: "listing failure propagates",
			setupMocks: func(outboxRepo *mpers.MockOutboxRepository, publisher *mmsg.MockEventPublisher, tp *mcore.MockTimeProvider) {
				outboxRepo.On("ListByStatus", ctx, entity.OutboxStatusFailed, 50).
					Return(nil, errs.ErrDatabaseConnection)
			},
			expectedErr: true,
		},
		{
			name: "undeletable delivered row is left for the next sweep",
			setupMocks: func(outboxRepo *mpers.MockOutboxRepository, publisher *mmsg.MockEventPublisher, tp *mcore.MockTimeProvider) {
				outboxRepo.On("ListByStatus", ctx, entity.OutboxStatusFailed, 50).
					Return([]*entity.OutboxEvent{pendingOutboxEvent(1, "TXN-001", 0)}, nil)
				outboxRepo.On("Update", ctx, mock.MatchedBy(func(e *entity.OutboxEvent) bool {
					return e.Status == entity.OutboxStatusProcessing
				})).Return(nil).Once()
				publisher.On("Publish", ctx, mock.AnythingOfType("entity.TransactionEvent")).
					Return(&messagingport.PublishAck{Topic: "fraud-detection-events"}, nil)
				outboxRepo.On("Delete", ctx, uint64(1)).Return(errs.ErrDatabaseConnection)
			},
			verify: func(t *testing.T, outboxRepo *mpers.MockOutboxRepository, publisher *mmsg.MockEventPublisher) {
				outboxRepo.AssertNumberOfCalls(t, "Update", 1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outboxRepo := mpers.NewMockOutboxRepository()
			publisher := mmsg.NewMockEventPublisher()
			tp := mcore.NewMockTimeProvider()
			tp.On("Now").Return(now).Maybe()
			tt.setupMocks(outboxRepo, publisher, tp)

			reconciler := newTestReconciler(outboxRepo, publisher, tp)
			err := reconciler.Sweep(ctx)

			if tt.expectedErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			if tt.verify != nil {
				tt.verify(t, outboxRepo, publisher)
			}
		})
	}
}

func TestReconciler_Sweep_CancelledContext(t *testing.T) {
	outboxRepo := mpers.NewMockOutboxRepository()
	publisher := mmsg.NewMockEventPublisher()
	tp := mcore.NewMockTimeProvider()

	ctx, cancel := context.WithCancel(context.Background())
	outboxRepo.On("ListByStatus", ctx, entity.OutboxStatusFailed, 50).
		Return([]*entity.OutboxEvent{pendingOutboxEvent(1, "TXN-001", 0)}, nil)
	cancel()

	reconciler := newTestReconciler(outboxRepo, publisher, tp)
	err := reconciler.Sweep(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestReconciler_StartStop(t *testing.T) {
	outboxRepo := mpers.NewMockOutboxRepository()
	publisher := mmsg.NewMockEventPublisher()
	tp := mcore.NewMockTimeProvider()
	outboxRepo.On("ListByStatus", mock.Anything, entity.OutboxStatusFailed, 50).
		Return([]*entity.OutboxEvent{}, nil).Maybe()

	policy := fraud.RetryPolicy{MaxAttempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
	retrying := fraud.NewRetryingPublisher(publisher, policy, tp, logger.NewNoopLogger())
	reconciler := NewReconciler(outboxRepo, retrying, tp, logger.NewNoopLogger(), 10*time.Millisecond, testMaxRetries)

	reconciler.Start(context.Background())
	time.Sleep(35 * time.Millisecond)

	assert.NotPanics(t, func() {
		reconciler.Stop()
	})
}
