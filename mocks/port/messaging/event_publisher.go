package messaging

import (
	"context"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	messagingport "github.com/jchacon/fraud-detection-service/internal/domain/port/messaging"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher is a mock implementation of the EventPublisher port
type MockEventPublisher struct {
	mock.Mock
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(ctx context.Context, event entity.TransactionEvent) (*messagingport.PublishAck, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*messagingport.PublishAck), args.Error(1)
}
