package persistence

import (
	"context"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockOutboxRepository is a mock implementation of the OutboxRepository port
type MockOutboxRepository struct {
	mock.Mock
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Save(ctx context.Context, event *entity.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockOutboxRepository) Update(ctx context.Context, event *entity.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockOutboxRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) ListByStatus(ctx context.Context, status entity.OutboxEventStatus, limit int) ([]*entity.OutboxEvent, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.OutboxEvent), args.Error(1)
}
