package persistence

import (
	"context"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockCustomerLimitRepository is a mock implementation of the CustomerLimitRepository port
type MockCustomerLimitRepository struct {
	mock.Mock
}

func NewMockCustomerLimitRepository() *MockCustomerLimitRepository {
	return &MockCustomerLimitRepository{}
}

func (m *MockCustomerLimitRepository) GetByCustomerID(ctx context.Context, customerID string) (*entity.CustomerLimit, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CustomerLimit), args.Error(1)
}

func (m *MockCustomerLimitRepository) UpdateSpent(ctx context.Context, customerID string, expectedSpentInCents, newSpentInCents int64) error {
	args := m.Called(ctx, customerID, expectedSpentInCents, newSpentInCents)
	return args.Error(0)
}

func (m *MockCustomerLimitRepository) Create(ctx context.Context, limit *entity.CustomerLimit) error {
	args := m.Called(ctx, limit)
	return args.Error(0)
}
