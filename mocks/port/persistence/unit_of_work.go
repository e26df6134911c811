package persistence

import (
	"context"

	persistenceport "github.com/jchacon/fraud-detection-service/internal/domain/port/persistence"
	"github.com/stretchr/testify/mock"
)

// MockUnitOfWork is a mock implementation of the UnitOfWork port
type MockUnitOfWork struct {
	mock.Mock
}

func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return ctx, args.Error(1)
	}
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *MockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) GetTransactionRepository(ctx context.Context) persistenceport.TransactionRepository {
	args := m.Called(ctx)
	return args.Get(0).(persistenceport.TransactionRepository)
}

func (m *MockUnitOfWork) GetCustomerLimitRepository(ctx context.Context) persistenceport.CustomerLimitRepository {
	args := m.Called(ctx)
	return args.Get(0).(persistenceport.CustomerLimitRepository)
}

func (m *MockUnitOfWork) GetOutboxRepository(ctx context.Context) persistenceport.OutboxRepository {
	args := m.Called(ctx)
	return args.Get(0).(persistenceport.OutboxRepository)
}
