package cache

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockResponseCache is a mock implementation of the ResponseCache port
type MockResponseCache struct {
	mock.Mock
}

func NewMockResponseCache() *MockResponseCache {
	return &MockResponseCache{}
}

func (m *MockResponseCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockResponseCache) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}
