package fraud

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	errs "github.com/jchacon/fraud-detection-service/internal/domain/error"
	cacheport "github.com/jchacon/fraud-detection-service/internal/domain/port/cache"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/logger"
	mcache "github.com/jchacon/fraud-detection-service/mocks/port/cache"
	mpers "github.com/jchacon/fraud-detection-service/mocks/port/persistence"
)

func storedResponse() entity.TransactionResponse {
	return entity.TransactionResponse{
		ID:            "internal-id",
		TransactionID: "TXN-001",
		Status:        string(entity.StatusApproved),
		ResponseCode:  errs.CodeApproved,
		Description:   entity.DescriptionApproved,
		CreatedAt:     time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestIdempotencyGuard_Resolve(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		setupMocks    func(cache *mcache.MockResponseCache, txnRepo *mpers.MockTransactionRepository)
		expectedFound bool
		expectedID    string
		expectedErr   bool
	}{
		{
			name: "cache hit returns cached response",
			setupMocks: func(cache *mcache.MockResponseCache, txnRepo *mpers.MockTransactionRepository) {
				payload, _ := json.Marshal(storedResponse())
				cache.On("Get", ctx, "idempotency:txn:TXN-001").Return(string(payload), nil)
			},
			expectedFound: true,
			expectedID:    "internal-id",
		},
		{
			name: "corrupt cache entry falls through to durable store",
			setupMocks: func(cache *mcache.MockResponseCache, txnRepo *mpers.MockTransactionRepository) {
				cache.On("Get", ctx, "idempotency:txn:TXN-001").Return("{not json", nil)
				txnRepo.On("TransactionExists", ctx, "TXN-001").Return(false, nil)
			},
			expectedFound: false,
		},
		{
			name: "cache failure falls through to durable store",
			setupMocks: func(cache *mcache.MockResponseCache, txnRepo *mpers.MockTransactionRepository) {
				cache.On("Get", ctx, "idempotency:txn:TXN-001").
					Return("", errors.New("connection refused"))
				txnRepo.On("TransactionExists", ctx, "TXN-001").Return(true, nil)
				txnRepo.On("GetByTransactionID", ctx, "TXN-001").Return(&entity.Transaction{
					ID:            "internal-id",
					TransactionID: "TXN-001",
					Status:        entity.StatusApproved,
					ResponseCode:  errs.CodeApproved,
				}, nil)
			},
			expectedFound: true,
			expectedID:    "internal-id",
		},
		{
			name: "durable store miss reports not found",
			setupMocks: func(cache *mcache.MockResponseCache, txnRepo *mpers.MockTransactionRepository) {
				cache.On("Get", ctx, "idempotency:txn:TXN-001").Return("", cacheport.ErrCacheMiss)
				txnRepo.On("TransactionExists", ctx, "TXN-001").Return(false, nil)
			},
			expectedFound: false,
		},
		{
			name: "row vanishing between existence check and retrieval counts as miss",
			setupMocks: func(cache *mcache.MockResponseCache, txnRepo *mpers.MockTransactionRepository) {
				cache.On("Get", ctx, "idempotency:txn:TXN-001").Return("", cacheport.ErrCacheMiss)
				txnRepo.On("TransactionExists", ctx, "TXN-001").Return(true, nil)
				txnRepo.On("GetByTransactionID", ctx, "TXN-001").
					Return(nil, errs.ErrTransactionNotFound)
			},
			expectedFound: false,
		},
		{
			name: "durable store failure propagates",
			setupMocks: func(cache *mcache.MockResponseCache, txnRepo *mpers.MockTransactionRepository) {
				cache.On("Get", ctx, "idempotency:txn:TXN-001").Return("", cacheport.ErrCacheMiss)
				txnRepo.On("TransactionExists", ctx, "TXN-001").
					Return(false, errs.ErrDatabaseConnection)
			},
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := mcache.NewMockResponseCache()
			txnRepo := mpers.NewMockTransactionRepository()
			tt.setupMocks(cache, txnRepo)

			guard := NewIdempotencyGuard(cache, txnRepo, logger.NewNoopLogger(), time.Hour)
			response, found, err := guard.Resolve(ctx, "TXN-001")

			if tt.expectedErr {
				assert.Error(t, err)
				assert.False(t, found)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedFound, found)
			if tt.expectedFound {
				assert.NotNil(t, response)
				assert.Equal(t, tt.expectedID, response.ID)
			} else {
				assert.Nil(t, response)
			}
		})
	}
}

func TestIdempotencyGuard_Record(t *testing.T) {
	ctx := context.Background()
	ttl := 24 * time.Hour

	t.Run("writes serialized response under prefixed key", func(t *testing.T) {
		cache := mcache.NewMockResponseCache()
		response := storedResponse()
		payload, _ := json.Marshal(&response)
		cache.On("SetWithTTL", ctx, "idempotency:txn:TXN-001", string(payload), ttl).
			Return(nil)

		guard := NewIdempotencyGuard(cache, mpers.NewMockTransactionRepository(), logger.NewNoopLogger(), ttl)
		guard.Record(ctx, "TXN-001", &response)

		cache.AssertExpectations(t)
	})

	t.Run("swallows cache write failure", func(t *testing.T) {
		cache := mcache.NewMockResponseCache()
		cache.On("SetWithTTL", ctx, mock.Anything, mock.Anything, ttl).
			Return(errors.New("connection refused"))

		guard := NewIdempotencyGuard(cache, mpers.NewMockTransactionRepository(), logger.NewNoopLogger(), ttl)
		response := storedResponse()

		assert.NotPanics(t, func() {
			guard.Record(ctx, "TXN-001", &response)
		})
	})
}
