package fraud

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	errs "github.com/jchacon/fraud-detection-service/internal/domain/error"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/logger"
	mcore "github.com/jchacon/fraud-detection-service/mocks/port/core"
	mpers "github.com/jchacon/fraud-detection-service/mocks/port/persistence"
)

func newLedgerTimeProvider(ctx context.Context) *mcore.MockTimeProvider {
	tp := mcore.NewMockTimeProvider()
	tp.On("WithTimeout", mock.Anything, mock.Anything).
		Return(ctx, context.CancelFunc(func() {})).Maybe()
	return tp
}

func TestLimitLedger_Evaluate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name              string
		limit             *entity.CustomerLimit
		amountInCents     int64
		expectedApproved  bool
		expectedProjected int64
	}{
		{
			name: "amount within limit is approved",
			limit: &entity.CustomerLimit{
				CustomerID:          "CUST-0001",
				DailyMaxInCents:     100000,
				CurrentSpentInCents: 20000,
			},
			amountInCents:     15075,
			expectedApproved:  true,
			expectedProjected: 35075,
		},
		{
			name: "projected spend exactly at the maximum is approved",
			limit: &entity.CustomerLimit{
				CustomerID:          "CUST-0001",
				DailyMaxInCents:     100000,
				CurrentSpentInCents: 90000,
			},
			amountInCents:     10000,
			expectedApproved:  true,
			expectedProjected: 100000,
		},
		{
			name: "one cent past the maximum is rejected",
			limit: &entity.CustomerLimit{
				CustomerID:          "CUST-0001",
				DailyMaxInCents:     100000,
				CurrentSpentInCents: 90000,
			},
			amountInCents:     10001,
			expectedApproved:  false,
			expectedProjected: 100001,
		},
		{
			name: "zero-amount transaction on an exhausted limit is approved",
			limit: &entity.CustomerLimit{
				CustomerID:          "CUST-0001",
				DailyMaxInCents:     100000,
				CurrentSpentInCents: 100000,
			},
			amountInCents:     0,
			expectedApproved:  true,
			expectedProjected: 100000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limitRepo := mpers.NewMockCustomerLimitRepository()
			limitRepo.On("GetByCustomerID", mock.Anything, "CUST-0001").Return(tt.limit, nil)

			ledger := NewLimitLedger(limitRepo, newLedgerTimeProvider(ctx), logger.NewNoopLogger(), 2*time.Second)
			evaluation, err := ledger.Evaluate(ctx, "CUST-0001", tt.amountInCents, entity.OperationDebit)

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedApproved, evaluation.Approved)
			assert.Equal(t, tt.limit.CurrentSpentInCents, evaluation.CurrentSpentInCents)
			assert.Equal(t, tt.expectedProjected, evaluation.ProjectedSpentInCents)
			assert.Equal(t, tt.limit.DailyMaxInCents, evaluation.DailyMaxInCents)
		})
	}
}

func TestLimitLedger_Evaluate_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing customer surfaces the business condition", func(t *testing.T) {
		limitRepo := mpers.NewMockCustomerLimitRepository()
		limitRepo.On("GetByCustomerID", mock.Anything, "CUST-9999").
			Return(nil, errs.ErrCustomerNotFound)

		ledger := NewLimitLedger(limitRepo, newLedgerTimeProvider(ctx), logger.NewNoopLogger(), 2*time.Second)
		evaluation, err := ledger.Evaluate(ctx, "CUST-9999", 1000, entity.OperationDebit)

		assert.Nil(t, evaluation)
		assert.ErrorIs(t, err, errs.ErrCustomerNotFound)
	})

	t.Run("lookup deadline maps to storage timeout", func(t *testing.T) {
		limitRepo := mpers.NewMockCustomerLimitRepository()
		limitRepo.On("GetByCustomerID", mock.Anything, "CUST-0001").
			Return(nil, context.DeadlineExceeded)

		ledger := NewLimitLedger(limitRepo, newLedgerTimeProvider(ctx), logger.NewNoopLogger(), 2*time.Second)
		evaluation, err := ledger.Evaluate(ctx, "CUST-0001", 1000, entity.OperationDebit)

		assert.Nil(t, evaluation)
		assert.ErrorIs(t, err, errs.ErrStorageTimeout)
		assert.True(t, errs.IsTechnicalError(err))
	})
}

func TestLimitLedger_Snapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the limit row as stored", func(t *testing.T) {
		limitRepo := mpers.NewMockCustomerLimitRepository()
		limitRepo.On("GetByCustomerID", mock.Anything, "CUST-0001").
			Return(&entity.CustomerLimit{
				CustomerID:          "CUST-0001",
				DailyMaxInCents:     100000,
				CurrentSpentInCents: 35075,
			}, nil)

		ledger := NewLimitLedger(limitRepo, newLedgerTimeProvider(ctx), logger.NewNoopLogger(), 2*time.Second)
		limit, err := ledger.Snapshot(ctx, "CUST-0001")

		assert.NoError(t, err)
		assert.Equal(t, "1000.00", limit.DailyMax())
		assert.Equal(t, "350.75", limit.CurrentSpent())
	})

	t.Run("missing customer surfaces the business condition", func(t *testing.T) {
		limitRepo := mpers.NewMockCustomerLimitRepository()
		limitRepo.On("GetByCustomerID", mock.Anything, "CUST-9999").
			Return(nil, errs.ErrCustomerNotFound)

		ledger := NewLimitLedger(limitRepo, newLedgerTimeProvider(ctx), logger.NewNoopLogger(), 2*time.Second)
		limit, err := ledger.Snapshot(ctx, "CUST-9999")

		assert.Nil(t, limit)
		assert.ErrorIs(t, err, errs.ErrCustomerNotFound)
	})
}
