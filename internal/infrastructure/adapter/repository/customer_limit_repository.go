package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	errs "github.com/jchacon/fraud-detection-service/internal/domain/error"
	coreport "github.com/jchacon/fraud-detection-service/internal/domain/port/core"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// CustomerLimitRepository implements the daily limit ledger port using GORM
type CustomerLimitRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewCustomerLimitRepository creates a new CustomerLimitRepository instance
func NewCustomerLimitRepository(db *gorm.DB, logger coreport.Logger) *CustomerLimitRepository {
	return &CustomerLimitRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// GetByCustomerID retrieves the limit row for a customer
func (r *CustomerLimitRepository) GetByCustomerID(ctx context.Context, customerID string) (*entity.CustomerLimit, error) {
	var limitModel model.CustomerLimit
	result := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		First(&limitModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrCustomerNotFound
		}
		if errors.Is(result.Error, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: limit lookup for customer %s", errs.ErrStorageTimeout, customerID)
		}
		r.logger.Error("Failed to get customer limit", map[string]any{
			"customer_id": customerID,
			"error":       result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return &entity.CustomerLimit{
		CustomerID:          limitModel.CustomerID,
		DailyMaxInCents:     limitModel.DailyMaxInCents,
		CurrentSpentInCents: limitModel.CurrentSpentInCents,
		LastReset:           limitModel.LastReset,
	}, nil
}

// UpdateSpent conditionally advances the customer's daily spend. The WHERE
// clause on the expected spend is the compare-and-swap that serializes
// concurrent approvals: the row only changes when nobody else touched it
// since the evaluation read.
func (r *CustomerLimitRepository) UpdateSpent(ctx context.Context, customerID string, expectedSpentInCents, newSpentInCents int64) error {
	r.logger.Debug("Advancing customer daily spend", map[string]any{
		"customer_id":    customerID,
		"expected_spent": entity.AmountInCentsToString(expectedSpentInCents),
		"new_spent":      entity.AmountInCentsToString(newSpentInCents),
	})

	result := r.db.WithContext(ctx).Model(&model.CustomerLimit{}).
		Where("customer_id = ? AND current_spent_in_cents = ?", customerID, expectedSpentInCents).
		Update("current_spent_in_cents", newSpentInCents)

	if result.Error != nil {
		r.logger.Error("Failed to update customer spend", map[string]any{
			"customer_id": customerID,
			"error":       result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	if result.RowsAffected == 0 {
		// Either the row vanished or a concurrent update won the race;
		// distinguish so the caller can re-evaluate instead of failing hard
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.CustomerLimit{}).
			Where("customer_id = ?", customerID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
		}
		if count == 0 {
			return errs.ErrCustomerNotFound
		}
		r.logger.Warn("Customer spend update lost a concurrent race", map[string]any{
			"customer_id": customerID,
		})
		return errs.ErrLimitConflict
	}

	return nil
}

// Create provisions a new limit row
func (r *CustomerLimitRepository) Create(ctx context.Context, limit *entity.CustomerLimit) error {
	limitModel := model.CustomerLimit{
		CustomerID:          limit.CustomerID,
		DailyMaxInCents:     limit.DailyMaxInCents,
		CurrentSpentInCents: limit.CurrentSpentInCents,
		LastReset:           limit.LastReset,
	}

	result := r.db.WithContext(ctx).Create(&limitModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			return nil // Already provisioned
		}
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return nil
}
