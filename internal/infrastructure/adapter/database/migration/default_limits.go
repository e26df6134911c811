package migration

import (
	"context"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	errs "github.com/jchacon/fraud-detection-service/internal/domain/error"
	coreport "github.com/jchacon/fraud-detection-service/internal/domain/port/core"
	"github.com/jchacon/fraud-detection-service/internal/domain/port/persistence"
)

// Default customer IDs and daily maximums for local and demo environments
var defaultLimits = map[string]string{
	"CUST-0001": "1000.00",
	"CUST-0002": "5000.00",
	"CUST-0003": "10000.00",
}

// CreateDefaultLimits provisions limit rows for the default customers
func CreateDefaultLimits(ctx context.Context, repo persistence.CustomerLimitRepository, timeProvider coreport.TimeProvider) error {
	for customerID, dailyMax := range defaultLimits {
		_, err := repo.GetByCustomerID(ctx, customerID)
		if err == nil {
			continue
		}
		if !errs.IsCustomerNotFoundError(err) {
			return err
		}

		limit, err := entity.NewCustomerLimit(customerID, dailyMax, timeProvider)
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, limit); err != nil {
			return err
		}
	}

	return nil
}
