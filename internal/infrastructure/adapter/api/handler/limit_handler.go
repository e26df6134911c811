package handler

import (
	"errors"
	"net/http"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	domainerr "github.com/jchacon/fraud-detection-service/internal/domain/error"
	coreport "github.com/jchacon/fraud-detection-service/internal/domain/port/core"
	fraudUseCase "github.com/jchacon/fraud-detection-service/internal/domain/usecase/fraud"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/api/dto"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// LimitHandler handles customer limit HTTP requests
type LimitHandler struct {
	fraudService *fraudUseCase.Service
	logger       coreport.Logger
}

// NewLimitHandler creates a new limit handler instance
func NewLimitHandler(
	fraudService *fraudUseCase.Service,
	logger coreport.Logger,
) *LimitHandler {
	return &LimitHandler{
		fraudService: fraudService,
		logger:       logger,
	}
}

// GetLimit handles the GET /customers/{customerId}/limit endpoint
func (h *LimitHandler) GetLimit(c *gin.Context) {
	customerID := c.Param("customerId")
	if customerID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ResponseCode(domainerr.ErrInvalidCustomerID),
			Message: "Customer ID is required",
		})
		return
	}

	limit, err := h.fraudService.GetCustomerLimit(c.Request.Context(), customerID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorMessage := "Internal server error"

		if errors.Is(err, domainerr.ErrCustomerNotFound) {
			statusCode = http.StatusNotFound
			errorMessage = "Customer not found"
		}

		h.logger.Error("Error getting customer limit", map[string]any{
			"customer_id":    customerID,
			"correlation_id": middleware.CorrelationID(c),
			"error":          err.Error(),
		})

		c.JSON(statusCode, dto.ErrorResponse{
			Code:    domainerr.ResponseCode(err),
			Message: errorMessage,
		})
		return
	}

	available := limit.DailyMaxInCents - limit.CurrentSpentInCents
	if available < 0 {
		available = 0
	}

	c.JSON(http.StatusOK, dto.LimitResponse{
		CustomerID:   limit.CustomerID,
		DailyMax:     limit.DailyMax(),
		CurrentSpent: limit.CurrentSpent(),
		Available:    entity.AmountInCentsToString(available),
	})
}
