package handler

import (
	"net/http"
	"time"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	domainerr "github.com/jchacon/fraud-detection-service/internal/domain/error"
	coreport "github.com/jchacon/fraud-detection-service/internal/domain/port/core"
	fraudUseCase "github.com/jchacon/fraud-detection-service/internal/domain/usecase/fraud"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/api/dto"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// TransactionHandler handles transaction admission HTTP requests
type TransactionHandler struct {
	fraudService *fraudUseCase.Service
	logger       coreport.Logger
}

// NewTransactionHandler creates a new transaction handler instance
func NewTransactionHandler(
	fraudService *fraudUseCase.Service,
	logger coreport.Logger,
) *TransactionHandler {
	return &TransactionHandler{
		fraudService: fraudService,
		logger:       logger,
	}
}

// ProcessTransaction handles the POST /transactions endpoint
func (h *TransactionHandler) ProcessTransaction(c *gin.Context) {
	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid transaction request format", map[string]any{
			"error":          err.Error(),
			"correlation_id": middleware.CorrelationID(c),
		})
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ResponseCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	params := entity.NewTransactionParams{
		TransactionID: req.TransactionID,
		CorrelationID: middleware.CorrelationID(c),
		AccountID:     req.AccountID,
		CustomerID:    req.CustomerID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		OperationType: req.OperationType,
		MerchantID:    req.MerchantID,
		MerchantName:  req.MerchantName,
		MCC:           req.MCC,
		TerminalID:    req.TerminalID,
		IPAddress:     req.IPAddress,
		Channel:       req.Channel,
	}

	response, err := h.fraudService.ProcessTransaction(c.Request.Context(), params)

	if err != nil {
		// A response alongside the error means the transaction was decided
		// and recorded; the body carries the business outcome
		if response != nil {
			c.JSON(fraudUseCase.HTTPStatusFor(err), toTransactionDTO(response))
			return
		}

		status := fraudUseCase.HTTPStatusFor(err)
		message := "Internal server error"
		if domainerr.IsBusinessError(err) {
			message = err.Error()
			if status == http.StatusInternalServerError {
				status = http.StatusUnprocessableEntity
			}
		}
		c.JSON(status, dto.ErrorResponse{
			Code:    domainerr.ResponseCode(err),
			Message: message,
		})
		return
	}

	c.JSON(http.StatusOK, toTransactionDTO(response))
}

func toTransactionDTO(response *entity.TransactionResponse) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:            response.ID,
		TransactionID: response.TransactionID,
		Status:        response.Status,
		ResponseCode:  response.ResponseCode,
		Description:   response.Description,
		CreatedAt:     response.CreatedAt.Format(time.RFC3339Nano),
	}
}
