package routes

import (
	coreport "github.com/jchacon/fraud-detection-service/internal/domain/port/core"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/api/handler"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all the routes for the API
func SetupRoutes(
	router *gin.Engine,
	transactionHandler *handler.TransactionHandler,
	limitHandler *handler.LimitHandler,
	healthHandler *handler.HealthHandler,
) {
	// POST /transactions
	router.POST("/transactions", transactionHandler.ProcessTransaction)

	// GET /customers/:customerId/limit
	customerRoutes := router.Group("/customers")
	{
		customerRoutes.GET("/:customerId/limit", limitHandler.GetLimit)
	}

	// GET /health
	router.GET("/health", healthHandler.Health)
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	// Apply middlewares in the correct order
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Correlation())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())
}
