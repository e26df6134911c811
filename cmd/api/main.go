package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	fraudUseCase "github.com/jchacon/fraud-detection-service/internal/domain/usecase/fraud"
	outboxUseCase "github.com/jchacon/fraud-detection-service/internal/domain/usecase/outbox"

	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/api/handler"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/api/routes"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/cache"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/database"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/database/migration"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/logger"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/messaging"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/repository"
	timeProvider "github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/time"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate essential configuration
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create logger
	appLogger := logger.NewZapLogger(cfg.Environment == config.Production)

	// Setup database configuration
	dbConfig := &database.Config{
		Driver:          "postgres",
		Host:            cfg.Database.Host,
		Port:            database.ParsePort(cfg.Database.Port),
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		QueryTimeout:    cfg.Database.QueryTimeout,
		LogLevel:        cfg.Logger.Level,
		RetryAttempts:   cfg.Database.RetryAttempts,
		RetryDelay:      int(cfg.Database.RetryDelay.Seconds()),
	}

	// Initialize time provider
	tp := timeProvider.NewRealTimeProvider()

	// Connect to the database
	dbManager := database.NewManager(dbConfig, appLogger, tp)
	if _, err := dbManager.Connect(); err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer dbManager.Close()

	// Run migrations
	if err := dbManager.MigrationManager().MigrateAll(); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Seed default customer limits for non-production environments
	if cfg.Environment != config.Production {
		limitRepo := repository.NewCustomerLimitRepository(dbManager.DB(), appLogger)
		if err := migration.CreateDefaultLimits(context.Background(), limitRepo, tp); err != nil {
			appLogger.Error("Failed to create default customer limits", map[string]any{
				"error": err.Error(),
			})
		}
	}

	// Connect to Redis
	redisConfig := &cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
	}
	responseCache, err := cache.NewRedisCache(context.Background(), redisConfig, appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to Redis", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer responseCache.Close()

	// Create Kafka publisher
	kafkaConfig := &messaging.Config{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.Topic,
		WriteTimeout: cfg.Kafka.WriteTimeout,
		RequiredAcks: cfg.Kafka.RequiredAcks,
	}
	if err := kafkaConfig.Validate(); err != nil {
		appLogger.Error("Invalid Kafka configuration", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	eventPublisher := messaging.NewKafkaPublisher(kafkaConfig, appLogger)
	defer eventPublisher.Close()

	// Unit of work (transaction manager) and standalone outbox repository
	uow := database.NewUnitOfWork(dbManager.DB(), appLogger, tp)
	outboxRepo := repository.NewOutboxRepository(dbManager.DB(), appLogger)

	// Wire the admission pipeline
	retryPolicy := fraudUseCase.DefaultRetryPolicy()
	retryPolicy.MaxAttempts = cfg.Transaction.PublishMaxAttempts
	retryPolicy.BaseDelay = time.Duration(cfg.Transaction.PublishBaseDelayMs) * time.Millisecond

	fraudService := fraudUseCase.NewService(
		uow,
		outboxRepo,
		responseCache,
		eventPublisher,
		tp,
		appLogger,
		fraudUseCase.Config{
			ProcessTimeout:     cfg.Transaction.ProcessTimeout,
			LimitLookupTimeout: cfg.Transaction.LimitLookupTimeout,
			IdempotencyTTL:     cfg.Transaction.IdempotencyTTL,
			RetryPolicy:        retryPolicy,
		},
	)

	// Start the outbox reconciler
	reconciler := outboxUseCase.NewReconciler(
		outboxRepo,
		fraudService.Publisher(),
		tp,
		appLogger,
		cfg.Outbox.SweepInterval,
		cfg.Outbox.MaxRetries,
	)
	reconciler.Start(context.Background())

	// Initialize API handlers
	transactionHandler := handler.NewTransactionHandler(fraudService, appLogger)
	limitHandler := handler.NewLimitHandler(fraudService, appLogger)
	healthHandler := handler.NewHealthHandler()

	// Initialize Gin router
	router := gin.New()

	// Setup middlewares
	routes.SetupMiddlewares(router, appLogger)

	// Setup routes
	routes.SetupRoutes(router, transactionHandler, limitHandler, healthHandler)

	// Create HTTP server with configurable timeout values
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"port": cfg.Server.Port,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	// Create a deadline to wait for
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop the reconciler before closing the transports it publishes through
	reconciler.Stop()

	// Shutdown the server
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited gracefully", nil)
}

// validateConfig ensures all required configuration values are present
func validateConfig(cfg *config.Config) error {
	var missingConfigs []string

	// Validate server configuration
	if cfg.Server.Port == 0 {
		missingConfigs = append(missingConfigs, "server.port")
	}

	if cfg.Server.ReadTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.readTimeout")
	}

	if cfg.Server.WriteTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.writeTimeout")
	}

	if cfg.Server.ShutdownTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.shutdownTimeout")
	}

	// Validate database configuration
	if cfg.Database.Host == "" {
		if cfg.Environment == config.Production && os.Getenv("FD_DB_HOST") == "" {
			missingConfigs = append(missingConfigs, "database.host (or FD_DB_HOST environment variable)")
		} else if cfg.Environment != config.Production {
			missingConfigs = append(missingConfigs, "database.host")
		}
	}

	if cfg.Database.Port == "" {
		if cfg.Environment == config.Production && os.Getenv("FD_DB_PORT") == "" {
			missingConfigs = append(missingConfigs, "database.port (or FD_DB_PORT environment variable)")
		} else if cfg.Environment != config.Production {
			missingConfigs = append(missingConfigs, "database.port")
		}
	}

	if cfg.Database.Username == "" {
		if cfg.Environment == config.Production && os.Getenv("FD_DB_USERNAME") == "" {
			missingConfigs = append(missingConfigs, "database.username (or FD_DB_USERNAME environment variable)")
		} else if cfg.Environment != config.Production {
			missingConfigs = append(missingConfigs, "database.username")
		}
	}

	if cfg.Database.Password == "" {
		if cfg.Environment == config.Production && os.Getenv("FD_DB_PASSWORD") == "" {
			missingConfigs = append(missingConfigs, "database.password (or FD_DB_PASSWORD environment variable)")
		} else if cfg.Environment != config.Production {
			missingConfigs = append(missingConfigs, "database.password")
		}
	}

	if cfg.Database.Database == "" {
		if cfg.Environment == config.Production && os.Getenv("FD_DB_NAME") == "" {
			missingConfigs = append(missingConfigs, "database.database (or FD_DB_NAME environment variable)")
		} else if cfg.Environment != config.Production {
			missingConfigs = append(missingConfigs, "database.database")
		}
	}

	if cfg.Database.QueryTimeout == 0 {
		missingConfigs = append(missingConfigs, "database.queryTimeout")
	}

	// Validate Redis configuration
	if cfg.Redis.Host == "" {
		if cfg.Environment == config.Production && os.Getenv("FD_REDIS_HOST") == "" {
			missingConfigs = append(missingConfigs, "redis.host (or FD_REDIS_HOST environment variable)")
		} else if cfg.Environment != config.Production {
			missingConfigs = append(missingConfigs, "redis.host")
		}
	}

	// Validate Kafka configuration
	if len(cfg.Kafka.Brokers) == 0 {
		if cfg.Environment == config.Production && os.Getenv("FD_KAFKA_BROKERS") == "" {
			missingConfigs = append(missingConfigs, "kafka.brokers (or FD_KAFKA_BROKERS environment variable)")
		} else if cfg.Environment != config.Production {
			missingConfigs = append(missingConfigs, "kafka.brokers")
		}
	}

	if cfg.Kafka.Topic == "" {
		missingConfigs = append(missingConfigs, "kafka.topic")
	}

	// Validate transaction configuration
	if cfg.Transaction.ProcessTimeout == 0 {
		missingConfigs = append(missingConfigs, "transaction.processTimeout")
	}

	if cfg.Transaction.LimitLookupTimeout == 0 {
		missingConfigs = append(missingConfigs, "transaction.limitLookupTimeout")
	}

	if cfg.Transaction.IdempotencyTTL == 0 {
		missingConfigs = append(missingConfigs, "transaction.idempotencyTtl")
	}

	if cfg.Transaction.PublishMaxAttempts == 0 {
		missingConfigs = append(missingConfigs, "transaction.publishMaxAttempts")
	}

	// Validate outbox configuration
	if cfg.Outbox.SweepInterval == 0 {
		missingConfigs = append(missingConfigs, "outbox.sweepInterval")
	}

	if cfg.Outbox.MaxRetries == 0 {
		missingConfigs = append(missingConfigs, "outbox.maxRetries")
	}

	// Environment should be set with a valid value
	if cfg.Environment == "" {
		missingConfigs = append(missingConfigs, "environment")
	} else if cfg.Environment != config.Development &&
		cfg.Environment != config.Production &&
		cfg.Environment != config.Test {
		return fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			cfg.Environment, config.Development, config.Production, config.Test)
	}

	// Logger configuration
	if cfg.Logger.Level == "" {
		missingConfigs = append(missingConfigs, "logger.level")
	}

	// Return error with list of missing configurations
	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	// If we're in production, do additional validation for sensitive settings
	if cfg.Environment == config.Production {
		var warnings []string

		if strings.ToLower(cfg.Database.SSLMode) != "require" && strings.ToLower(cfg.Database.SSLMode) != "verify-ca" && strings.ToLower(cfg.Database.SSLMode) != "verify-full" {
			warnings = append(warnings, "database.sslMode should be set to 'require', 'verify-ca', or 'verify-full' in production")
		}

		if cfg.Server.ReadTimeout < 5*time.Second {
			warnings = append(warnings, "server.readTimeout is too low for production")
		}

		if cfg.Server.WriteTimeout < 5*time.Second {
			warnings = append(warnings, "server.writeTimeout is too low for production")
		}

		if len(warnings) > 0 {
			log.Printf("Warning: potential security issues in production configuration: %v", warnings)
		}
	}

	return nil
}
