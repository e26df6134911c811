package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"./.env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
	"../../configs/.env",
}

// LoadConfig loads configuration from file based on the environment
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file first
	if err := loadDotEnvFile(); err != nil {
		fmt.Println("Warning: Could not load .env file:", err)
	}

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")

	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetEnvPrefix("FD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.Environment = env

	processDurations(&config)

	return &config, nil
}

// loadDotEnvFile attempts to load environment variables from .env files
func loadDotEnvFile() error {
	var lastError error

	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return nil
			} else {
				lastError = err
			}
		}
	}

	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}

	return fmt.Errorf("no .env file found in search paths")
}

// setDefaults sets default values for non-critical configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15)       // seconds
	v.SetDefault("server.writeTimeout", 15)      // seconds
	v.SetDefault("server.idleTimeout", 60)       // seconds
	v.SetDefault("server.readHeaderTimeout", 10) // seconds
	v.SetDefault("server.shutdownTimeout", 10)   // seconds

	// Database defaults for non-sensitive settings
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 50)
	v.SetDefault("database.maxIdleConns", 25)
	v.SetDefault("database.connMaxLifetime", 30) // minutes
	v.SetDefault("database.connMaxIdleTime", 15) // minutes
	v.SetDefault("database.queryTimeout", 5)     // seconds
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", 1) // seconds

	// Redis defaults
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dialTimeout", 5)  // seconds
	v.SetDefault("redis.readTimeout", 2)  // seconds
	v.SetDefault("redis.writeTimeout", 2) // seconds
	v.SetDefault("redis.poolSize", 20)

	// Kafka defaults
	v.SetDefault("kafka.topic", "fraud-detection-events")
	v.SetDefault("kafka.writeTimeout", 5) // seconds
	v.SetDefault("kafka.requiredAcks", -1)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.callerInfo", true)

	// Transaction defaults
	v.SetDefault("transaction.processTimeout", 5)     // seconds
	v.SetDefault("transaction.limitLookupTimeout", 2) // seconds
	v.SetDefault("transaction.idempotencyTtl", 24)    // hours
	v.SetDefault("transaction.publishMaxAttempts", 3)
	v.SetDefault("transaction.publishBaseDelayMs", 500)

	// Outbox defaults
	v.SetDefault("outbox.sweepInterval", 5) // seconds
	v.SetDefault("outbox.maxRetries", 10)
}

// getEnvironment determines the environment to use based on FD_ENV environment variable
func getEnvironment() string {
	env := os.Getenv("FD_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides ensures environment variables override config values
func processEnvOverrides(v *viper.Viper) {
	// Database sensitive information
	if dbHost := os.Getenv("FD_DB_HOST"); dbHost != "" {
		v.Set("database.host", dbHost)
	}
	if dbPort := os.Getenv("FD_DB_PORT"); dbPort != "" {
		v.Set("database.port", dbPort)
	}
	if dbUser := os.Getenv("FD_DB_USERNAME"); dbUser != "" {
		v.Set("database.username", dbUser)
	}
	if dbPass := os.Getenv("FD_DB_PASSWORD"); dbPass != "" {
		v.Set("database.password", dbPass)
	}
	if dbName := os.Getenv("FD_DB_NAME"); dbName != "" {
		v.Set("database.database", dbName)
	}
	if sslMode := os.Getenv("FD_DB_SSL_MODE"); sslMode != "" {
		v.Set("database.sslMode", sslMode)
	}

	// Database performance settings
	if maxOpenConns := getEnvInt("FD_DB_MAX_OPEN_CONNS", 0); maxOpenConns > 0 {
		v.Set("database.maxOpenConns", maxOpenConns)
	}
	if maxIdleConns := getEnvInt("FD_DB_MAX_IDLE_CONNS", 0); maxIdleConns > 0 {
		v.Set("database.maxIdleConns", maxIdleConns)
	}
	if queryTimeout := getEnvInt("FD_DB_QUERY_TIMEOUT_SECONDS", 0); queryTimeout > 0 {
		v.Set("database.queryTimeout", queryTimeout)
	}
	if retryAttempts := getEnvInt("FD_DB_RETRY_ATTEMPTS", 0); retryAttempts >= 0 {
		v.Set("database.retryAttempts", retryAttempts)
	}

	// Redis settings
	if redisHost := os.Getenv("FD_REDIS_HOST"); redisHost != "" {
		v.Set("redis.host", redisHost)
	}
	if redisPort := getEnvInt("FD_REDIS_PORT", 0); redisPort > 0 {
		v.Set("redis.port", redisPort)
	}
	if redisPass := os.Getenv("FD_REDIS_PASSWORD"); redisPass != "" {
		v.Set("redis.password", redisPass)
	}

	// Kafka settings
	if brokers := os.Getenv("FD_KAFKA_BROKERS"); brokers != "" {
		v.Set("kafka.brokers", strings.Split(brokers, ","))
	}
	if topic := os.Getenv("FD_KAFKA_TOPIC"); topic != "" {
		v.Set("kafka.topic", topic)
	}

	// Server settings
	if serverHost := os.Getenv("FD_SERVER_HOST"); serverHost != "" {
		v.Set("server.host", serverHost)
	}
	if serverPort := os.Getenv("FD_SERVER_PORT"); serverPort != "" {
		v.Set("server.port", serverPort)
	}

	// Logger settings
	if logLevel := os.Getenv("FD_LOGGER_LEVEL"); logLevel != "" {
		v.Set("logger.level", logLevel)
	}

	// Transaction settings
	if processTimeout := getEnvInt("FD_TRANSACTION_PROCESS_TIMEOUT_SECONDS", 0); processTimeout > 0 {
		v.Set("transaction.processTimeout", processTimeout)
	}
	if idempotencyTTL := getEnvInt("FD_TRANSACTION_IDEMPOTENCY_TTL_HOURS", 0); idempotencyTTL > 0 {
		v.Set("transaction.idempotencyTtl", idempotencyTTL)
	}

	// Outbox settings
	if sweepInterval := getEnvInt("FD_OUTBOX_SWEEP_INTERVAL_SECONDS", 0); sweepInterval > 0 {
		v.Set("outbox.sweepInterval", sweepInterval)
	}
	if maxRetries := getEnvInt("FD_OUTBOX_MAX_RETRIES", 0); maxRetries > 0 {
		v.Set("outbox.maxRetries", maxRetries)
	}
}

// Helper function to get environment variable as int
func getEnvInt(name string, defaultVal int) int {
	valStr := os.Getenv(name)
	if valStr == "" {
		return defaultVal
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}

// processDurations converts time.Duration fields from their raw values to actual durations
func processDurations(config *Config) {
	// Convert seconds to time.Duration
	config.Server.ReadTimeout = time.Duration(config.Server.ReadTimeout) * time.Second
	config.Server.WriteTimeout = time.Duration(config.Server.WriteTimeout) * time.Second
	config.Server.IdleTimeout = time.Duration(config.Server.IdleTimeout) * time.Second
	config.Server.ReadHeaderTimeout = time.Duration(config.Server.ReadHeaderTimeout) * time.Second
	config.Server.ShutdownTimeout = time.Duration(config.Server.ShutdownTimeout) * time.Second

	// Convert minutes to time.Duration
	config.Database.ConnMaxLifetime = time.Duration(config.Database.ConnMaxLifetime) * time.Minute
	config.Database.ConnMaxIdleTime = time.Duration(config.Database.ConnMaxIdleTime) * time.Minute

	// Convert seconds to time.Duration
	config.Database.QueryTimeout = time.Duration(config.Database.QueryTimeout) * time.Second
	config.Database.RetryDelay = time.Duration(config.Database.RetryDelay) * time.Second

	config.Redis.DialTimeout = time.Duration(config.Redis.DialTimeout) * time.Second
	config.Redis.ReadTimeout = time.Duration(config.Redis.ReadTimeout) * time.Second
	config.Redis.WriteTimeout = time.Duration(config.Redis.WriteTimeout) * time.Second

	config.Kafka.WriteTimeout = time.Duration(config.Kafka.WriteTimeout) * time.Second

	config.Transaction.ProcessTimeout = time.Duration(config.Transaction.ProcessTimeout) * time.Second
	config.Transaction.LimitLookupTimeout = time.Duration(config.Transaction.LimitLookupTimeout) * time.Second
	config.Transaction.IdempotencyTTL = time.Duration(config.Transaction.IdempotencyTTL) * time.Hour

	config.Outbox.SweepInterval = time.Duration(config.Outbox.SweepInterval) * time.Second
}
