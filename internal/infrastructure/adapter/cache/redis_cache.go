package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	cacheport "github.com/jchacon/fraud-detection-service/internal/domain/port/cache"
	coreport "github.com/jchacon/fraud-detection-service/internal/domain/port/core"
	"github.com/redis/go-redis/v9"
)

// Config represents Redis connection configuration
type Config struct {
	Host         string        `mapstructure:"redis_host"`
	Port         int           `mapstructure:"redis_port"`
	Password     string        `mapstructure:"redis_password"`
	DB           int           `mapstructure:"redis_db"`
	DialTimeout  time.Duration `mapstructure:"redis_dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"redis_read_timeout"`
	WriteTimeout time.Duration `mapstructure:"redis_write_timeout"`
	PoolSize     int           `mapstructure:"redis_pool_size"`
}

// Addr returns the host:port address for the Redis server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("redis host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid redis port: %d", c.Port)
	}
	return nil
}

// RedisCache implements the response cache port backed by Redis
type RedisCache struct {
	client *redis.Client
	logger coreport.Logger
}

// NewRedisCache creates a Redis-backed cache and verifies connectivity
func NewRedisCache(ctx context.Context, config *Config, logger coreport.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr(),
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolSize:     config.PoolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.Addr(), err)
	}

	logger.Info("Connected to Redis", map[string]any{
		"addr": config.Addr(),
		"db":   config.DB,
	})

	return &RedisCache{
		client: client,
		logger: logger,
	}, nil
}

// Get returns the cached value for key, or ErrCacheMiss when absent
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", cacheport.ErrCacheMiss
		}
		c.logger.Warn("Redis GET failed", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

// SetWithTTL stores value under key with the given time-to-live
func (c *RedisCache) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Warn("Redis SET failed", map[string]any{
			"key":   key,
			"ttl":   ttl.String(),
			"error": err.Error(),
		})
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool
func (c *RedisCache) Close() error {
	return c.client.Close()
}
