// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"assistant-workers/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the Redis client used for analysis caching and
// progress reporting.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis creates a new Redis client.
func NewRedis(cfg config.Redis) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	return &RedisClient{Client: rdb}, nil
}

// Ping tests the Redis connection.
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// GetClient returns the underlying *redis.Client.
func (c *RedisClient) GetClient() *redis.Client {
	return c.Client
}
