package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/config"
	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

// RedisClient caches operator-facing sync state: latest closes per symbol
// and the most recent run summary. It is an optional dependency; the sync
// engine runs without it.
type RedisClient struct {
	client *redis.Client
	logger *logrus.Entry
}

// NewRedisClient creates a new Redis client
func NewRedisClient(cfg *config.RedisConfig, logger *logrus.Logger) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client: client,
		logger: logger.WithField("component", "redis"),
	}, nil
}

// Close closes the Redis connection
func (rc *RedisClient) Close() error {
	return rc.client.Close()
}

// Health checks Redis health
func (rc *RedisClient) Health(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// SetLatestClose caches the most recent daily bar for a symbol
func (rc *RedisClient) SetLatestClose(ctx context.Context, symbol string, bar *models.DailyPrice) error {
	return rc.SetJSON(ctx, fmt.Sprintf("quote:latest:%s", symbol), bar, 48*time.Hour)
}

// GetLatestClose returns the cached latest daily bar for a symbol
func (rc *RedisClient) GetLatestClose(ctx context.Context, symbol string) (*models.DailyPrice, error) {
	var bar models.DailyPrice
	found, err := rc.GetJSON(ctx, fmt.Sprintf("quote:latest:%s", symbol), &bar)
	if err != nil || !found {
		return nil, err
	}
	return &bar, nil
}

// SetLastRunSummary stores the summary of the most recent sync run
func (rc *RedisClient) SetLastRunSummary(ctx context.Context, summary interface{}) error {
	return rc.SetJSON(ctx, "sync:last_run", summary, 7*24*time.Hour)
}

// GetLastRunSummary loads the summary of the most recent sync run into dest
func (rc *RedisClient) GetLastRunSummary(ctx context.Context, dest interface{}) (bool, error) {
	return rc.GetJSON(ctx, "sync:last_run", dest)
}

// SetJSON stores a JSON-encoded value with expiration
func (rc *RedisClient) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", key, err)
	}
	return rc.client.Set(ctx, key, data, expiration).Err()
}

// GetJSON retrieves and decodes a JSON value; returns false when the key
// does not exist
func (rc *RedisClient) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := rc.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal value for %s: %w", key, err)
	}
	return true, nil
}

// Delete removes keys
func (rc *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return rc.client.Del(ctx, keys...).Err()
}
