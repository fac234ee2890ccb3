package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"itscare/internal/config"
	"itscare/internal/summary"

	"github.com/redis/go-redis/v9"
)

const summaryKeyPrefix = "summary:"

// RedisSummaryCache stores monthly summaries in Redis so they survive
// process restarts.
type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a client from config settings.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisSummaryCache(client *redis.Client, ttl time.Duration) *RedisSummaryCache {
	return &RedisSummaryCache{client: client, ttl: ttl}
}

func (c *RedisSummaryCache) Get(ctx context.Context, month string) (*summary.Monthly, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := c.client.Get(ctx, summaryKeyPrefix+month).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary from redis: %w", err)
	}

	var s summary.Monthly
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &s, nil
}

func (c *RedisSummaryCache) Set(ctx context.Context, s *summary.Monthly) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if s == nil {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := c.client.Set(ctx, summaryKeyPrefix+s.Month, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set summary in redis: %w", err)
	}
	return nil
}

func (c *RedisSummaryCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, summaryKeyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan summary keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete summary keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Ping verifies the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}
