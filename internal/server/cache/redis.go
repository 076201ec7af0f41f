// Package cache wraps the Redis client used for request rate limiting.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter is a fixed-window counter store.
type Counter interface {
	// IncrWithTTL increments key and returns the new value. The TTL is set
	// on the first hit and on any later hit that finds the key without one.
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache connects to redisURL and pings it.
func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis url is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{rdb: rdb}, nil
}

func (c *RedisCache) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var (
		incr   *redis.IntCmd
		ttlCmd *redis.DurationCmd
	)
	if _, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttlCmd = pipe.TTL(ctx, key)
		return nil
	}); err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}

	count := incr.Val()
	// A key without an expiry never resets, so any hit that finds one
	// sets the window again.
	if ttlCmd.Val() < 0 {
		if err := c.rdb.Expire(ctx, key, ttl).Err(); err != nil {
			return count, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return count, nil
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
