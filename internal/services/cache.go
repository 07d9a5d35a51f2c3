package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"habit-tracker/internal/models"

	"github.com/go-redis/redis/v8"
)

// AnalyticsCache stores computed analytics snapshots per user and time zone.
// Invalidate drops every zone of the user.
type AnalyticsCache interface {
	Get(ctx context.Context, userID, zone string) (*models.Analytics, bool, error)
	Set(ctx context.Context, userID, zone string, a *models.Analytics, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string) error
}

// NoopCache disables analytics caching
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, string) (*models.Analytics, bool, error) {
	return nil, false, nil
}
func (NoopCache) Set(context.Context, string, string, *models.Analytics, time.Duration) error {
	return nil
}
func (NoopCache) Invalidate(context.Context, string) error { return nil }

// RedisCache keeps analytics snapshots in Redis as JSON, one hash per user
// with a field per time zone
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

func analyticsKey(userID string) string {
	return "analytics:" + userID
}

// Get returns the cached snapshot, if any
func (c *RedisCache) Get(ctx context.Context, userID, zone string) (*models.Analytics, bool, error) {
	data, err := c.client.HGet(ctx, analyticsKey(userID), zone).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read analytics cache: %w", err)
	}

	var a models.Analytics
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached analytics: %w", err)
	}
	return &a, true, nil
}

// Set stores a snapshot. The TTL applies to all zones of the user.
func (c *RedisCache) Set(ctx context.Context, userID, zone string, a *models.Analytics, ttl time.Duration) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode analytics: %w", err)
	}
	key := analyticsKey(userID)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, zone, data)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write analytics cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot of a user
func (c *RedisCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, analyticsKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate analytics cache: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
