// Package redis provides a Redis-backed placement cache.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/puneet-chandna/hippoplace/internal/allocation"
	"github.com/puneet-chandna/hippoplace/internal/config"
	"github.com/puneet-chandna/hippoplace/internal/domain"
)

// ErrCacheMiss indicates the key was not found in cache. It wraps
// domain.ErrNotFound so callers behind the PlacementCache interface can tell
// a miss from a cache failure.
var ErrCacheMiss = fmt.Errorf("cache miss: %w", domain.ErrNotFound)

// Ensure Cache satisfies the policy layer's cache interface.
var _ allocation.PlacementCache = (*Cache)(nil)

// Cache serves placements computed for unchanged datacenter snapshots.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache creates a new Redis cache connection.
func NewCache(cfg config.RedisConfig, logger *zap.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis", zap.String("addr", cfg.Address()))

	return &Cache{client: client, ttl: cfg.TTL, logger: logger}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Health checks if Redis is reachable.
func (c *Cache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GetPlacement retrieves a cached placement by snapshot key.
func (c *Cache) GetPlacement(ctx context.Context, key string) (*domain.Placement, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get error: %w", err)
	}

	var p domain.Placement
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal placement: %w", err)
	}
	return &p, nil
}

// SetPlacement stores a placement under the snapshot key with the configured TTL.
func (c *Cache) SetPlacement(ctx context.Context, key string, p *domain.Placement) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal placement: %w", err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// InvalidatePlacements drops every cached placement.
func (c *Cache) InvalidatePlacements(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "placement:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("Failed to delete key", zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	return iter.Err()
}
