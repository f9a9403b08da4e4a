package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/defidash/portfolio-engine/internal/config"
	"github.com/defidash/portfolio-engine/internal/domain/entities"
)

// ErrCacheMiss indicates the key was not found in cache
var ErrCacheMiss = fmt.Errorf("cache miss")

// RedisSnapshotCache stores portfolio snapshots in Redis. Each entry
// carries its own risk-adjusted TTL; Redis expiry is set to the same
// value so expired entries surface as misses on both paths.
type RedisSnapshotCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisSnapshotCache creates a new Redis-backed snapshot cache
func NewRedisSnapshotCache(cfg config.RedisConfig, logger *zap.Logger) (*RedisSnapshotCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
	)

	return &RedisSnapshotCache{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (c *RedisSnapshotCache) Close() error {
	return c.client.Close()
}

// Get retrieves a snapshot entry. Entries past their own TTL are
// treated as misses even if Redis has not evicted them yet.
func (c *RedisSnapshotCache) Get(ctx context.Context, key string) (*entities.CacheEntry, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var entry entities.CacheEntry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached snapshot: %w", err)
	}

	if entry.Expired(time.Now()) {
		return nil, ErrCacheMiss
	}

	return &entry, nil
}

// Set stores a snapshot entry under its risk-adjusted TTL
func (c *RedisSnapshotCache) Set(ctx context.Context, key string, entry entities.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot entry: %w", err)
	}

	ttl := time.Duration(entry.TTLSeconds) * time.Second
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

// Delete removes a snapshot entry
func (c *RedisSnapshotCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete from cache: %w", err)
	}
	return nil
}

// HealthCheck checks if Redis is reachable
func (c *RedisSnapshotCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
