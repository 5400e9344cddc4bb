package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vyrodovalexey/avgitgw/internal/config"
	"github.com/vyrodovalexey/avgitgw/internal/observability"
)

const redisBackend = "redis"

// redisCache implements a Redis-based cache.
type redisCache struct {
	logger     observability.Logger
	metrics    *Metrics
	client     *redis.Client
	keyPrefix  string
	defaultTTL time.Duration

	hits   int64
	misses int64
}

// newRedisCache creates a new Redis cache and verifies the connection.
func newRedisCache(cfg *config.CacheConfig, logger observability.Logger, metrics *Metrics) (*redisCache, error) {
	if cfg.Redis.Address == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := pingRedis(client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %s", ErrConnectionFailed, err)
	}

	keyPrefix := resolveKeyPrefix(cfg.KeyPrefix)

	c := &redisCache{
		logger:     logger,
		metrics:    metrics,
		client:     client,
		keyPrefix:  keyPrefix,
		defaultTTL: cfg.TTL.Duration(),
	}

	logger.Info("redis cache initialized",
		observability.String("address", cfg.Redis.Address),
		observability.String("keyPrefix", keyPrefix),
		observability.Duration("defaultTTL", c.defaultTTL))

	return c, nil
}

// pingRedis tests the Redis connection with a timeout.
func pingRedis(client *redis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return client.Ping(ctx).Err()
}

// resolveKeyPrefix returns the key prefix, defaulting to "avgitgw:" if empty.
func resolveKeyPrefix(prefix string) string {
	if prefix == "" {
		return "avgitgw:"
	}
	return prefix
}

// Get retrieves a value from the cache.
func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err == nil {
		atomic.AddInt64(&c.hits, 1)
		c.metrics.RecordHit(redisBackend)
		c.logger.Debug("cache hit",
			observability.String("key", key),
			observability.Int("size", len(val)))
		return val, nil
	}

	if errors.Is(err, redis.Nil) {
		atomic.AddInt64(&c.misses, 1)
		c.metrics.RecordMiss(redisBackend)
		return nil, ErrCacheMiss
	}

	return nil, fmt.Errorf("redis get: %w", err)
}

// Set stores a value in the cache.
func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	if err := c.client.Set(ctx, c.keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	c.logger.Debug("cache set",
		observability.String("key", key),
		observability.Duration("ttl", ttl))

	return nil
}

// Delete removes a value from the cache.
func (c *redisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// Exists checks if a key exists in the cache.
func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

// Close closes the Redis connection.
func (c *redisCache) Close() error {
	c.logger.Info("redis cache closed")
	return c.client.Close()
}

// Stats returns cache statistics. Size is not tracked for the Redis
// backend since the keyspace is shared between instances.
func (c *redisCache) Stats() CacheStats {
	return CacheStats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
	}
}
