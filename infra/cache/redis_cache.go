package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements cache.Cache on Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisCache creates a RedisCache from redis options.
func NewRedisCache(opt *redis.Options, prefix string, logger *slog.Logger) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(opt),
		prefix: prefix,
		logger: logger.With("cache", "redis"),
	}
}

func (c *RedisCache) key(key string) string { return c.prefix + key }

// Get implements cache.Cache.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("cache miss", "key", key)
		return "", false, nil
	}
	if err != nil {
		c.logger.Error("cache get error", "key", key, "error", err)
		return "", false, err
	}
	return val, true, nil
}

// Set implements cache.Cache.
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		c.logger.Error("cache set error", "key", key, "error", err)
		return err
	}
	return nil
}

// Delete implements cache.Cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}
