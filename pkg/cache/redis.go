package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	arborerrors "github.com/matzehuels/arbor/pkg/errors"
)

// RedisConfig configures a [RedisCache].
type RedisConfig struct {
	Addr     string `koanf:"addr" yaml:"addr" json:"addr"`
	Password string `koanf:"password" yaml:"password" json:"-"`
	DB       int    `koanf:"db" yaml:"db" json:"db"`
	// Prefix is prepended to every key, so several deployments can share
	// one Redis database.
	Prefix string `koanf:"prefix" yaml:"prefix" json:"prefix"`
}

// RedisCache is a [Cache] backed by Redis. Expiry is delegated to Redis
// key TTLs.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (Cache, error) {
	if cfg.Addr == "" {
		return nil, arborerrors.Config("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, arborerrors.Wrap(arborerrors.ErrCodeNetwork, err, "redis ping %s", cfg.Addr)
	}
	return NewRedisCacheFromClient(client, cfg.Prefix), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value with an optional TTL.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

// Close closes the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
