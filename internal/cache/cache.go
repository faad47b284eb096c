package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a thin redis wrapper used to memoize title reads. A nil *Cache is
// valid and behaves as a disabled cache, so the service runs without redis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(redisURL, password string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client, ttl: ttl}, nil
}

// TitleKey names the cache entry for a single title.
func TitleKey(id int64) string {
	return fmt.Sprintf("title:%d", id)
}

// Get returns the cached value, or (nil, false) on a miss or when the cache
// is disabled. Redis errors degrade to a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, key, value, c.ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	err := c.client.Del(ctx, keys...).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
