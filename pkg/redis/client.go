// Package redis wraps go-redis/v9 for storing exported documents under a
// common key prefix.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/config"
)

// Client wraps a go-redis client.
type Client struct {
	rdb    *redis.Client
	prefix string
}

// NewClient creates a Redis client and verifies the connection with a PING.
func NewClient(ctx context.Context, cfg config.RedisConfig, prefix string) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	c := &Client{rdb: rdb, prefix: prefix}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		rdb.Close()
		return nil, err
	}
	return c, nil
}

// Key returns the prefixed key for name.
func (c *Client) Key(name string) string {
	return c.prefix + name
}

// Set stores value under the prefixed name. A zero ttl keeps it forever.
func (c *Client) Set(ctx context.Context, name string, value []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, c.Key(name), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", c.Key(name), err)
	}
	return nil
}

// Get returns the value stored under the prefixed name and whether it
// exists.
func (c *Client) Get(ctx context.Context, name string) ([]byte, bool, error) {
	data, err := c.rdb.Get(ctx, c.Key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", c.Key(name), err)
	}
	return data, true, nil
}

// Ping sends a PING to Redis.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the underlying Redis connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
