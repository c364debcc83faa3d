package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chronicle/internal/platform/config"
)

// Client wraps the go-redis client with health checking capabilities.
type Client struct {
	*redis.Client
}

// New creates a new Redis client from the provided configuration.
// Returns nil if the URL is empty (Redis not configured).
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	// Apply configuration overrides
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health checks if the Redis connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.Client.Close()
}

// VaultCache adapts the client to the vault's Cache contract: a best-effort
// value-to-id lookaside. Vault rows are immutable, so a cached id can never
// go stale; the TTL only bounds memory.
type VaultCache struct {
	client *Client
	ttl    time.Duration
}

// NewVaultCache wraps the client for use as a vault intern cache.
func NewVaultCache(client *Client, ttl time.Duration) *VaultCache {
	return &VaultCache{client: client, ttl: ttl}
}

// Get returns the cached id for a key, or (0, false) on miss or error.
// Cache errors are swallowed: the vault store is the source of truth.
func (c *VaultCache) Get(ctx context.Context, key string) (int64, bool) {
	id, err := c.client.Get(ctx, key).Int64()
	if err != nil {
		return 0, false
	}
	return id, true
}

// Set records a key-to-id association, best effort.
func (c *VaultCache) Set(ctx context.Context, key string, id int64) {
	_ = c.client.Set(ctx, key, id, c.ttl).Err()
}
