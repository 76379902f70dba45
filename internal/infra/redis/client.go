package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps Redis operations for the ingestion side channels.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func ingestLockKey(date string) string {
	return fmt.Sprintf("dininghours:ingest_lock:%s", date)
}

// AcquireIngestLock attempts to take the per-date ingestion lock. Two
// concurrent ingestions of the same date would otherwise race at the
// transaction level; the lock keeps the periodic trigger from overlapping
// itself.
func (c *Client) AcquireIngestLock(ctx context.Context, date string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, ingestLockKey(date), "locked", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx failed: %w", err)
	}
	return ok, nil
}

// ReleaseIngestLock releases the per-date ingestion lock.
func (c *Client) ReleaseIngestLock(ctx context.Context, date string) error {
	return c.rdb.Del(ctx, ingestLockKey(date)).Err()
}
