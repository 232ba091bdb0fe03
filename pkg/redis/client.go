package redis

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/fairvalue/pkg/config"
)

// DefaultKeyPrefix namespaces every cache and rate-limit key of this tool
const DefaultKeyPrefix = "fairvalue"

// connectTimeout bounds the startup ping; an unreachable Redis must not stall a CLI run
const connectTimeout = 3 * time.Second

// Client wraps the Redis client shared by the filings cache and the SEC/Alpha Vantage rate limits.
// A disabled client is valid: every helper built on it degrades to a no-op.
// ⭐ SSOT: Redis 연결과 키 네임스페이스는 여기서만 관리
type Client struct {
	rdb     *redis.Client
	enabled bool
	addr    string
	prefix  string
}

// New connects to Redis when REDIS_ENABLED is set, otherwise returns a disabled client
func New(cfg *config.Config) (*Client, error) {
	prefix := cfg.Redis.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	addr := net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port)

	if !cfg.Redis.Enabled {
		return &Client{addr: addr, prefix: prefix}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: connectTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connection failed (%s): %w", addr, err)
	}

	return &Client{rdb: rdb, enabled: true, addr: addr, prefix: prefix}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled returns whether Redis is enabled
func (c *Client) Enabled() bool {
	return c.enabled
}

// Addr is host:port, also reported for a disabled client
func (c *Client) Addr() string {
	return c.addr
}

// Ping checks the connection; a disabled client is always healthy
func (c *Client) Ping(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Key builds "<prefix>:<kind>:<name>", e.g. fairvalue:cache:facts:AAPL:domestic
func (c *Client) Key(kind, name string) string {
	return strings.Join([]string{c.prefix, kind, name}, ":")
}

// Redis returns the underlying redis client for advanced usage
func (c *Client) Redis() *redis.Client {
	return c.rdb
}
