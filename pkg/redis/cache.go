package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Cache provides typed caching utilities
// ⭐ SSOT: 캐시 헬퍼는 여기서만
type Cache struct {
	client *Client
}

// NewCache creates a cache helper under the client's key prefix
func NewCache(client *Client) *Cache {
	return &Cache{client: client}
}

// Get retrieves a cached value
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	fullKey := c.client.Key("cache", key)
	data, err := c.client.Redis().Get(ctx, fullKey).Bytes()
	if err != nil {
		// Key not found is not an error
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	fullKey := c.client.Key("cache", key)
	return c.client.Redis().Set(ctx, fullKey, data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}

	fullKey := c.client.Key("cache", key)
	return c.client.Redis().Del(ctx, fullKey).Err()
}

// GetOrSet retrieves from cache or calls fn to populate it
func (c *Cache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) error {
	// Try cache first
	found, err := c.Get(ctx, key, dest)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	// Cache miss - call function
	value, err := fn()
	if err != nil {
		return err
	}

	// Store in cache
	// 캐시 저장 실패는 무시 (원본 값은 그대로 반환)
	_ = c.Set(ctx, key, value, ttl)

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	return json.Unmarshal(data, dest)
}

// Predefined TTLs
const (
	TTLShort = 10 * time.Minute   // 티커→CIK 매핑
	TTLDaily = 24 * time.Hour     // 일별 종가
	TTLWeek  = 7 * 24 * time.Hour // 공시 재무 (분기 단위로만 변함)
)

// FactsKey is the cache key for a company's normalized filings
func FactsKey(ticker string, foreign bool) string {
	kind := "domestic"
	if foreign {
		kind = "foreign"
	}
	return fmt.Sprintf("facts:%s:%s", strings.ToUpper(ticker), kind)
}

// QuarterFactsKey is the cache key for quarterly filings
func QuarterFactsKey(ticker string) string {
	return fmt.Sprintf("facts:%s:quarters", strings.ToUpper(ticker))
}

// PricesKey is the cache key for a daily close range
func PricesKey(ticker string, from, to string) string {
	return fmt.Sprintf("prices:%s:%s:%s", strings.ToUpper(ticker), from, to)
}

// TickerMapKey is the cache key for the SEC ticker→CIK table
func TickerMapKey() string {
	return "sec:company_tickers"
}
