package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fairvalue/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name     string
		redis    config.RedisConfig
		kind     string
		key      string
		expected string
		addr     string
	}{
		{
			name:     "default prefix",
			redis:    config.RedisConfig{Host: "localhost", Port: "6379"},
			kind:     "cache",
			key:      FactsKey("aapl", false),
			expected: "fairvalue:cache:facts:AAPL:domestic",
			addr:     "localhost:6379",
		},
		{
			name:     "configured prefix",
			redis:    config.RedisConfig{Host: "cache.internal", Port: "6380", KeyPrefix: "fv-staging"},
			kind:     "ratelimit",
			key:      SECRateLimit.Key,
			expected: "fv-staging:ratelimit:" + SECRateLimit.Key,
			addr:     "cache.internal:6380",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(&config.Config{Redis: tt.redis})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, client.Key(tt.kind, tt.key))
			assert.Equal(t, tt.addr, client.Addr())
		})
	}
}

func TestNewClient_UnreachableFails(t *testing.T) {
	// port 1 is reserved and refuses connections
	_, err := New(&config.Config{Redis: config.RedisConfig{Host: "127.0.0.1", Port: "1", Enabled: true}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t))

	allowed, remaining, err := limiter.Allow(context.Background(), SECRateLimit)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, SECRateLimit.Limit, remaining)

	assert.NoError(t, limiter.Wait(context.Background(), AlphaVantageRateLimit))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t))
	ctx := context.Background()

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Set(ctx, "key", "v", TTLDaily))
	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestCache_GetOrSetCallsLoaderWhenDisabled(t *testing.T) {
	cache := NewCache(disabledClient(t))

	type payload struct {
		Ticker string  `json:"ticker"`
		Close  float64 `json:"close"`
	}

	calls := 0
	var got payload
	err := cache.GetOrSet(context.Background(), PricesKey("aapl", "2020-01-01", "2024-12-31"), &got, TTLDaily,
		func() (interface{}, error) {
			calls++
			return payload{Ticker: "AAPL", Close: 187.5}, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, payload{Ticker: "AAPL", Close: 187.5}, got)
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"FactsKey domestic", FactsKey("aapl", false), "facts:AAPL:domestic"},
		{"FactsKey foreign", FactsKey("tsm", true), "facts:TSM:foreign"},
		{"QuarterFactsKey", QuarterFactsKey("msft"), "facts:MSFT:quarters"},
		{"PricesKey", PricesKey("msft", "2015-01-01", "2024-12-31"), "prices:MSFT:2015-01-01:2024-12-31"},
		{"TickerMapKey", TickerMapKey(), "sec:company_tickers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}
