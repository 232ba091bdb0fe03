package alphavantage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/pkg/config"
	"github.com/wonny/fairvalue/pkg/httputil"
	"github.com/wonny/fairvalue/pkg/logger"
	"github.com/wonny/fairvalue/pkg/redis"
)

// ErrThrottled is returned when the API answers with a usage note instead of data
var ErrThrottled = errors.New("alphavantage: request throttled")

// Client fetches daily closes from Alpha Vantage
// ⭐ SSOT: 일별 종가 API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	apiKey     string
	baseURL    string
}

// NewHTTPClient builds the HTTP client for the price API, sharing the Redis rate limit
// across processes when Redis is enabled
func NewHTTPClient(limiter *redis.RateLimiter, log *logger.Logger) *httputil.Client {
	c := httputil.New(log).WithCircuitBreaker("alphavantage", 3, time.Minute)
	if limiter != nil {
		c = c.WithRateLimiter(limiter, redis.AlphaVantageRateLimit)
	}
	return c
}

// NewClient creates a new price client
func NewClient(httpClient *httputil.Client, cfg config.AlphaVantageConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

type dailyResponse struct {
	Meta         map[string]string            `json:"Meta Data"`
	Series       map[string]map[string]string `json:"Time Series (Daily)"`
	ErrorMessage string                       `json:"Error Message"`
	Note         string                       `json:"Note"`
	Information  string                       `json:"Information"`
}

// DailyCloses returns split-adjusted daily closes in [from, to]
func (c *Client) DailyCloses(ctx context.Context, ticker string, from, to time.Time) (*contracts.PriceSeries, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if c.apiKey == "" {
		return nil, fmt.Errorf("ALPHAVANTAGE_API_KEY is not set")
	}

	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY_ADJUSTED")
	params.Set("symbol", ticker)
	params.Set("outputsize", "full")
	params.Set("apikey", c.apiKey)
	fullURL := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())

	var resp dailyResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return nil, fmt.Errorf("fetch daily prices: %w", err)
	}

	switch {
	case resp.ErrorMessage != "":
		return nil, fmt.Errorf("%w: %s", contracts.ErrTickerNotFound, ticker)
	case resp.Series == nil && (resp.Note != "" || resp.Information != ""):
		return nil, fmt.Errorf("%w: %s%s", ErrThrottled, resp.Note, resp.Information)
	}

	points, skipped := parseSeries(resp.Series, from, to)
	series := contracts.NewPriceSeries(ticker, points)

	c.logger.WithFields(map[string]interface{}{
		"ticker":  ticker,
		"from":    from.Format("2006-01-02"),
		"to":      to.Format("2006-01-02"),
		"count":   len(series.Points),
		"skipped": skipped,
	}).Debug("Fetched daily closes")

	return &series, nil
}

// parseSeries keeps days in [from, to]; the adjusted close is preferred over the raw close
func parseSeries(raw map[string]map[string]string, from, to time.Time) ([]contracts.PricePoint, int) {
	from = dayOf(from)
	to = dayOf(to)

	points := make([]contracts.PricePoint, 0, len(raw))
	skipped := 0
	for date, bar := range raw {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			skipped++
			continue
		}
		if (!from.IsZero() && d.Before(from)) || (!to.IsZero() && d.After(to)) {
			continue
		}

		closeStr, ok := bar["5. adjusted close"]
		if !ok {
			closeStr = bar["4. close"]
		}
		v, err := strconv.ParseFloat(closeStr, 64)
		if err != nil {
			skipped++
			continue
		}
		points = append(points, contracts.PricePoint{Date: d, Close: v})
	}
	return points, skipped
}

func dayOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
