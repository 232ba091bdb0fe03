package edgar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/pkg/config"
	"github.com/wonny/fairvalue/pkg/httputil"
	"github.com/wonny/fairvalue/pkg/logger"
	"github.com/wonny/fairvalue/pkg/redis"
)

// DefaultTickersURL is SEC's ticker → CIK table (served from www.sec.gov, not data.sec.gov)
const DefaultTickersURL = "https://www.sec.gov/files/company_tickers.json"

// factsTTL keeps the last companyfacts document so annual and quarterly extraction share one download
const factsTTL = 5 * time.Minute

// Client handles communication with SEC EDGAR XBRL APIs
// ⭐ SSOT: SEC EDGAR 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	tickersURL string
	names      map[string]bool
	cache      *redis.Cache

	mu   sync.Mutex
	ciks map[string]int
	last struct {
		cik   int
		at    time.Time
		facts *CompanyFacts
	}
}

// NewHTTPClient builds the HTTP client SEC fair-access rules require: declared User-Agent,
// bounded request rate (shared through Redis when limiter is set), breaker on repeated failures
func NewHTTPClient(cfg config.SECConfig, limiter *redis.RateLimiter, log *logger.Logger) *httputil.Client {
	c := httputil.New(log).
		WithHeader("User-Agent", cfg.UserAgent).
		WithLocalRateLimit(float64(cfg.RequestsPerSecond), 1).
		WithCircuitBreaker("sec-edgar", 5, 30*time.Second)
	if limiter != nil {
		c = c.WithRateLimiter(limiter, redis.SECRateLimit)
	}
	return c
}

// NewClient creates an EDGAR client. names are the XBRL concept names to extract.
func NewClient(httpClient *httputil.Client, baseURL string, names []string, log *logger.Logger) *Client {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
		tickersURL: DefaultTickersURL,
		names:      set,
	}
}

// WithTickersURL overrides the ticker table location
func (c *Client) WithTickersURL(u string) *Client {
	c.tickersURL = u
	return c
}

// WithCache caches the ticker table in Redis
func (c *Client) WithCache(cache *redis.Cache) *Client {
	c.cache = cache
	return c
}

type tickerEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// CIK resolves a ticker to its SEC central index key
func (c *Client) CIK(ctx context.Context, ticker string) (int, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	c.mu.Lock()
	ciks := c.ciks
	c.mu.Unlock()

	if ciks == nil {
		loaded, err := c.loadTickers(ctx)
		if err != nil {
			return 0, err
		}
		c.mu.Lock()
		c.ciks = loaded
		c.mu.Unlock()
		ciks = loaded
	}

	cik, ok := ciks[ticker]
	if !ok {
		return 0, fmt.Errorf("%w: %s", contracts.ErrTickerNotFound, ticker)
	}
	return cik, nil
}

func (c *Client) loadTickers(ctx context.Context) (map[string]int, error) {
	fetch := func() (interface{}, error) {
		var raw map[string]tickerEntry
		if err := c.httpClient.GetJSON(ctx, c.tickersURL, &raw); err != nil {
			return nil, fmt.Errorf("fetch ticker table: %w", err)
		}
		out := make(map[string]int, len(raw))
		for _, e := range raw {
			out[strings.ToUpper(e.Ticker)] = e.CIK
		}
		return out, nil
	}

	if c.cache == nil {
		v, err := fetch()
		if err != nil {
			return nil, err
		}
		return v.(map[string]int), nil
	}

	var out map[string]int
	if err := c.cache.GetOrSet(ctx, redis.TickerMapKey(), &out, redis.TTLShort, fetch); err != nil {
		return nil, err
	}
	return out, nil
}

// CompanyFacts downloads every XBRL fact the company has filed
func (c *Client) CompanyFacts(ctx context.Context, ticker string) (*CompanyFacts, error) {
	cik, err := c.CIK(ctx, ticker)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.last.facts != nil && c.last.cik == cik && time.Since(c.last.at) < factsTTL {
		facts := c.last.facts
		c.mu.Unlock()
		return facts, nil
	}
	c.mu.Unlock()

	url := fmt.Sprintf("%s/api/xbrl/companyfacts/CIK%010d.json", c.baseURL, cik)
	var facts CompanyFacts
	if err := c.httpClient.GetJSON(ctx, url, &facts); err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: no XBRL facts for %s", contracts.ErrNoData, ticker)
		}
		return nil, fmt.Errorf("fetch company facts: %w", err)
	}

	c.mu.Lock()
	c.last.cik, c.last.at, c.last.facts = cik, time.Now(), &facts
	c.mu.Unlock()

	c.logger.WithFields(map[string]interface{}{
		"ticker":     ticker,
		"cik":        cik,
		"entity":     facts.EntityName,
		"taxonomies": len(facts.Facts),
	}).Debug("Fetched company facts")

	return &facts, nil
}

// AnnualFilings extracts fiscal-year periods from 10-K (or 20-F) facts
func (c *Client) AnnualFilings(ctx context.Context, ticker string, foreign bool) (*contracts.RawFilings, error) {
	facts, err := c.CompanyFacts(ctx, ticker)
	if err != nil {
		return nil, err
	}

	form := contracts.AnnualForm(foreign)
	periods := AnnualPeriods(facts.observations(c.names, formSet(form)), form)
	if len(periods) == 0 {
		return nil, fmt.Errorf("%w: no %s facts for %s", contracts.ErrNoData, form, ticker)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":  ticker,
		"form":    form,
		"periods": len(periods),
	}).Debug("Extracted annual filings")

	return &contracts.RawFilings{Ticker: strings.ToUpper(ticker), Source: form, Periods: periods}, nil
}

// QuarterlyFilings extracts fiscal quarters from 10-Q facts; Q4 is derived from the 10-K
func (c *Client) QuarterlyFilings(ctx context.Context, ticker string) (*contracts.RawFilings, error) {
	facts, err := c.CompanyFacts(ctx, ticker)
	if err != nil {
		return nil, err
	}

	quarterly := facts.observations(c.names, formSet(contracts.FormQuarterly))
	annual := facts.observations(c.names, formSet(contracts.FormAnnual))
	periods := QuarterPeriods(quarterly, annual)
	if len(periods) == 0 {
		return nil, fmt.Errorf("%w: no %s facts for %s", contracts.ErrNoData, contracts.FormQuarterly, ticker)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":   ticker,
		"quarters": len(periods),
	}).Debug("Extracted quarterly filings")

	return &contracts.RawFilings{Ticker: strings.ToUpper(ticker), Source: contracts.FormQuarterly, Periods: periods}, nil
}

// formSet accepts the form and its amendments
func formSet(form string) map[string]bool {
	return map[string]bool{form: true, form + "/A": true}
}
