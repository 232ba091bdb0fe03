package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/fairvalue/internal/brain"
	"github.com/wonny/fairvalue/internal/external/alphavantage"
	"github.com/wonny/fairvalue/internal/external/edgar"
	"github.com/wonny/fairvalue/internal/s0_data"
	"github.com/wonny/fairvalue/internal/valuationconfig"
	"github.com/wonny/fairvalue/pkg/config"
	"github.com/wonny/fairvalue/pkg/database"
	"github.com/wonny/fairvalue/pkg/logger"
	"github.com/wonny/fairvalue/pkg/redis"
)

// app holds everything a command needs, wired once from the environment
type app struct {
	cfg          *config.Config
	valuation    *valuationconfig.Config
	log          *logger.Logger
	db           *database.DB // nil when DATABASE_URL is empty
	redis        *redis.Client
	filings      *edgar.Client
	prices       *alphavantage.Client
	filingsStore *s0_data.FilingsRepository
	priceStore   *s0_data.PriceRepository
	orchestrator *brain.Orchestrator
}

// loadApp wires config → logger → store → cache → clients → orchestrator
func loadApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if valuationConfig != "" {
		cfg.ValuationConfigPath = valuationConfig
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Valuation rules
	vcfg, err := valuationconfig.LoadOrDefault(cfg.ValuationConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load valuation config: %w", err)
	}

	a := &app{cfg: cfg, valuation: vcfg, log: log}

	// 4. Store (optional)
	db, err := database.New(cfg)
	switch {
	case errors.Is(err, database.ErrNotConfigured):
		log.Debug("DATABASE_URL not set, running without a store")
	case err != nil:
		return nil, fmt.Errorf("connect to database: %w", err)
	default:
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		a.db = db
		a.filingsStore = s0_data.NewFilingsRepository(db.Pool)
		a.priceStore = s0_data.NewPriceRepository(db.Pool)
	}

	// 5. Redis (cache + shared rate limit, disabled unless REDIS_ENABLED)
	rdb, err := redis.New(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = rdb
	cache := redis.NewCache(rdb)
	limiter := redis.NewRateLimiter(rdb)

	// 6. External clients
	a.filings = edgar.NewClient(
		edgar.NewHTTPClient(cfg.SEC, limiter, log),
		cfg.SEC.BaseURL,
		vcfg.SourceNames(),
		log,
	).WithCache(cache)
	a.prices = alphavantage.NewClient(alphavantage.NewHTTPClient(limiter, log), cfg.AlphaVantage, log)

	// 7. Orchestrator
	opts := []brain.Option{brain.WithCache(cache)}
	if a.db != nil {
		opts = append(opts, brain.WithStore(a.filingsStore, a.priceStore))
	}
	orch, err := brain.NewOrchestrator(vcfg, a.filings, a.prices, log, opts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.orchestrator = orch

	log.WithFields(map[string]interface{}{
		"env":         cfg.Env,
		"store":       a.db != nil,
		"redis":       rdb.Enabled(),
		"redis_addr":  rdb.Addr(),
		"config_hash": orch.ConfigHash(),
	}).Debug("Application wired")

	return a, nil
}

// Close releases the store and redis connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
