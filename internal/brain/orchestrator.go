package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v5"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/s0_data"
	"github.com/wonny/fairvalue/internal/s1_shares"
	"github.com/wonny/fairvalue/internal/s2_ttm"
	"github.com/wonny/fairvalue/internal/s3_prices"
	"github.com/wonny/fairvalue/internal/s4_ratios"
	"github.com/wonny/fairvalue/internal/s5_growth"
	"github.com/wonny/fairvalue/internal/s6_valuation"
	"github.com/wonny/fairvalue/internal/valuationconfig"
	"github.com/wonny/fairvalue/pkg/logger"
	"github.com/wonny/fairvalue/pkg/redis"
)

// Orchestrator coordinates the valuation pipeline for one ticker
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	// Stage components
	resolver   *s0_data.Resolver
	aggregator *s2_ttm.Aggregator
	estimator  *s1_shares.Estimator
	aligner    *s3_prices.Aligner
	ratios     *s4_ratios.Engine
	growth     *s5_growth.Engine
	valuation  *s6_valuation.Engine

	// Collaborators
	remoteFilings contracts.FilingsSource
	remotePrices  contracts.PriceSource
	storeFilings  contracts.FilingsRepository
	storePrices   contracts.PriceRepository
	cache         *redis.Cache

	configHash string
	now        func() time.Time
	logger     *logger.Logger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithStore reads from (and saves downloads to) the local store
func WithStore(filings contracts.FilingsRepository, prices contracts.PriceRepository) Option {
	return func(o *Orchestrator) {
		o.storeFilings = filings
		o.storePrices = prices
	}
}

// WithCache caches downloaded filings and prices
func WithCache(cache *redis.Cache) Option {
	return func(o *Orchestrator) {
		o.cache = cache
	}
}

// WithClock overrides time.Now (tests)
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// NewOrchestrator wires every stage from one valuation config.
// filings and prices are the download collaborators; either may be nil when only the store is used.
func NewOrchestrator(
	cfg *valuationconfig.Config,
	filings contracts.FilingsSource,
	prices contracts.PriceSource,
	log *logger.Logger,
	opts ...Option,
) (*Orchestrator, error) {
	hash, err := valuationconfig.Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash valuation config: %w", err)
	}

	o := &Orchestrator{
		resolver:      s0_data.NewResolver(cfg, log),
		aggregator:    s2_ttm.New(cfg, log),
		estimator:     s1_shares.New(cfg, log),
		aligner:       s3_prices.New(cfg, log),
		ratios:        s4_ratios.New(log),
		growth:        s5_growth.New(cfg, log),
		valuation:     s6_valuation.New(cfg, log),
		remoteFilings: filings,
		remotePrices:  prices,
		configHash:    hash,
		now:           time.Now,
		logger:        log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// ConfigHash returns the hash of the valuation config every run reports
func (o *Orchestrator) ConfigHash() string {
	return o.configHash
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	RunID       string
	Ticker      string
	Foreign     bool // 20-F instead of 10-K
	Download    bool // fetch from the collaborators instead of the store
	Assumptions contracts.Assumptions
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	RunID      string        `json:"run_id"`
	Ticker     string        `json:"ticker"`
	Foreign    bool          `json:"foreign"`
	ConfigHash string        `json:"config_hash"`
	Downloaded bool          `json:"downloaded"`
	Duration   time.Duration `json:"duration"`
	Analysis
}

// Run fetches the inputs and executes the pipeline
// S0 → S2 → S1 → S3 → S4 → S5 → S6
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := o.now()

	if config.RunID == "" {
		config.RunID = uuid.New().String()
	}
	config.Ticker = strings.ToUpper(strings.TrimSpace(config.Ticker))
	if config.Ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	log := o.logger.WithRunID(config.RunID).WithTicker(config.Ticker)
	log.WithFields(map[string]interface{}{
		"foreign":     config.Foreign,
		"download":    config.Download,
		"config_hash": o.configHash,
	}).Info("Starting valuation run")

	result := &RunResult{
		RunID:      config.RunID,
		Ticker:     config.Ticker,
		Foreign:    config.Foreign,
		ConfigHash: o.configHash,
	}

	filings, prices, downloaded, err := o.sources(config.Download)
	if err != nil {
		return nil, err
	}
	result.Downloaded = downloaded
	cached := downloaded && o.cache != nil

	annual, err := o.fetchAnnual(ctx, filings, config, cached)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", contracts.StageData.ShortName(), err)
	}

	var warnings []string
	quarterly, err := o.fetchQuarterly(ctx, filings, config, cached)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.WithError(err).Warn("Quarterly filings unavailable, no TTM data")
		warnings = append(warnings, fmt.Sprintf("quarterly filings unavailable: %v", err))
	}

	table, err := o.resolver.AnnualTable(annual)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", contracts.StageData.ShortName(), err)
	}

	from, to := o.priceRange(table)
	series, err := o.fetchPrices(ctx, prices, config.Ticker, from, to, cached)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", contracts.StagePrices.ShortName(), err)
	}

	if result.Downloaded {
		o.save(ctx, log, annual, quarterly, series)
	}

	analysis, err := o.Analyze(AnalysisInput{
		Annual:      annual,
		Quarterly:   quarterly,
		Prices:      *series,
		Assumptions: config.Assumptions,
	})
	if err != nil {
		return nil, err
	}
	analysis.Warnings = append(warnings, analysis.Warnings...)
	result.Analysis = *analysis
	result.Duration = o.now().Sub(startTime)

	log.WithFields(map[string]interface{}{
		"duration": result.Duration.Seconds(),
		"stages":   len(result.CompletedStages),
		"warnings": len(result.Warnings),
	}).Info("Valuation run completed")

	return result, nil
}

// sources picks the collaborators for this run: downloads when asked or when no store is wired.
// Only downloads are cached; the store is already local.
func (o *Orchestrator) sources(download bool) (contracts.FilingsSource, contracts.PriceSource, bool, error) {
	if download || o.storeFilings == nil || o.storePrices == nil {
		if o.remoteFilings == nil || o.remotePrices == nil {
			return nil, nil, false, fmt.Errorf("no filings/price source configured")
		}
		return o.remoteFilings, o.remotePrices, true, nil
	}
	return o.storeFilings, o.storePrices, false, nil
}

func (o *Orchestrator) fetchAnnual(ctx context.Context, src contracts.FilingsSource, config RunConfig, cached bool) (*contracts.RawFilings, error) {
	fetch := func() (interface{}, error) {
		return src.AnnualFilings(ctx, config.Ticker, config.Foreign)
	}
	if !cached {
		return asFilings(fetch())
	}
	var out contracts.RawFilings
	if err := o.cache.GetOrSet(ctx, redis.FactsKey(config.Ticker, config.Foreign), &out, redis.TTLWeek, fetch); err != nil {
		return nil, err
	}
	return &out, nil
}

func (o *Orchestrator) fetchQuarterly(ctx context.Context, src contracts.FilingsSource, config RunConfig, cached bool) (*contracts.RawFilings, error) {
	fetch := func() (interface{}, error) {
		return src.QuarterlyFilings(ctx, config.Ticker)
	}
	if !cached {
		return asFilings(fetch())
	}
	var out contracts.RawFilings
	if err := o.cache.GetOrSet(ctx, redis.QuarterFactsKey(config.Ticker), &out, redis.TTLWeek, fetch); err != nil {
		return nil, err
	}
	return &out, nil
}

func (o *Orchestrator) fetchPrices(ctx context.Context, src contracts.PriceSource, ticker string, from, to time.Time, cached bool) (*contracts.PriceSeries, error) {
	var series *contracts.PriceSeries
	var err error
	if cached {
		var out contracts.PriceSeries
		key := redis.PricesKey(ticker, from.Format("2006-01-02"), to.Format("2006-01-02"))
		err = o.cache.GetOrSet(ctx, key, &out, redis.TTLDaily, func() (interface{}, error) {
			return src.DailyCloses(ctx, ticker, from, to)
		})
		series = &out
	} else {
		series, err = src.DailyCloses(ctx, ticker, from, to)
	}
	if err != nil {
		return nil, err
	}
	if series == nil || len(series.Points) == 0 {
		return nil, fmt.Errorf("%w: no daily closes for %s", contracts.ErrNoData, ticker)
	}
	return series, nil
}

func asFilings(v interface{}, err error) (*contracts.RawFilings, error) {
	if err != nil {
		return nil, err
	}
	f, _ := v.(*contracts.RawFilings)
	if f == nil {
		return nil, contracts.ErrNoData
	}
	return f, nil
}

// priceRange covers one year before the first annual period through today
func (o *Orchestrator) priceRange(table contracts.FundamentalsTable) (time.Time, time.Time) {
	to := o.now().UTC().Truncate(24 * time.Hour)
	annual := table.Annual()
	if len(annual) == 0 {
		return to.AddDate(-1, 0, 0), to
	}
	from := time.Date(annual[0].FiscalYear-1, 1, 1, 0, 0, 0, 0, time.UTC)
	if !annual[0].EndDate.IsZero() && annual[0].EndDate.AddDate(-1, 0, 0).Before(from) {
		from = annual[0].EndDate.AddDate(-1, 0, 0)
	}
	return from, to
}

// save persists downloads to the store. Failures are logged, the run continues.
func (o *Orchestrator) save(ctx context.Context, log *logger.Logger, annual, quarterly *contracts.RawFilings, series *contracts.PriceSeries) {
	if o.storeFilings == nil || o.storePrices == nil {
		return
	}
	for _, f := range []*contracts.RawFilings{annual, quarterly} {
		if f == nil {
			continue
		}
		if err := o.storeFilings.SaveFilings(ctx, f); err != nil {
			log.WithError(err).Warn("Failed to save filings")
		}
	}
	if err := o.storePrices.SavePrices(ctx, series); err != nil {
		log.WithError(err).Warn("Failed to save prices")
	}
}

// AnalysisInput is everything Analyze needs; no I/O happens past this point
type AnalysisInput struct {
	Annual      *contracts.RawFilings
	Quarterly   *contracts.RawFilings // optional
	Prices      contracts.PriceSeries
	Assumptions contracts.Assumptions
}

// Analysis holds every stage output of one run
type Analysis struct {
	Table           contracts.FundamentalsTable        `json:"fundamentals"`
	Quality         s0_data.QualityReport              `json:"quality"`
	Shares          contracts.AdjustedShareCountSeries `json:"shares"`
	DilutedShares   contracts.AdjustedShareCountSeries `json:"diluted_shares"`
	Prices          contracts.AlignedPriceColumn       `json:"prices"`
	LatestPrice     null.Float                         `json:"latest_price"`
	HasTTM          bool                               `json:"has_ttm"`
	Ratios          contracts.RatioTable               `json:"ratios"`
	Growth          contracts.GrowthTable              `json:"growth"`
	Valuation       contracts.ValuationEstimate        `json:"valuation"`
	CompletedStages []contracts.Stage                  `json:"completed_stages"`
	Warnings        []string                           `json:"warnings,omitempty"`
}

// Analyze runs the pure pipeline. Only a missing or too-short annual history is an error;
// missing quarterly data drops the TTM period and is reported as a warning.
func (o *Orchestrator) Analyze(in AnalysisInput) (*Analysis, error) {
	out := &Analysis{}

	// S0: 연간 테이블
	table, err := o.resolver.AnnualTable(in.Annual)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", contracts.StageData.ShortName(), err)
	}
	out.Quality = s0_data.Assess(table)
	out.CompletedStages = append(out.CompletedStages, contracts.StageData)
	if len(out.Quality.Missing) > 0 {
		out.Warnings = append(out.Warnings, fmt.Sprintf("no values for: %s", joinTags(out.Quality.Missing)))
	}

	// S2: TTM (분할 보정 전에 붙임)
	table, err = o.aggregator.Apply(table, o.resolver.Quarters(in.Quarterly))
	switch {
	case err == nil:
		out.HasTTM = true
		out.CompletedStages = append(out.CompletedStages, contracts.StageTTM)
	case errors.Is(err, contracts.ErrInsufficientData):
		out.Warnings = append(out.Warnings, "could not find enough quarterly reports, no TTM data")
	default:
		return nil, fmt.Errorf("%s failed: %w", contracts.StageTTM.ShortName(), err)
	}
	out.Table = table

	// S1: 분할 보정
	out.Shares = o.estimator.Adjust(table.ShareCounts(contracts.TagShares))
	out.DilutedShares = o.estimator.Adjust(table.ShareCounts(contracts.TagDilutedShares))
	out.CompletedStages = append(out.CompletedStages, contracts.StageShares)

	// S3: 가격 정렬
	out.Prices = o.aligner.Align(table, in.Prices)
	if latest, ok := in.Prices.Latest(); ok {
		out.LatestPrice = contracts.Num(latest.Close)
	}
	out.CompletedStages = append(out.CompletedStages, contracts.StagePrices)

	// S4: 주당 지표
	out.Ratios = o.ratios.Compute(s4_ratios.Input{
		Table:         table,
		Shares:        out.Shares,
		DilutedShares: out.DilutedShares,
		Prices:        out.Prices,
	})
	out.CompletedStages = append(out.CompletedStages, contracts.StageRatios)

	// S5: 성장률
	out.Growth = o.growth.Compute(out.Ratios)
	out.CompletedStages = append(out.CompletedStages, contracts.StageGrowth)

	// S6: 밸류에이션
	out.Valuation = o.valuation.Estimate(s6_valuation.Input{
		Table:       table,
		Shares:      out.Shares,
		Ratios:      out.Ratios,
		Growth:      out.Growth,
		LatestPrice: out.LatestPrice,
		Assumptions: in.Assumptions,
	})
	out.CompletedStages = append(out.CompletedStages, contracts.StageValuation)
	if out.Valuation.GrowthAtNormalizedPE.OutOfRange {
		out.Warnings = append(out.Warnings, "operator assumption outside sane bounds")
	}

	return out, nil
}

func joinTags(tags []contracts.Tag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
