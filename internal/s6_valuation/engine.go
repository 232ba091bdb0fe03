// Package s6_valuation turns ratios and growth rates into fair-value estimates.
package s6_valuation

import (
	"math"

	"github.com/guregu/null/v5"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/valuationconfig"
	"github.com/wonny/fairvalue/pkg/logger"
)

// Input is everything the valuation stage reads
type Input struct {
	Table       contracts.FundamentalsTable
	Shares      contracts.AdjustedShareCountSeries // split-adjusted NumberOfShares
	Ratios      contracts.RatioTable
	Growth      contracts.GrowthTable
	LatestPrice null.Float
	Assumptions contracts.Assumptions
}

// Engine is the valuation stage (S6)
// ⭐ SSOT: 두 가지 밸류에이션 (Growth at Normalized PE, Owner Earnings)
type Engine struct {
	cfg    valuationconfig.Valuation
	logger *logger.Logger
}

// New creates a valuation engine
func New(cfg *valuationconfig.Config, log *logger.Logger) *Engine {
	return &Engine{cfg: cfg.Valuation, logger: log}
}

// Estimate runs both estimators
func (e *Engine) Estimate(in Input) contracts.ValuationEstimate {
	defaults := e.Defaults(in.Ratios, in.Growth)
	eps, epsPeriod, epsFallbacks := TrailingEPS(in.Ratios)

	rng := e.GrowthAtNormalizedPE(eps, in.Assumptions, defaults)
	rng.EPSPeriod = epsPeriod
	rng.Fallbacks = append(epsFallbacks, rng.Fallbacks...)

	oe := e.OwnerEarnings(in.Table, in.Shares, in.LatestPrice)

	e.logger.WithFields(map[string]interface{}{
		"eps_period":      epsPeriod,
		"growth":          rng.GrowthPercent,
		"normalized_pe":   rng.NormalizedPE,
		"low":             rng.Low,
		"high":            rng.High,
		"owner_earnings":  oe.Value.Float64,
		"oe_computable":   oe.Computable,
		"out_of_range":    rng.OutOfRange,
		"fallbacks_count": len(rng.Fallbacks) + len(defaults.Fallbacks),
	}).Debug("Valuation estimated")

	return contracts.ValuationEstimate{
		GrowthAtNormalizedPE: rng,
		OwnerEarnings:        oe,
		Defaults:             defaults,
	}
}

// TrailingEPS returns the TTM EPS, or the latest annual EPS when the TTM one is missing
func TrailingEPS(ratios contracts.RatioTable) (null.Float, string, []contracts.Fallback) {
	if row, ok := ratios.Row(contracts.TTMKey); ok {
		if v := row.Value(contracts.RatioEPS); v.Valid {
			return v, row.PeriodKey, nil
		}
	}
	if row, ok := ratios.LatestAnnual(); ok {
		if v := row.Value(contracts.RatioEPS); v.Valid {
			return v, row.PeriodKey, []contracts.Fallback{contracts.FallbackAnnualEPSForTTM}
		}
	}
	return contracts.Missing, "", nil
}

// GrowthAtNormalizedPE projects EPS forward over the horizon at the growth rate,
// prices it at the normalized P/E and discounts it back at both margin-of-safety rates.
// Operator overrides are used verbatim; out-of-bounds values only set OutOfRange.
func (e *Engine) GrowthAtNormalizedPE(eps null.Float, a contracts.Assumptions, d contracts.Defaults) contracts.RangeEstimate {
	est := contracts.RangeEstimate{
		GrowthPercent: d.GrowthPercent,
		GrowthSource:  contracts.SourceDefault,
		NormalizedPE:  d.NormalizedPE,
		PESource:      contracts.SourceDefault,
	}

	if g := contracts.Clean(a.GrowthPercent); g.Valid {
		est.GrowthPercent, est.GrowthSource = g.Float64, contracts.SourceOperator
		if g.Float64 < e.cfg.GrowthClampMin || g.Float64 > e.cfg.GrowthClampMax {
			est.OutOfRange = true
		}
	} else {
		est.Fallbacks = append(est.Fallbacks, contracts.FallbackDefaultGrowthRate)
	}
	if pe := contracts.Clean(a.NormalizedPE); pe.Valid {
		est.NormalizedPE, est.PESource = pe.Float64, contracts.SourceOperator
		if pe.Float64 <= 0 || pe.Float64 > e.cfg.PESaneMax {
			est.OutOfRange = true
		}
	} else {
		est.Fallbacks = append(est.Fallbacks, contracts.FallbackDefaultNormalizedPE)
	}

	if !eps.Valid {
		est.Reason = contracts.ReasonMissingInput
		return est
	}
	est.EPS = eps.Float64
	est.Computable = true

	years := float64(e.cfg.ProjectionYears)
	est.FutureEPS = est.EPS * math.Pow(1+est.GrowthPercent/100, years)
	est.FuturePrice = est.FutureEPS * est.NormalizedPE
	low := est.FuturePrice / math.Pow(1+e.cfg.LowDiscountRate, years)
	high := est.FuturePrice / math.Pow(1+e.cfg.HighDiscountRate, years)

	if !finite(est.FutureEPS, est.FuturePrice, low, high) {
		est.FutureEPS, est.FuturePrice = 0, 0
		est.Degenerate = true
		est.Reason = contracts.ReasonDegenerate
		return est
	}
	if low > high {
		low, high = high, low
	}
	est.Low, est.High = low, high

	if est.NormalizedPE <= 0 || est.GrowthPercent <= -100 {
		est.Degenerate = true
		est.Reason = contracts.ReasonDegenerate
	}
	return est
}

// OwnerEarnings is (NetIncome + D&A − CapEx) × multiple over market cap,
// for the latest full fiscal year priced at the latest close.
// The latest close is in post-split terms, so market cap uses that year's split-adjusted
// share count; the filed count is used only when no adjusted value exists for the year.
func (e *Engine) OwnerEarnings(table contracts.FundamentalsTable, shares contracts.AdjustedShareCountSeries, price null.Float) contracts.PointEstimate {
	period, ok := table.LatestAnnual()
	if !ok {
		return contracts.PointEstimate{Reason: contracts.ReasonMissingInput}
	}

	est := contracts.PointEstimate{
		PeriodKey: period.Key,
		Price:     contracts.Clean(price),
		Shares:    shares.Get(period.Key),
	}
	if !est.Shares.Valid {
		est.Shares = period.Value(contracts.TagShares)
	}
	est.OwnerEarnings = contracts.Sub(
		contracts.Add(period.Value(contracts.TagNetIncome), period.Value(contracts.TagDepreciation)),
		period.Value(contracts.TagCapEx),
	)
	if est.OwnerEarnings.Valid {
		est.ProjectedValue = contracts.Num(est.OwnerEarnings.Float64 * e.cfg.OwnerEarningsMultiple)
	}
	if est.Price.Valid && est.Shares.Valid {
		est.MarketCap = contracts.Num(est.Price.Float64 * est.Shares.Float64)
	}

	switch {
	case !est.ProjectedValue.Valid || !est.MarketCap.Valid:
		est.Reason = contracts.ReasonMissingInput
	case est.MarketCap.Float64 <= 0:
		est.Reason = contracts.ReasonNonPositiveMarketCap
	default:
		est.Value, est.Reason = contracts.Div(est.ProjectedValue, est.MarketCap)
		est.Computable = est.Value.Valid
	}
	return est
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
