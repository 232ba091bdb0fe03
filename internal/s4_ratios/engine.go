// Package s4_ratios derives the per-share and valuation ratios.
package s4_ratios

import (
	"github.com/guregu/null/v5"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/pkg/logger"
)

// Input is everything the ratio stage reads. Nothing in it is modified.
type Input struct {
	Table         contracts.FundamentalsTable
	Shares        contracts.AdjustedShareCountSeries // basic, split-adjusted
	DilutedShares contracts.AdjustedShareCountSeries // diluted, split-adjusted
	Prices        contracts.AlignedPriceColumn
}

// Engine is the ratio stage (S4)
// ⭐ SSOT: 주당 지표 계산은 여기서만
type Engine struct {
	logger *logger.Logger
}

// New creates a ratio engine
func New(log *logger.Logger) *Engine {
	return &Engine{logger: log}
}

// Compute derives one RatioRow per fundamentals period.
// Any missing input or zero denominator yields a missing ratio with a reason.
func (e *Engine) Compute(in Input) contracts.RatioTable {
	out := contracts.RatioTable{Ticker: in.Table.Ticker}
	fallbacks := 0

	for _, p := range in.Table.Periods() {
		row := contracts.RatioRow{
			PeriodKey:  p.Key,
			Kind:       p.Kind,
			FiscalYear: p.FiscalYear,
			EndDate:    p.EndDate,
			Values:     make(map[contracts.Ratio]null.Float, 5),
			Reasons:    make(map[contracts.Ratio]contracts.Reason),
		}

		basic := in.Shares.Get(p.Key)
		diluted := in.DilutedShares.Get(p.Key)
		if !diluted.Valid && basic.Valid {
			diluted = basic
			row.Fallbacks = append(row.Fallbacks, contracts.FallbackBasicSharesForDiluted)
			fallbacks++
		}

		set := func(r contracts.Ratio, v null.Float, reason contracts.Reason) {
			row.Values[r] = v
			if !v.Valid {
				row.Reasons[r] = reason
			}
		}

		set(ratioOf(contracts.RatioRevenuePerShare, p.Value(contracts.TagRevenues), diluted))
		set(ratioOf(contracts.RatioEPS, p.Value(contracts.TagNetIncome), diluted))
		set(ratioOf(contracts.RatioBookValuePerShare, p.Value(contracts.TagEquity), basic))

		fcf := contracts.Sub(p.Value(contracts.TagOperatingCashFlow), p.Value(contracts.TagCapEx))
		set(ratioOf(contracts.RatioFCFPerShare, fcf, diluted))

		set(ratioOf(contracts.RatioPE, in.Prices.Get(p.Key), row.Values[contracts.RatioEPS]))

		out.Rows = append(out.Rows, row)
	}

	e.logger.WithFields(map[string]interface{}{
		"periods":   len(out.Rows),
		"fallbacks": fallbacks,
	}).Debug("Ratios computed")

	return out
}

// ratioOf divides and labels the result so each ratio reads as one line
func ratioOf(ratio contracts.Ratio, num, den null.Float) (contracts.Ratio, null.Float, contracts.Reason) {
	v, reason := contracts.Div(num, den)
	return ratio, v, reason
}
