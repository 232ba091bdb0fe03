// Package s1_shares detects stock splits in share-count series and restates
// historical counts in present-day share terms.
package s1_shares

import (
	"math"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/valuationconfig"
	"github.com/wonny/fairvalue/pkg/logger"
)

// Estimator is the split adjustment stage (S1)
// ⭐ SSOT: 주식 분할 감지는 여기서만
type Estimator struct {
	cfg    valuationconfig.Splits
	logger *logger.Logger
}

// New creates an estimator using the configured factors and tolerances
func New(cfg *valuationconfig.Config, log *logger.Logger) *Estimator {
	return &Estimator{cfg: cfg.Splits, logger: log}
}

// Adjust walks the series oldest first, compares each valid count with the previous
// valid one, and multiplies every count before a detected split by that split's factor.
// Missing entries are skipped, never read as a discontinuity.
func (e *Estimator) Adjust(series contracts.ShareCountSeries) contracts.AdjustedShareCountSeries {
	n := len(series.Points)
	out := contracts.AdjustedShareCountSeries{
		Tag:    series.Tag,
		Points: make([]contracts.AdjustedSharePoint, n),
	}

	// factorAt[i]: split factor taking effect at index i (1 = none)
	factorAt := make([]float64, n)
	for i := range factorAt {
		factorAt[i] = 1
	}

	prev := -1
	for i, p := range series.Points {
		if !p.Count.Valid {
			continue
		}
		if prev >= 0 {
			if f, ok := e.detect(series, prev, i); ok {
				factorAt[i] = f
				out.Splits = append(out.Splits, contracts.SplitEvent{
					FromKey: series.Points[prev].PeriodKey,
					ToKey:   p.PeriodKey,
					Ratio:   p.Count.Float64 / series.Points[prev].Count.Float64,
					Factor:  f,
				})
			}
		}
		prev = i
	}

	// 뒤에서부터 누적: 이후에 발생한 분할 비율의 곱
	cumulative := 1.0
	for i := n - 1; i >= 0; i-- {
		p := series.Points[i]
		out.Points[i] = contracts.AdjustedSharePoint{
			PeriodKey: p.PeriodKey,
			Raw:       p.Count,
			Factor:    cumulative,
			Adjusted:  contracts.Missing,
		}
		if p.Count.Valid {
			out.Points[i].Adjusted = contracts.Num(p.Count.Float64 * cumulative)
		}
		cumulative *= factorAt[i]
	}

	if len(out.Splits) > 0 {
		e.logger.WithFields(map[string]interface{}{
			"tag":    string(series.Tag),
			"splits": len(out.Splits),
			"factor": cumulative,
		}).Debug("Stock splits detected")
	}

	return out
}

// detect classifies the jump between two valid observations
func (e *Estimator) detect(series contracts.ShareCountSeries, from, to int) (float64, bool) {
	a := series.Points[from].Count.Float64
	b := series.Points[to].Count.Float64
	if a <= 0 || b <= 0 {
		return 1, false
	}

	ratio := b / a
	band := e.cfg.OrganicBand
	if ratio >= 1/band && ratio <= band {
		return 1, false
	}

	if f, ok := MatchFactor(ratio, e.cfg.Factors, e.cfg.Tolerance); ok {
		return f, true
	}

	e.logger.WithFields(map[string]interface{}{
		"tag":   string(series.Tag),
		"from":  series.Points[from].PeriodKey,
		"to":    series.Points[to].PeriodKey,
		"ratio": ratio,
	}).Warn("Share count jump not explained by a split, left unadjusted")
	return 1, false
}

// MatchFactor returns the candidate factor (or its reciprocal, for reverse splits)
// nearest to ratio within relative tolerance
func MatchFactor(ratio float64, factors []float64, tolerance float64) (float64, bool) {
	best, bestDist := 0.0, math.Inf(1)
	for _, f := range factors {
		for _, cand := range []float64{f, 1 / f} {
			dist := math.Abs(ratio-cand) / cand
			if dist <= tolerance && dist < bestDist {
				best, bestDist = cand, dist
			}
		}
	}
	return best, best != 0
}
