// Package s5_growth computes multi-window compound annual growth rates of ratio series.
package s5_growth

import (
	"fmt"
	"math"

	"github.com/guregu/null/v5"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/valuationconfig"
	"github.com/wonny/fairvalue/pkg/logger"
)

const daysPerYear = 365.25

// Engine is the growth stage (S5)
// ⭐ SSOT: CAGR 계산은 여기서만
type Engine struct {
	cfg    valuationconfig.Growth
	logger *logger.Logger
}

// New creates a growth engine over the configured windows
func New(cfg *valuationconfig.Config, log *logger.Logger) *Engine {
	return &Engine{cfg: cfg.Growth, logger: log}
}

// Compute runs CAGR for each per-share growth series
func (e *Engine) Compute(table contracts.RatioTable) contracts.GrowthTable {
	var out contracts.GrowthTable
	for _, ratio := range contracts.GrowthRatios() {
		out.Results = append(out.Results, e.CAGR(table.Series(ratio)))
	}
	return out
}

// CAGR computes every configured window for one series.
// Window endpoints are annual periods only; the TTM point is used only by the trailing window.
func (e *Engine) CAGR(series contracts.RatioSeries) contracts.CAGRResult {
	result := contracts.CAGRResult{Ratio: series.Ratio}

	var valid []contracts.RatioPoint
	var ttm *contracts.RatioPoint
	for i, p := range series.Points {
		switch {
		case p.Kind == contracts.PeriodTTM:
			ttm = &series.Points[i]
		case p.Kind == contracts.PeriodAnnual && p.Value.Valid:
			valid = append(valid, p)
		}
	}

	for _, n := range e.cfg.Windows {
		result.Windows = append(result.Windows, window(fmt.Sprintf("%dy", n), n, valid))
	}
	if e.cfg.IncludeInception {
		result.Windows = append(result.Windows, window(contracts.WindowInception, 0, valid))
	}
	if e.cfg.IncludeTrailing {
		result.Windows = append(result.Windows, trailing(valid, ttm))
	}

	notComputable := 0
	for _, w := range result.Windows {
		if !w.Percent.Valid {
			notComputable++
		}
	}
	e.logger.WithFields(map[string]interface{}{
		"ratio":          string(series.Ratio),
		"windows":        len(result.Windows),
		"not_computable": notComputable,
	}).Debug("CAGR computed")

	return result
}

// window pairs the latest valid annual value with the earliest valid value no older
// than years before it (0 = since inception). A shorter span is labelled as such.
func window(label string, years int, valid []contracts.RatioPoint) contracts.CAGRWindow {
	w := contracts.CAGRWindow{Label: label, RequestedYears: years, Percent: contracts.Missing}
	if len(valid) == 0 {
		w.Reason = contracts.ReasonMissingInput
		return w
	}

	end := valid[len(valid)-1]
	start := end
	for _, p := range valid {
		if years == 0 || p.FiscalYear >= end.FiscalYear-years {
			start = p
			break
		}
	}

	w.StartKey, w.EndKey = start.PeriodKey, end.PeriodKey
	span := end.FiscalYear - start.FiscalYear
	if span <= 0 {
		w.Reason = contracts.ReasonInsufficientSpan
		return w
	}
	w.SpanYears = float64(span)
	w.Exact = years == 0 || span == years
	w.Percent, w.Reason = Rate(start.Value.Float64, end.Value.Float64, w.SpanYears)
	return w
}

// trailing measures latest annual → TTM over the fractional elapsed years
func trailing(valid []contracts.RatioPoint, ttm *contracts.RatioPoint) contracts.CAGRWindow {
	w := contracts.CAGRWindow{Label: contracts.WindowTrailing, Percent: contracts.Missing}
	if ttm == nil || !ttm.Value.Valid || len(valid) == 0 {
		w.Reason = contracts.ReasonMissingInput
		return w
	}

	start := valid[len(valid)-1]
	w.StartKey, w.EndKey = start.PeriodKey, ttm.PeriodKey
	span := ttm.EndDate.Sub(start.EndDate).Hours() / 24 / daysPerYear
	if span <= 0 {
		w.Reason = contracts.ReasonInsufficientSpan
		return w
	}
	w.SpanYears = span
	w.Exact = true
	w.Percent, w.Reason = Rate(start.Value.Float64, ttm.Value.Float64, span)
	return w
}

// Rate is the CAGR in whole percent: ((end/start)^(1/years) − 1) × 100, rounded.
// Zero base, sign change and two negative endpoints are not computable.
func Rate(start, end, years float64) (null.Float, contracts.Reason) {
	switch {
	case years <= 0:
		return contracts.Missing, contracts.ReasonInsufficientSpan
	case start == 0:
		return contracts.Missing, contracts.ReasonZeroBase
	case (start < 0) != (end < 0) && end != 0:
		return contracts.Missing, contracts.ReasonSignChange
	case start < 0 && end < 0:
		return contracts.Missing, contracts.ReasonNegativeBase
	case start < 0 && end == 0:
		return contracts.Missing, contracts.ReasonSignChange
	}

	g := math.Pow(end/start, 1/years) - 1
	return contracts.Num(math.Round(g * 100)), contracts.ReasonNone
}
