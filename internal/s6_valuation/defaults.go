package s6_valuation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/fairvalue/internal/contracts"
)

// DefaultGrowth is the mean of every computable CAGR percent across the per-share
// growth series, clamped to [min, max]. No computable CAGR yields the lower bound.
func (e *Engine) DefaultGrowth(growth contracts.GrowthTable) (float64, []contracts.Fallback) {
	cagrs := growth.AllComputable(contracts.GrowthRatios()...)
	if len(cagrs) == 0 {
		return e.cfg.GrowthClampMin, []contracts.Fallback{contracts.FallbackGrowthFloorNoCAGR}
	}
	mean := stat.Mean(cagrs, nil)
	return math.Min(math.Max(mean, e.cfg.GrowthClampMin), e.cfg.GrowthClampMax), nil
}

// DefaultPE is max(median of historical P/E, floor) × multiplier.
// Negative P/E values stay in the sample. No history yields floor × multiplier.
func (e *Engine) DefaultPE(ratios contracts.RatioTable) (float64, []contracts.Fallback) {
	var pes []float64
	for _, row := range ratios.Rows {
		if v := row.Value(contracts.RatioPE); v.Valid {
			pes = append(pes, v.Float64)
		}
	}
	if len(pes) == 0 {
		return e.cfg.PEFloor * e.cfg.PEMultiplier, []contracts.Fallback{contracts.FallbackPEFloorNoHistory}
	}
	return math.Max(median(pes), e.cfg.PEFloor) * e.cfg.PEMultiplier, nil
}

// Defaults proposes both assumptions
func (e *Engine) Defaults(ratios contracts.RatioTable, growth contracts.GrowthTable) contracts.Defaults {
	g, gf := e.DefaultGrowth(growth)
	pe, pf := e.DefaultPE(ratios)
	return contracts.Defaults{
		GrowthPercent: g,
		NormalizedPE:  pe,
		Fallbacks:     append(gf, pf...),
	}
}

// median averages the two middle values for an even count
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return stat.Mean(sorted[mid-1:mid+1], nil)
}
