package contracts

import (
	"encoding/json"
	"time"

	"github.com/guregu/null/v5"
)

// Ratio names a derived per-share or valuation ratio
type Ratio string

const (
	RatioRevenuePerShare   Ratio = "RevenuePerShare"
	RatioEPS               Ratio = "EarningsPerShare"
	RatioBookValuePerShare Ratio = "BookValuePerShare"
	RatioFCFPerShare       Ratio = "FreeCashFlowPerShare"
	RatioPE                Ratio = "PriceToEarnings"
)

// AllRatios returns the five ratios in report order
func AllRatios() []Ratio {
	return []Ratio{RatioRevenuePerShare, RatioEPS, RatioBookValuePerShare, RatioFCFPerShare, RatioPE}
}

// GrowthRatios returns the four per-share series whose CAGRs feed the default growth rate
func GrowthRatios() []Ratio {
	return []Ratio{RatioRevenuePerShare, RatioEPS, RatioBookValuePerShare, RatioFCFPerShare}
}

// Label returns the report label
func (r Ratio) Label() string {
	switch r {
	case RatioRevenuePerShare:
		return "Revenue Per Share (Diluted)"
	case RatioEPS:
		return "Earnings Per Share (Diluted)"
	case RatioBookValuePerShare:
		return "Book Value Per Share"
	case RatioFCFPerShare:
		return "Free Cash Flow Per Share (Diluted)"
	case RatioPE:
		return "P/E"
	default:
		return string(r)
	}
}

// RatioRow is the derived ratios for one period
type RatioRow struct {
	PeriodKey  string
	Kind       PeriodKind
	FiscalYear int
	EndDate    time.Time
	Values     map[Ratio]null.Float
	Reasons    map[Ratio]Reason
	Fallbacks  []Fallback
}

// Value returns the ratio or missing
func (r RatioRow) Value(ratio Ratio) null.Float {
	if v, ok := r.Values[ratio]; ok {
		return v
	}
	return Missing
}

// MarshalJSON emits every ratio, missing ones as null
func (r RatioRow) MarshalJSON() ([]byte, error) {
	values := make(map[string]null.Float, len(AllRatios()))
	for _, ratio := range AllRatios() {
		values[string(ratio)] = r.Value(ratio)
	}
	reasons := make(map[string]Reason, len(r.Reasons))
	for ratio, reason := range r.Reasons {
		reasons[string(ratio)] = reason
	}
	return json.Marshal(struct {
		PeriodKey  string                `json:"period_key"`
		Kind       PeriodKind            `json:"kind"`
		FiscalYear int                   `json:"fiscal_year"`
		Values     map[string]null.Float `json:"values"`
		Reasons    map[string]Reason     `json:"reasons,omitempty"`
		Fallbacks  []Fallback            `json:"fallbacks,omitempty"`
	}{r.PeriodKey, r.Kind, r.FiscalYear, values, reasons, r.Fallbacks})
}

// RatioTable has the same period index as the fundamentals table
// ⭐ SSOT: S4 → S5/S6 비율 테이블
type RatioTable struct {
	Ticker string     `json:"ticker"`
	Rows   []RatioRow `json:"rows"`
}

// Row returns the row for a period key
func (t RatioTable) Row(key string) (RatioRow, bool) {
	for _, r := range t.Rows {
		if r.PeriodKey == key {
			return r, true
		}
	}
	return RatioRow{}, false
}

// LatestAnnual returns the most recent annual row
func (t RatioTable) LatestAnnual() (RatioRow, bool) {
	for i := len(t.Rows) - 1; i >= 0; i-- {
		if t.Rows[i].Kind == PeriodAnnual {
			return t.Rows[i], true
		}
	}
	return RatioRow{}, false
}

// RatioPoint is one observation of a ratio series
type RatioPoint struct {
	PeriodKey  string     `json:"period_key"`
	Kind       PeriodKind `json:"kind"`
	FiscalYear int        `json:"fiscal_year"`
	EndDate    time.Time  `json:"end_date"`
	Value      null.Float `json:"value"`
}

// RatioSeries is one ratio column, table order
type RatioSeries struct {
	Ratio  Ratio        `json:"ratio"`
	Points []RatioPoint `json:"points"`
}

// Series extracts one ratio column
func (t RatioTable) Series(ratio Ratio) RatioSeries {
	points := make([]RatioPoint, len(t.Rows))
	for i, r := range t.Rows {
		points[i] = RatioPoint{
			PeriodKey:  r.PeriodKey,
			Kind:       r.Kind,
			FiscalYear: r.FiscalYear,
			EndDate:    r.EndDate,
			Value:      r.Value(ratio),
		}
	}
	return RatioSeries{Ratio: ratio, Points: points}
}
