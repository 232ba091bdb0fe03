package contracts

import "github.com/guregu/null/v5"

// Window labels
const (
	WindowInception = "inception"
	WindowTrailing  = "ttm"
)

// CAGRWindow is the growth rate over one trailing window.
// Percent is missing when not computable; Reason says why.
type CAGRWindow struct {
	Label          string     `json:"label"`
	RequestedYears int        `json:"requested_years"` // 0 = since inception
	SpanYears      float64    `json:"span_years"`
	StartKey       string     `json:"start_key,omitempty"`
	EndKey         string     `json:"end_key,omitempty"`
	Exact          bool       `json:"exact"` // span matched the requested length
	Percent        null.Float `json:"percent"`
	Reason         Reason     `json:"reason,omitempty"`
}

// CAGRResult is the multi-window growth of one ratio series
type CAGRResult struct {
	Ratio   Ratio        `json:"ratio"`
	Windows []CAGRWindow `json:"windows"`
}

// Window returns the window with the given label
func (r CAGRResult) Window(label string) (CAGRWindow, bool) {
	for _, w := range r.Windows {
		if w.Label == label {
			return w, true
		}
	}
	return CAGRWindow{}, false
}

// Computable returns the percents of every computable window
func (r CAGRResult) Computable() []float64 {
	out := make([]float64, 0, len(r.Windows))
	for _, w := range r.Windows {
		if w.Percent.Valid {
			out = append(out, w.Percent.Float64)
		}
	}
	return out
}

// GrowthTable holds one CAGRResult per growth ratio
// ⭐ SSOT: S5 → S6 성장률
type GrowthTable struct {
	Results []CAGRResult `json:"results"`
}

// Get returns the result for a ratio
func (g GrowthTable) Get(ratio Ratio) (CAGRResult, bool) {
	for _, r := range g.Results {
		if r.Ratio == ratio {
			return r, true
		}
	}
	return CAGRResult{}, false
}

// AllComputable returns every computable percent across the given ratios
func (g GrowthTable) AllComputable(ratios ...Ratio) []float64 {
	var out []float64
	for _, ratio := range ratios {
		if r, ok := g.Get(ratio); ok {
			out = append(out, r.Computable()...)
		}
	}
	return out
}
