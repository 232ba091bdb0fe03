package contracts

import "github.com/guregu/null/v5"

// AssumptionSource says where an assumption came from
type AssumptionSource string

const (
	SourceDefault  AssumptionSource = "default"
	SourceOperator AssumptionSource = "operator"
)

// Assumptions are operator overrides; missing means "use the engine default"
type Assumptions struct {
	GrowthPercent null.Float `json:"growth_percent"`
	NormalizedPE  null.Float `json:"normalized_pe"`
}

// Defaults are the engine-proposed assumptions (shown to the operator before overrides)
type Defaults struct {
	GrowthPercent float64    `json:"growth_percent"`
	NormalizedPE  float64    `json:"normalized_pe"`
	Fallbacks     []Fallback `json:"fallbacks,omitempty"`
}

// RangeEstimate is the Growth-at-Normalized-PE fair value range (per share)
type RangeEstimate struct {
	EPS           float64          `json:"eps"`
	EPSPeriod     string           `json:"eps_period"`
	GrowthPercent float64          `json:"growth_percent"`
	GrowthSource  AssumptionSource `json:"growth_source"`
	NormalizedPE  float64          `json:"normalized_pe"`
	PESource      AssumptionSource `json:"pe_source"`
	FutureEPS     float64          `json:"future_eps"`
	FuturePrice   float64          `json:"future_price"`
	Low           float64          `json:"low"`
	High          float64          `json:"high"`
	Computable    bool             `json:"computable"`
	Degenerate    bool             `json:"degenerate"`
	OutOfRange    bool             `json:"out_of_range"` // operator assumption outside sane bounds
	Reason        Reason           `json:"reason,omitempty"`
	Fallbacks     []Fallback       `json:"fallbacks,omitempty"`
}

// PointEstimate is the Owner-Earnings ratio for the latest full fiscal year
type PointEstimate struct {
	PeriodKey      string     `json:"period_key"`
	OwnerEarnings  null.Float `json:"owner_earnings"`
	ProjectedValue null.Float `json:"projected_value"`
	Price          null.Float `json:"price"`
	Shares         null.Float `json:"shares"`
	MarketCap      null.Float `json:"market_cap"`
	Value          null.Float `json:"value"`
	Computable     bool       `json:"computable"`
	Reason         Reason     `json:"reason,omitempty"`
}

// Favorable is the consumer-side reading of the ratio (> 1.0)
func (p PointEstimate) Favorable() bool {
	return p.Computable && p.Value.Valid && p.Value.Float64 > 1.0
}

// ValuationEstimate bundles both estimators' outputs
type ValuationEstimate struct {
	GrowthAtNormalizedPE RangeEstimate `json:"growth_at_normalized_pe"`
	OwnerEarnings        PointEstimate `json:"owner_earnings"`
	Defaults             Defaults      `json:"defaults"`
}
