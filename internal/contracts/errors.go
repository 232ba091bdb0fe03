package contracts

import "errors"

// Sentinel errors. Callers test with errors.Is.
var (
	// ErrInsufficientData: fewer than two periods/quarters. Non-fatal for TTM/CAGR consumers.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNoData: a collaborator could not supply anything at all
	ErrNoData = errors.New("no data")

	// ErrTickerNotFound: the filings source does not know the ticker
	ErrTickerNotFound = errors.New("ticker not found")

	// ErrInvalidTable: structural violation (duplicate period key, two TTM periods)
	ErrInvalidTable = errors.New("invalid fundamentals table")
)

// Reason explains why a value is missing (NotComputable)
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonMissingInput         Reason = "missing_input"
	ReasonZeroBase             Reason = "zero_base"
	ReasonSignChange           Reason = "sign_change"
	ReasonNegativeBase         Reason = "negative_base"
	ReasonInsufficientSpan     Reason = "insufficient_span"
	ReasonZeroDenominator      Reason = "zero_denominator"
	ReasonNonPositiveMarketCap Reason = "non_positive_market_cap"
	ReasonDegenerate           Reason = "degenerate_assumptions"
)

// Fallback names an explicit substitution branch taken by a stage
type Fallback string

const (
	FallbackBasicSharesForDiluted Fallback = "basic_shares_for_diluted"
	FallbackAnnualEPSForTTM       Fallback = "annual_eps_for_ttm"
	FallbackDefaultGrowthRate     Fallback = "default_growth_rate"
	FallbackDefaultNormalizedPE   Fallback = "default_normalized_pe"
	FallbackGrowthFloorNoCAGR     Fallback = "growth_floor_no_cagr"
	FallbackPEFloorNoHistory      Fallback = "pe_floor_no_history"
)

// HasFallback reports whether f is in the list
func HasFallback(list []Fallback, f Fallback) bool {
	for _, x := range list {
		if x == f {
			return true
		}
	}
	return false
}
