package valuationconfig

import (
	"fmt"
	"sort"

	"github.com/wonny/fairvalue/internal/contracts"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Tags ===
	seen := map[string]bool{}
	for i, a := range cfg.Tags.Aliases {
		field := fmt.Sprintf("tags.aliases[%d].canonical", i)
		if !contracts.IsValidTag(a.Canonical) {
			return ValidationError{field, fmt.Sprintf("unknown tag %q", a.Canonical)}
		}
		if seen[a.Canonical] {
			return ValidationError{field, fmt.Sprintf("duplicate tag %q", a.Canonical)}
		}
		seen[a.Canonical] = true
		for j, s := range a.Sources {
			if s == "" {
				return ValidationError{fmt.Sprintf("tags.aliases[%d].sources[%d]", i, j), "must not be empty"}
			}
		}
	}
	for i, b := range cfg.Tags.Balance {
		if !contracts.IsValidTag(b) {
			return ValidationError{fmt.Sprintf("tags.balance[%d]", i), fmt.Sprintf("unknown tag %q", b)}
		}
	}

	// === Splits ===
	if len(cfg.Splits.Factors) == 0 {
		return ValidationError{"splits.factors", "required"}
	}
	if cfg.Splits.Tolerance <= 0 || cfg.Splits.Tolerance >= 0.25 {
		return ValidationError{"splits.tolerance", "must be in (0, 0.25)"}
	}
	minFactor := cfg.Splits.Factors[0]
	for i, f := range cfg.Splits.Factors {
		if f <= 1 {
			return ValidationError{fmt.Sprintf("splits.factors[%d]", i), "must be > 1"}
		}
		if f < minFactor {
			minFactor = f
		}
	}
	if cfg.Splits.OrganicBand <= 1 {
		return ValidationError{"splits.organic_band", "must be > 1"}
	}
	// 유기적 성장 밴드가 가장 작은 분할 비율의 허용 구간과 겹치면 안 됨
	if cfg.Splits.OrganicBand >= minFactor*(1-cfg.Splits.Tolerance) {
		return ValidationError{"splits.organic_band", fmt.Sprintf("must be below smallest factor band (%.3f)", minFactor*(1-cfg.Splits.Tolerance))}
	}

	// === Growth ===
	if len(cfg.Growth.Windows) == 0 && !cfg.Growth.IncludeInception {
		return ValidationError{"growth.windows", "at least one window or include_inception required"}
	}
	if !sort.IntsAreSorted(cfg.Growth.Windows) {
		return ValidationError{"growth.windows", "must be ascending"}
	}
	for i, w := range cfg.Growth.Windows {
		if w <= 0 {
			return ValidationError{fmt.Sprintf("growth.windows[%d]", i), "must be > 0"}
		}
		if i > 0 && cfg.Growth.Windows[i-1] == w {
			return ValidationError{fmt.Sprintf("growth.windows[%d]", i), "duplicate window"}
		}
	}

	// === Valuation ===
	v := cfg.Valuation
	if v.GrowthClampMin > v.GrowthClampMax {
		return ValidationError{"valuation.growth_clamp_min", "must be <= growth_clamp_max"}
	}
	if v.PEMultiplier <= 0 {
		return ValidationError{"valuation.pe_multiplier", "must be > 0"}
	}
	if v.PEFloor <= 0 {
		return ValidationError{"valuation.pe_floor", "must be > 0"}
	}
	if v.PESaneMax <= v.PEFloor {
		return ValidationError{"valuation.pe_sane_max", "must be > pe_floor"}
	}
	if v.ProjectionYears <= 0 || v.ProjectionYears > 50 {
		return ValidationError{"valuation.projection_years", "must be in [1, 50]"}
	}
	if v.HighDiscountRate < 0 || v.LowDiscountRate >= 1 {
		return ValidationError{"valuation.discount_rates", "must be in [0, 1)"}
	}
	if v.LowDiscountRate < v.HighDiscountRate {
		return ValidationError{"valuation.low_discount_rate", "must be >= high_discount_rate"}
	}
	if v.OwnerEarningsMultiple <= 0 {
		return ValidationError{"valuation.owner_earnings_multiple", "must be > 0"}
	}

	return nil
}
