package s0_data

import (
	"fmt"
	"sort"

	"github.com/guregu/null/v5"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/valuationconfig"
	"github.com/wonny/fairvalue/pkg/logger"
)

// MinAnnualPeriods is the fewest fiscal years the pipeline can work with
const MinAnnualPeriods = 2

// Resolver maps source tag names onto the canonical vocabulary, once, at the S0 boundary
// ⭐ SSOT: 별칭 해석은 여기서만 (이후 단계는 canonical 태그만 사용)
type Resolver struct {
	cfg    *valuationconfig.Config
	logger *logger.Logger
}

// NewResolver creates a resolver over the configured alias table
func NewResolver(cfg *valuationconfig.Config, log *logger.Logger) *Resolver {
	return &Resolver{cfg: cfg, logger: log}
}

// ResolvePeriod picks, per canonical tag, the first source name carrying a finite value
func (r *Resolver) ResolvePeriod(raw contracts.RawPeriod) contracts.Period {
	values := make(map[contracts.Tag]null.Float)
	for _, tag := range contracts.AllTags() {
		for _, src := range r.cfg.SourcesFor(string(tag)) {
			v, ok := raw.Facts[src]
			if !ok {
				continue
			}
			if n := contracts.Num(v); n.Valid {
				values[tag] = n
				break
			}
		}
	}

	key := raw.Key
	switch raw.Kind {
	case contracts.PeriodAnnual:
		key = contracts.AnnualKey(raw.FiscalYear)
	case contracts.PeriodQuarter:
		key = contracts.QuarterKey(raw.EndDate)
	}
	return contracts.NewPeriod(key, raw.Kind, raw.FiscalYear, raw.EndDate, values)
}

// AnnualTable builds the fundamentals table from annual filings.
// Fewer than MinAnnualPeriods years is ErrInsufficientData.
func (r *Resolver) AnnualTable(raw *contracts.RawFilings) (contracts.FundamentalsTable, error) {
	if raw == nil {
		return contracts.FundamentalsTable{}, contracts.ErrNoData
	}

	periods := make([]contracts.Period, 0, len(raw.Periods))
	for _, rp := range raw.Periods {
		if rp.Kind != contracts.PeriodAnnual {
			continue
		}
		p := r.ResolvePeriod(rp)
		if len(p.Tags()) == 0 {
			continue
		}
		periods = append(periods, p)
	}

	if len(periods) < MinAnnualPeriods {
		return contracts.FundamentalsTable{}, fmt.Errorf("%w: %d annual periods for %s",
			contracts.ErrInsufficientData, len(periods), raw.Ticker)
	}

	table, err := contracts.NewFundamentalsTable(raw.Ticker, periods)
	if err != nil {
		return contracts.FundamentalsTable{}, err
	}

	r.logger.WithFields(map[string]interface{}{
		"ticker":  raw.Ticker,
		"periods": table.Len(),
		"source":  raw.Source,
	}).Debug("Annual fundamentals resolved")

	return table, nil
}

// Quarters resolves quarterly filings, oldest first
func (r *Resolver) Quarters(raw *contracts.RawFilings) []contracts.Period {
	if raw == nil {
		return nil
	}
	out := make([]contracts.Period, 0, len(raw.Periods))
	for _, rp := range raw.Periods {
		if rp.Kind != contracts.PeriodQuarter {
			continue
		}
		out = append(out, r.ResolvePeriod(rp))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out
}
