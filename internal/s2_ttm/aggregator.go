// Package s2_ttm builds the synthetic trailing-twelve-month period from quarterly filings.
package s2_ttm

import (
	"fmt"
	"sort"

	"github.com/guregu/null/v5"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/valuationconfig"
	"github.com/wonny/fairvalue/pkg/logger"
)

// QuartersPerYear is the flow-sum window
const QuartersPerYear = 4

// MinQuarters is the fewest quarters a TTM period can be built from
const MinQuarters = 2

// maxQuarterGapDays bounds the distance between consecutive quarter ends.
// A wider gap means a quarter was never filed and the four-quarter window spans more than a year.
const maxQuarterGapDays = 100

// Aggregator is the TTM stage (S2)
// ⭐ SSOT: TTM 합산 규칙은 여기서만
type Aggregator struct {
	cfg    *valuationconfig.Config
	logger *logger.Logger
}

// New creates an aggregator using the configured balance-tag partition
func New(cfg *valuationconfig.Config, log *logger.Logger) *Aggregator {
	return &Aggregator{cfg: cfg, logger: log}
}

// Aggregate builds the TTM period.
// Flow tags: sum of the last four quarters, missing if any of them is missing
// or the quarters are not consecutive.
// Balance tags: value of the second-most-recent quarter.
func (a *Aggregator) Aggregate(quarters []contracts.Period) (contracts.Period, error) {
	if len(quarters) < MinQuarters {
		return contracts.Period{}, fmt.Errorf("%w: %d quarters, need %d for TTM",
			contracts.ErrInsufficientData, len(quarters), MinQuarters)
	}

	qs := make([]contracts.Period, len(quarters))
	copy(qs, quarters)
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].EndDate.Before(qs[j].EndDate) })
	if len(qs) > QuartersPerYear {
		qs = qs[len(qs)-QuartersPerYear:]
	}

	latest := qs[len(qs)-1]
	snapshot := qs[len(qs)-2]

	gap := widestGap(qs)
	contiguous := gap <= maxQuarterGapDays

	values := make(map[contracts.Tag]null.Float)
	for _, tag := range contracts.AllTags() {
		if a.cfg.IsBalance(string(tag)) {
			values[tag] = snapshot.Value(tag)
			continue
		}
		if !contiguous {
			values[tag] = contracts.Missing
			continue
		}
		values[tag] = sumFlow(qs, tag)
	}

	switch {
	case !contiguous:
		a.logger.WithFields(map[string]interface{}{
			"quarters": len(qs),
			"gap_days": gap,
			"from":     qs[0].EndDate.Format("2006-01-02"),
			"to":       latest.EndDate.Format("2006-01-02"),
		}).Warn("Quarters are not consecutive, TTM flow values are missing")
	case len(qs) < QuartersPerYear:
		a.logger.WithFields(map[string]interface{}{
			"quarters": len(qs),
		}).Warn("Fewer than four quarters, TTM flow values are missing")
	}

	return contracts.NewPeriod(contracts.TTMKey, contracts.PeriodTTM, latest.FiscalYear, latest.EndDate, values), nil
}

// Apply appends the TTM period to table. On ErrInsufficientData the table is returned unchanged
// together with the error so the caller can omit TTM output and continue.
func (a *Aggregator) Apply(table contracts.FundamentalsTable, quarters []contracts.Period) (contracts.FundamentalsTable, error) {
	ttm, err := a.Aggregate(quarters)
	if err != nil {
		return table, err
	}
	return table.WithTTM(ttm), nil
}

// widestGap returns the largest distance in days between adjacent quarter ends of the sorted window
func widestGap(qs []contracts.Period) int {
	widest := 0
	for i := 1; i < len(qs); i++ {
		if d := int(qs[i].EndDate.Sub(qs[i-1].EndDate).Hours() / 24); d > widest {
			widest = d
		}
	}
	return widest
}

// sumFlow adds the tag over exactly four quarters; no partial sums
func sumFlow(qs []contracts.Period, tag contracts.Tag) null.Float {
	if len(qs) < QuartersPerYear {
		return contracts.Missing
	}
	total := 0.0
	for _, q := range qs {
		v := q.Value(tag)
		if !v.Valid {
			return contracts.Missing
		}
		total += v.Float64
	}
	return contracts.Num(total)
}
