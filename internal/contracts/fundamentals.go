package contracts

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/guregu/null/v5"
)

// PeriodKind distinguishes fiscal years, quarters and the synthetic TTM period
type PeriodKind string

const (
	PeriodAnnual  PeriodKind = "annual"
	PeriodQuarter PeriodKind = "quarter"
	PeriodTTM     PeriodKind = "ttm"
)

// TTMKey is the key of the synthetic trailing-twelve-month period
const TTMKey = "TTM"

// Period is one row of the fundamentals table. Immutable: With returns a copy.
type Period struct {
	Key        string
	Kind       PeriodKind
	FiscalYear int
	EndDate    time.Time
	values     map[Tag]null.Float
}

// NewPeriod builds a period, copying values and dropping NaN/Inf
func NewPeriod(key string, kind PeriodKind, fiscalYear int, endDate time.Time, values map[Tag]null.Float) Period {
	vs := make(map[Tag]null.Float, len(values))
	for tag, v := range values {
		if c := Clean(v); c.Valid {
			vs[tag] = c
		}
	}
	return Period{Key: key, Kind: kind, FiscalYear: fiscalYear, EndDate: endDate, values: vs}
}

// AnnualKey is the period key for a fiscal year
func AnnualKey(fiscalYear int) string {
	return strconv.Itoa(fiscalYear)
}

// QuarterKey is the period key for a quarter ending on endDate
func QuarterKey(endDate time.Time) string {
	return endDate.Format("2006-01-02")
}

// Value returns the tag's value or missing
func (p Period) Value(tag Tag) null.Float {
	if v, ok := p.values[tag]; ok {
		return v
	}
	return Missing
}

// With returns a copy of p with tag set to v
func (p Period) With(tag Tag, v null.Float) Period {
	vs := make(map[Tag]null.Float, len(p.values)+1)
	for k, x := range p.values {
		vs[k] = x
	}
	if c := Clean(v); c.Valid {
		vs[tag] = c
	} else {
		delete(vs, tag)
	}
	p.values = vs
	return p
}

// Tags returns the tags carrying a value, in vocabulary order
func (p Period) Tags() []Tag {
	out := make([]Tag, 0, len(p.values))
	for _, t := range AllTags() {
		if _, ok := p.values[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// IsTTM reports whether p is the synthetic TTM period
func (p Period) IsTTM() bool {
	return p.Kind == PeriodTTM
}

type periodJSON struct {
	Key        string                `json:"key"`
	Kind       PeriodKind            `json:"kind"`
	FiscalYear int                   `json:"fiscal_year"`
	EndDate    string                `json:"end_date"`
	Values     map[string]null.Float `json:"values"`
}

// MarshalJSON emits every vocabulary tag, missing ones as null
func (p Period) MarshalJSON() ([]byte, error) {
	out := periodJSON{
		Key:        p.Key,
		Kind:       p.Kind,
		FiscalYear: p.FiscalYear,
		EndDate:    p.EndDate.Format("2006-01-02"),
		Values:     make(map[string]null.Float, len(AllTags())),
	}
	for _, t := range AllTags() {
		out.Values[string(t)] = p.Value(t)
	}
	return json.Marshal(out)
}

// FundamentalsTable is the ordered annual periods plus at most one TTM period (last)
// ⭐ SSOT: S0 → S1..S6 재무 테이블
type FundamentalsTable struct {
	Ticker  string
	periods []Period
}

// NewFundamentalsTable sorts periods chronologically (TTM last) and validates keys
func NewFundamentalsTable(ticker string, periods []Period) (FundamentalsTable, error) {
	ps := make([]Period, 0, len(periods))
	seen := make(map[string]bool, len(periods))
	ttmCount := 0
	for _, p := range periods {
		if p.Kind == PeriodQuarter {
			return FundamentalsTable{}, fmt.Errorf("%w: quarter period %s in annual table", ErrInvalidTable, p.Key)
		}
		if seen[p.Key] {
			return FundamentalsTable{}, fmt.Errorf("%w: duplicate period %s", ErrInvalidTable, p.Key)
		}
		seen[p.Key] = true
		if p.IsTTM() {
			ttmCount++
		}
		ps = append(ps, p)
	}
	if ttmCount > 1 {
		return FundamentalsTable{}, fmt.Errorf("%w: %d TTM periods", ErrInvalidTable, ttmCount)
	}

	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].IsTTM() != ps[j].IsTTM() {
			return ps[j].IsTTM()
		}
		if ps[i].FiscalYear != ps[j].FiscalYear {
			return ps[i].FiscalYear < ps[j].FiscalYear
		}
		return ps[i].EndDate.Before(ps[j].EndDate)
	})

	return FundamentalsTable{Ticker: ticker, periods: ps}, nil
}

// Periods returns a copy of all periods
func (t FundamentalsTable) Periods() []Period {
	out := make([]Period, len(t.periods))
	copy(out, t.periods)
	return out
}

// Len returns the number of periods including TTM
func (t FundamentalsTable) Len() int {
	return len(t.periods)
}

// Annual returns the annual periods only
func (t FundamentalsTable) Annual() []Period {
	out := make([]Period, 0, len(t.periods))
	for _, p := range t.periods {
		if p.Kind == PeriodAnnual {
			out = append(out, p)
		}
	}
	return out
}

// LatestAnnual returns the most recent full fiscal year
func (t FundamentalsTable) LatestAnnual() (Period, bool) {
	annual := t.Annual()
	if len(annual) == 0 {
		return Period{}, false
	}
	return annual[len(annual)-1], true
}

// TTM returns the TTM period if present
func (t FundamentalsTable) TTM() (Period, bool) {
	if n := len(t.periods); n > 0 && t.periods[n-1].IsTTM() {
		return t.periods[n-1], true
	}
	return Period{}, false
}

// WithTTM returns a new table with p as the TTM period, replacing any existing one
func (t FundamentalsTable) WithTTM(p Period) FundamentalsTable {
	p.Kind = PeriodTTM
	p.Key = TTMKey
	out := make([]Period, 0, len(t.periods)+1)
	for _, x := range t.periods {
		if !x.IsTTM() {
			out = append(out, x)
		}
	}
	out = append(out, p)
	return FundamentalsTable{Ticker: t.Ticker, periods: out}
}

// Column returns the tag's value for every period, table order
func (t FundamentalsTable) Column(tag Tag) []null.Float {
	out := make([]null.Float, len(t.periods))
	for i, p := range t.periods {
		out[i] = p.Value(tag)
	}
	return out
}

// ShareCounts extracts a share-count series for tag
func (t FundamentalsTable) ShareCounts(tag Tag) ShareCountSeries {
	points := make([]SharePoint, len(t.periods))
	for i, p := range t.periods {
		points[i] = SharePoint{PeriodKey: p.Key, Count: p.Value(tag)}
	}
	return ShareCountSeries{Tag: tag, Points: points}
}

// MarshalJSON emits the ordered periods
func (t FundamentalsTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Ticker  string   `json:"ticker"`
		Periods []Period `json:"periods"`
	}{t.Ticker, t.periods})
}

// SharePoint is one (period, count) observation
type SharePoint struct {
	PeriodKey string     `json:"period_key"`
	Count     null.Float `json:"count"`
}

// ShareCountSeries is a chronological raw share-count series
type ShareCountSeries struct {
	Tag    Tag          `json:"tag"`
	Points []SharePoint `json:"points"`
}

// SplitEvent is a detected split between two consecutive valid observations.
// Factor > 1 is a forward split, < 1 a reverse split.
type SplitEvent struct {
	FromKey string  `json:"from_key"`
	ToKey   string  `json:"to_key"`
	Ratio   float64 `json:"ratio"`
	Factor  float64 `json:"factor"`
}

// AdjustedSharePoint carries the raw count, the cumulative factor and the adjusted count
type AdjustedSharePoint struct {
	PeriodKey string     `json:"period_key"`
	Raw       null.Float `json:"raw"`
	Factor    float64    `json:"factor"`
	Adjusted  null.Float `json:"adjusted"`
}

// AdjustedShareCountSeries is a split-adjusted share-count series in present-day terms
type AdjustedShareCountSeries struct {
	Tag    Tag                  `json:"tag"`
	Points []AdjustedSharePoint `json:"points"`
	Splits []SplitEvent         `json:"splits"`
}

// Get returns the adjusted count for a period key
func (s AdjustedShareCountSeries) Get(key string) null.Float {
	for _, p := range s.Points {
		if p.PeriodKey == key {
			return p.Adjusted
		}
	}
	return Missing
}
