package edgar

import (
	"sort"
	"time"

	"github.com/wonny/fairvalue/internal/contracts"
)

// Period length windows in days
const (
	annualMinDays    = 330
	annualMaxDays    = 400
	quarterMinDays   = 80
	quarterMaxDays   = 100
	halfYearMinDays  = 170
	halfYearMaxDays  = 200
	nineMonthMinDays = 250
	nineMonthMaxDays = 290

	// MaxAnnualPeriods covers the 10-year CAGR window plus its base year
	MaxAnnualPeriods = 12
	MaxQuarters      = 8
)

// CompanyFacts is the /api/xbrl/companyfacts document
type CompanyFacts struct {
	CIK        int                           `json:"cik"`
	EntityName string                        `json:"entityName"`
	Facts      map[string]map[string]Concept `json:"facts"` // taxonomy → concept name
}

// Concept is one XBRL concept with its facts per unit
type Concept struct {
	Label string            `json:"label"`
	Units map[string][]Fact `json:"units"`
}

// Fact is one reported value
type Fact struct {
	Start string  `json:"start,omitempty"` // empty for instants
	End   string  `json:"end"`
	Val   float64 `json:"val"`
	Accn  string  `json:"accn"`
	FY    int     `json:"fy"`
	FP    string  `json:"fp"`
	Form  string  `json:"form"`
	Filed string  `json:"filed"`
	Frame string  `json:"frame,omitempty"`
}

// observation is a fact reduced to what period extraction needs
type observation struct {
	name  string
	unit  string
	start time.Time // zero for instants
	end   time.Time
	val   float64
	form  string
	filed string
}

func (o observation) days() int {
	if o.start.IsZero() {
		return 0
	}
	return int(o.end.Sub(o.start).Hours()/24) + 1
}

func (o observation) isInstant() bool { return o.start.IsZero() }

func (o observation) within(min, max int) bool {
	d := o.days()
	return d >= min && d <= max
}

// Weighted-average counts and per-share values cannot be derived by subtraction
func (o observation) isShareCount() bool { return o.unit == "shares" }

func (o observation) isPerShare() bool { return o.unit == "USD/shares" }

// preferredUnits are tried first; otherwise the alphabetically first unit is used
var preferredUnits = []string{"USD", "USD/shares", "shares", "pure"}

func pickUnit(units map[string][]Fact) string {
	for _, u := range preferredUnits {
		if _, ok := units[u]; ok {
			return u
		}
	}
	keys := make([]string, 0, len(units))
	for u := range units {
		keys = append(keys, u)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

// observations flattens the facts of wanted concepts filed on the given forms.
// Taxonomies are walked in sorted order so the result is deterministic.
func (f *CompanyFacts) observations(names map[string]bool, forms map[string]bool) []observation {
	taxonomies := make([]string, 0, len(f.Facts))
	for t := range f.Facts {
		taxonomies = append(taxonomies, t)
	}
	sort.Strings(taxonomies)

	var out []observation
	for _, tax := range taxonomies {
		for name, concept := range f.Facts[tax] {
			if !names[name] {
				continue
			}
			unit := pickUnit(concept.Units)
			for _, fact := range concept.Units[unit] {
				if !forms[fact.Form] {
					continue
				}
				end, err := time.Parse("2006-01-02", fact.End)
				if err != nil {
					continue
				}
				var start time.Time
				if fact.Start != "" {
					if start, err = time.Parse("2006-01-02", fact.Start); err != nil {
						continue
					}
				}
				out = append(out, observation{
					name: name, unit: unit, start: start, end: end,
					val: fact.Val, form: fact.Form, filed: fact.Filed,
				})
			}
		}
	}
	return out
}

type factKey struct {
	name string
	end  time.Time
}

// latest keeps, per (name, end), the value from the most recent filing (restatements win)
type latest map[factKey]observation

func (l latest) put(o observation) {
	k := factKey{o.name, o.end}
	if cur, ok := l[k]; !ok || o.filed > cur.filed {
		l[k] = o
	}
}

// AnnualPeriods builds one RawPeriod per fiscal year end found among full-year durations.
// Instants are attached to the period ending on the same date.
func AnnualPeriods(obs []observation, form string) []contracts.RawPeriod {
	values := make(latest)
	ends := make(map[time.Time]bool)
	for _, o := range obs {
		switch {
		case o.isInstant():
			values.put(o)
		case o.within(annualMinDays, annualMaxDays):
			values.put(o)
			ends[o.end] = true
		}
	}

	// one period per fiscal year; a changed fiscal year end keeps the later date
	byYear := make(map[int]time.Time)
	for end := range ends {
		if cur, ok := byYear[end.Year()]; !ok || end.After(cur) {
			byYear[end.Year()] = end
		}
	}

	periods := make([]contracts.RawPeriod, 0, len(byYear))
	for year, end := range byYear {
		periods = append(periods, contracts.RawPeriod{
			Key:        contracts.AnnualKey(year),
			Kind:       contracts.PeriodAnnual,
			FiscalYear: year,
			EndDate:    end,
			Form:       form,
			Facts:      collect(values, end),
		})
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].EndDate.Before(periods[j].EndDate) })
	if len(periods) > MaxAnnualPeriods {
		periods = periods[len(periods)-MaxAnnualPeriods:]
	}
	return periods
}

// ytdSpan orders the year-to-date durations of one fiscal year
type ytdSpan int

const (
	spanQuarter ytdSpan = iota
	spanHalf
	spanNineMonths
	spanYear
	spanNone
)

func (o observation) span() ytdSpan {
	switch {
	case o.within(quarterMinDays, quarterMaxDays):
		return spanQuarter
	case o.within(halfYearMinDays, halfYearMaxDays):
		return spanHalf
	case o.within(nineMonthMinDays, nineMonthMaxDays):
		return spanNineMonths
	case o.within(annualMinDays, annualMaxDays):
		return spanYear
	default:
		return spanNone
	}
}

type ytdKey struct {
	name  string
	start time.Time
}

// ytd keeps, per concept and fiscal-year start, the latest filed value of each duration length
type ytd map[ytdKey]map[ytdSpan]observation

func (y ytd) put(o observation, s ytdSpan) {
	k := ytdKey{o.name, o.start}
	if y[k] == nil {
		y[k] = make(map[ytdSpan]observation)
	}
	if cur, ok := y[k][s]; !ok || o.filed > cur.filed {
		y[k][s] = o
	}
}

// QuarterPeriods builds fiscal quarters from 10-Q facts and the 10-K full year.
// Three-month durations are used as filed. A quarter only reported year-to-date (typical for
// cash-flow statements) is the difference of two consecutive year-to-date values sharing a start:
// 6M−3M, 9M−6M and FY−9M for the fourth quarter, which no 10-Q covers.
// Share counts of the fourth quarter fall back to the full-year weighted average;
// per-share values are never derived.
func QuarterPeriods(quarterly, annual []observation) []contracts.RawPeriod {
	values := make(latest)
	ends := make(map[time.Time]bool)
	durations := make(ytd)

	for _, o := range quarterly {
		if o.isInstant() {
			values.put(o)
			continue
		}
		s := o.span()
		switch s {
		case spanQuarter:
			values.put(o)
			ends[o.end] = true
			durations.put(o, s)
		case spanHalf, spanNineMonths:
			durations.put(o, s)
		}
	}

	for _, o := range annual {
		switch {
		case o.isInstant():
			values.put(o)
		case o.span() == spanYear:
			if o.isShareCount() {
				values.put(o)
				continue
			}
			durations.put(o, spanYear)
		}
	}

	// derived quarters never replace a filed three-month value
	derived := make(latest)
	for _, spans := range durations {
		for s := spanHalf; s <= spanYear; s++ {
			cur, ok := spans[s]
			prev, okPrev := spans[s-1]
			if !ok || !okPrev || cur.isShareCount() || cur.isPerShare() {
				continue
			}
			if _, filed := values[factKey{cur.name, cur.end}]; filed {
				continue
			}
			q := cur
			q.val = cur.val - prev.val
			derived.put(q)
			ends[cur.end] = true
		}
	}
	for k, o := range derived {
		if _, filed := values[k]; !filed {
			values[k] = o
		}
	}

	periods := make([]contracts.RawPeriod, 0, len(ends))
	for end := range ends {
		periods = append(periods, contracts.RawPeriod{
			Key:        contracts.QuarterKey(end),
			Kind:       contracts.PeriodQuarter,
			FiscalYear: end.Year(),
			EndDate:    end,
			Form:       contracts.FormQuarterly,
			Facts:      collect(values, end),
		})
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].EndDate.Before(periods[j].EndDate) })
	if len(periods) > MaxQuarters {
		periods = periods[len(periods)-MaxQuarters:]
	}
	return periods
}

func collect(values latest, end time.Time) map[string]float64 {
	facts := make(map[string]float64)
	for k, o := range values {
		if k.end.Equal(end) {
			facts[k.name] = o.val
		}
	}
	return facts
}
