package contracts

import (
	"math"
	"sort"
	"time"

	"github.com/guregu/null/v5"
)

// PricePoint is one daily close
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is a chronological daily close series. Immutable input.
type PriceSeries struct {
	Ticker string       `json:"ticker"`
	Points []PricePoint `json:"points"`
}

// NewPriceSeries sorts by date, keeps the last close per day and drops non-finite or non-positive closes
func NewPriceSeries(ticker string, points []PricePoint) PriceSeries {
	byDay := make(map[string]PricePoint, len(points))
	for _, p := range points {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close <= 0 {
			continue
		}
		byDay[p.Date.Format("2006-01-02")] = p
	}
	out := make([]PricePoint, 0, len(byDay))
	for _, p := range byDay {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return PriceSeries{Ticker: ticker, Points: out}
}

// Latest returns the most recent close
func (s PriceSeries) Latest() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Span returns the first and last observation dates
func (s PriceSeries) Span() (time.Time, time.Time, bool) {
	if len(s.Points) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.Points[0].Date, s.Points[len(s.Points)-1].Date, true
}

// YearClose is one calendar-year resample bucket
type YearClose struct {
	Year    int       `json:"year"`
	Close   float64   `json:"close"`
	AsOf    time.Time `json:"as_of"`
	Partial bool      `json:"partial"`
}

// AlignedPrice is the price attached to one fundamentals period
type AlignedPrice struct {
	PeriodKey string     `json:"period_key"`
	Price     null.Float `json:"price"`
	AsOf      time.Time  `json:"as_of,omitempty"`
}

// AlignedPriceColumn is one price per fundamentals period plus the yearly resample it came from
type AlignedPriceColumn struct {
	Prices []AlignedPrice `json:"prices"`
	Yearly []YearClose    `json:"yearly"`
	Latest PricePoint     `json:"latest"`
}

// Get returns the aligned price for a period key
func (c AlignedPriceColumn) Get(key string) null.Float {
	for _, p := range c.Prices {
		if p.PeriodKey == key {
			return p.Price
		}
	}
	return Missing
}
