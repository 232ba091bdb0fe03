// Package s3_prices maps a daily close series onto the fundamentals period index.
package s3_prices

import (
	"time"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/valuationconfig"
	"github.com/wonny/fairvalue/pkg/logger"
)

// Aligner is the price alignment stage (S3)
type Aligner struct {
	cfg    valuationconfig.Prices
	logger *logger.Logger
}

// New creates an aligner
func New(cfg *valuationconfig.Config, log *logger.Logger) *Aligner {
	return &Aligner{cfg: cfg.Prices, logger: log}
}

// Resample takes the last close of each calendar year. Only the final bucket can be
// partial: it is partial when its last observation precedes the year's last weekday.
func Resample(series contracts.PriceSeries) []contracts.YearClose {
	var out []contracts.YearClose
	for _, p := range series.Points {
		y := p.Date.Year()
		if n := len(out); n > 0 && out[n-1].Year == y {
			out[n-1].Close = p.Close
			out[n-1].AsOf = p.Date
			continue
		}
		out = append(out, contracts.YearClose{Year: y, Close: p.Close, AsOf: p.Date})
	}

	if n := len(out); n > 0 {
		last := &out[n-1]
		last.Partial = dayOf(last.AsOf).Before(lastWeekday(last.Year))
	}
	return out
}

// Align produces one price per period: year-end close for annual periods,
// latest close for TTM. Partial-year closes are used only when configured.
func (a *Aligner) Align(table contracts.FundamentalsTable, series contracts.PriceSeries) contracts.AlignedPriceColumn {
	yearly := Resample(series)
	byYear := make(map[int]contracts.YearClose, len(yearly))
	for _, yc := range yearly {
		byYear[yc.Year] = yc
	}

	col := contracts.AlignedPriceColumn{Yearly: yearly}
	latest, hasLatest := series.Latest()
	if hasLatest {
		col.Latest = latest
	}

	for _, p := range table.Periods() {
		ap := contracts.AlignedPrice{PeriodKey: p.Key, Price: contracts.Missing}

		switch {
		case p.IsTTM():
			if hasLatest {
				ap.Price = contracts.Num(latest.Close)
				ap.AsOf = latest.Date
			}
		default:
			yc, ok := byYear[p.FiscalYear]
			if ok && (!yc.Partial || a.cfg.UsePartialYearClose) {
				ap.Price = contracts.Num(yc.Close)
				ap.AsOf = yc.AsOf
			}
		}
		col.Prices = append(col.Prices, ap)
	}

	missing := 0
	for _, ap := range col.Prices {
		if !ap.Price.Valid {
			missing++
		}
	}
	if missing > 0 {
		a.logger.WithFields(map[string]interface{}{
			"periods": len(col.Prices),
			"missing": missing,
		}).Debug("Some periods have no aligned price")
	}

	return col
}

// lastWeekday returns the last Monday-Friday date of the year
func lastWeekday(year int) time.Time {
	d := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
