package contracts

import (
	"context"
	"time"
)

// RawPeriod is one filing period as reported, keyed by source tag names (pre-alias)
type RawPeriod struct {
	Key        string             `json:"key"`
	Kind       PeriodKind         `json:"kind"`
	FiscalYear int                `json:"fiscal_year"`
	EndDate    time.Time          `json:"end_date"`
	Form       string             `json:"form,omitempty"`
	Facts      map[string]float64 `json:"facts"`
}

// RawFilings is what the filings collaborator delivers
type RawFilings struct {
	Ticker  string      `json:"ticker"`
	Source  string      `json:"source"`
	Periods []RawPeriod `json:"periods"`
}

// FilingsSource supplies annual and quarterly facts (SEC download or local store)
// ⭐ SSOT: 재무 공시 수집 인터페이스
type FilingsSource interface {
	AnnualFilings(ctx context.Context, ticker string, foreign bool) (*RawFilings, error)
	QuarterlyFilings(ctx context.Context, ticker string) (*RawFilings, error)
}

// PriceSource supplies daily closes covering [from, to]
// ⭐ SSOT: 일별 종가 수집 인터페이스
type PriceSource interface {
	DailyCloses(ctx context.Context, ticker string, from, to time.Time) (*PriceSeries, error)
}

// FilingsRepository is a FilingsSource that can also persist downloads
type FilingsRepository interface {
	FilingsSource
	SaveFilings(ctx context.Context, filings *RawFilings) error
}

// PriceRepository is a PriceSource that can also persist downloads
type PriceRepository interface {
	PriceSource
	SavePrices(ctx context.Context, series *PriceSeries) error
}

// Filing forms, also used as the store's dataset key
const (
	FormAnnual        = "10-K"
	FormForeignAnnual = "20-F"
	FormQuarterly     = "10-Q"
)

// AnnualForm returns the annual form for domestic or foreign filers
func AnnualForm(foreign bool) string {
	if foreign {
		return FormForeignAnnual
	}
	return FormAnnual
}
