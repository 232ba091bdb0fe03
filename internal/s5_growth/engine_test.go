package s5_growth

import (
	"testing"
	"time"

	"github.com/guregu/null/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/valuationconfig"
	"github.com/wonny/fairvalue/pkg/logger"
)

// series builds an annual series starting at firstYear; nil entries are missing
func series(firstYear int, values ...interface{}) contracts.RatioSeries {
	s := contracts.RatioSeries{Ratio: contracts.RatioEPS}
	for i, v := range values {
		year := firstYear + i
		val := contracts.Missing
		if f, ok := v.(float64); ok {
			val = null.FloatFrom(f)
		}
		s.Points = append(s.Points, contracts.RatioPoint{
			PeriodKey:  contracts.AnnualKey(year),
			Kind:       contracts.PeriodAnnual,
			FiscalYear: year,
			EndDate:    time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC),
			Value:      val,
		})
	}
	return s
}

func withTTM(s contracts.RatioSeries, v float64, end time.Time) contracts.RatioSeries {
	s.Points = append(s.Points, contracts.RatioPoint{
		PeriodKey: contracts.TTMKey, Kind: contracts.PeriodTTM, FiscalYear: end.Year(), EndDate: end, Value: null.FloatFrom(v),
	})
	return s
}

func newEngine() *Engine {
	return New(valuationconfig.Default(), logger.NewNop())
}

func inception(t *testing.T, r contracts.CAGRResult) contracts.CAGRWindow {
	t.Helper()
	w, ok := r.Window(contracts.WindowInception)
	require.True(t, ok)
	return w
}

func TestCAGRProperties(t *testing.T) {
	tests := []struct {
		name       string
		series     contracts.RatioSeries
		want       null.Float
		wantReason contracts.Reason
	}{
		{"100 to 121 over two years is 10%", series(2019, 100.0, 110.0, 121.0), null.FloatFrom(10), contracts.ReasonNone},
		{"gap is skipped", series(2019, 100.0, nil, 144.0), null.FloatFrom(20), contracts.ReasonNone},
		{"sign flip", series(2019, 100.0, -50.0), contracts.Missing, contracts.ReasonSignChange},
		{"negative to positive", series(2019, -10.0, 5.0), contracts.Missing, contracts.ReasonSignChange},
		{"zero base", series(2019, 0.0, 5.0), contracts.Missing, contracts.ReasonZeroBase},
		{"both negative", series(2019, -10.0, -5.0), contracts.Missing, contracts.ReasonNegativeBase},
		{"single valid value", series(2019, nil, 5.0, nil), contracts.Missing, contracts.ReasonInsufficientSpan},
		{"no valid values", series(2019, nil, nil), contracts.Missing, contracts.ReasonMissingInput},
		{"decline to zero", series(2019, 10.0, 0.0), null.FloatFrom(-100), contracts.ReasonNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := inception(t, newEngine().CAGR(tt.series))
			assert.Equal(t, tt.want, w.Percent)
			assert.Equal(t, tt.wantReason, w.Reason)
		})
	}
}

func TestWindowsUseLongestAvailableSpan(t *testing.T) {
	r := newEngine().CAGR(series(2019, 100.0, 110.0, 121.0))
	require.Len(t, r.Windows, 5)

	oneYear, _ := r.Window("1y")
	assert.Equal(t, null.FloatFrom(10), oneYear.Percent)
	assert.True(t, oneYear.Exact)
	assert.Equal(t, "2020", oneYear.StartKey)

	tenYear, _ := r.Window("10y")
	assert.Equal(t, null.FloatFrom(10), tenYear.Percent)
	assert.False(t, tenYear.Exact)
	assert.Equal(t, 2.0, tenYear.SpanYears, "labelled with the span actually used")
	assert.Equal(t, 10, tenYear.RequestedYears)
}

func TestWindowStartsInsideWindow(t *testing.T) {
	// 12 years; 3y window must start at 2027-3 = 2024
	vals := []interface{}{}
	v := 100.0
	for i := 0; i < 12; i++ {
		vals = append(vals, v)
		v *= 1.1
	}
	r := newEngine().CAGR(series(2016, vals...))

	threeYear, _ := r.Window("3y")
	assert.Equal(t, "2024", threeYear.StartKey)
	assert.Equal(t, "2027", threeYear.EndKey)
	assert.Equal(t, null.FloatFrom(10), threeYear.Percent)

	incep := inception(t, r)
	assert.Equal(t, "2016", incep.StartKey)
	assert.Equal(t, 11.0, incep.SpanYears)
}

func TestTTMExcludedFromWindowEndpoints(t *testing.T) {
	s := withTTM(series(2019, 100.0, 121.0), 5000, time.Date(2021, 6, 30, 0, 0, 0, 0, time.UTC))
	w := inception(t, newEngine().CAGR(s))
	assert.Equal(t, "2020", w.EndKey)
	assert.Equal(t, null.FloatFrom(21), w.Percent)

	_, hasTrailing := newEngine().CAGR(s).Window(contracts.WindowTrailing)
	assert.False(t, hasTrailing, "trailing window is off by default")
}

func TestTrailingWindow(t *testing.T) {
	cfg := valuationconfig.Default()
	cfg.Growth.IncludeTrailing = true
	engine := New(cfg, logger.NewNop())

	s := withTTM(series(2019, 100.0, 100.0), 121, time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC))
	w, ok := engine.CAGR(s).Window(contracts.WindowTrailing)
	require.True(t, ok)
	assert.Equal(t, "2020", w.StartKey)
	assert.Equal(t, contracts.TTMKey, w.EndKey)
	assert.InDelta(t, 2.0, w.SpanYears, 0.01)
	assert.Equal(t, null.FloatFrom(10), w.Percent)

	noTTM, _ := engine.CAGR(series(2019, 1.0, 2.0)).Window(contracts.WindowTrailing)
	assert.Equal(t, contracts.ReasonMissingInput, noTTM.Reason)
}

func TestCompute(t *testing.T) {
	table := contracts.RatioTable{Rows: []contracts.RatioRow{
		{PeriodKey: "2020", Kind: contracts.PeriodAnnual, FiscalYear: 2020, Values: map[contracts.Ratio]null.Float{
			contracts.RatioRevenuePerShare: null.FloatFrom(10), contracts.RatioEPS: null.FloatFrom(1),
		}},
		{PeriodKey: "2021", Kind: contracts.PeriodAnnual, FiscalYear: 2021, Values: map[contracts.Ratio]null.Float{
			contracts.RatioRevenuePerShare: null.FloatFrom(12), contracts.RatioEPS: null.FloatFrom(1.1),
		}},
	}}

	g := newEngine().Compute(table)
	require.Len(t, g.Results, 4)

	rev, ok := g.Get(contracts.RatioRevenuePerShare)
	require.True(t, ok)
	assert.Equal(t, []float64{20, 20, 20, 20, 20}, rev.Computable())

	_, hasPE := g.Get(contracts.RatioPE)
	assert.False(t, hasPE, "P/E is not a growth series")

	all := g.AllComputable(contracts.GrowthRatios()...)
	assert.Len(t, all, 10)
}

func TestRate(t *testing.T) {
	v, reason := Rate(100, 121, 2)
	assert.Equal(t, null.FloatFrom(10), v)
	assert.Equal(t, contracts.ReasonNone, reason)

	_, reason = Rate(100, 121, 0)
	assert.Equal(t, contracts.ReasonInsufficientSpan, reason)

	_, reason = Rate(-5, 0, 1)
	assert.Equal(t, contracts.ReasonSignChange, reason)
}
