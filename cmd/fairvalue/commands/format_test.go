package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fairvalue/internal/brain"
	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/valuationconfig"
	"github.com/wonny/fairvalue/pkg/logger"
)

func day(y, m, d int) time.Time { return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC) }

func facts(rev, ni, shares float64) map[string]float64 {
	return map[string]float64{
		string(contracts.TagRevenues):          rev,
		string(contracts.TagNetIncome):         ni,
		string(contracts.TagEquity):            500,
		string(contracts.TagOperatingCashFlow): 150,
		string(contracts.TagCapEx):             50,
		string(contracts.TagDepreciation):      20,
		string(contracts.TagShares):            shares,
		string(contracts.TagDilutedShares):     shares,
	}
}

// sampleResult runs the pure pipeline over three fiscal years and four quarters
func sampleResult(t *testing.T) *brain.RunResult {
	t.Helper()

	orch, err := brain.NewOrchestrator(valuationconfig.Default(), nil, nil, logger.NewNop())
	require.NoError(t, err)

	q := func(y, m, d int) contracts.RawPeriod {
		return contracts.RawPeriod{Kind: contracts.PeriodQuarter, FiscalYear: y, EndDate: day(y, m, d), Facts: facts(310, 32, 200)}
	}
	a, err := orch.Analyze(brain.AnalysisInput{
		Annual: &contracts.RawFilings{
			Ticker: "ACME",
			Source: contracts.FormAnnual,
			Periods: []contracts.RawPeriod{
				{Kind: contracts.PeriodAnnual, FiscalYear: 2020, EndDate: day(2020, 12, 31), Facts: facts(1000, 100, 100)},
				{Kind: contracts.PeriodAnnual, FiscalYear: 2021, EndDate: day(2021, 12, 31), Facts: facts(1100, 110, 100)},
				{Kind: contracts.PeriodAnnual, FiscalYear: 2022, EndDate: day(2022, 12, 31), Facts: facts(1210, 121, 200)},
			},
		},
		Quarterly: &contracts.RawFilings{
			Ticker:  "ACME",
			Source:  contracts.FormQuarterly,
			Periods: []contracts.RawPeriod{q(2022, 9, 30), q(2022, 12, 31), q(2023, 3, 31), q(2023, 6, 30)},
		},
		Prices: contracts.NewPriceSeries("ACME", []contracts.PricePoint{
			{Date: day(2020, 12, 31), Close: 20},
			{Date: day(2021, 12, 31), Close: 22},
			{Date: day(2022, 12, 30), Close: 24.2},
			{Date: day(2023, 6, 30), Close: 30},
		}),
	})
	require.NoError(t, err)

	return &brain.RunResult{RunID: "run-1", Ticker: "ACME", ConfigHash: orch.ConfigHash(), Analysis: *a}
}

func TestPrintReportSectionOrder(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, sampleResult(t))
	out := buf.String()

	sections := []string{
		"Fair value analysis: ACME",
		"Fundamental data",
		"Key growth indicators",
		"Revenue Per Share (Diluted) Growth:",
		"Earnings Per Share (Diluted) Growth:",
		"Book Value Per Share Growth:",
		"Free Cash Flow Per Share (Diluted) Growth:",
		"Latest Stock Price: 30.00",
		`Value estimation with "Growth At Normalized P/E" technique:`,
		"Fair value is estimated in the range of $",
		`Value estimation with "Owner Earnings" technique:`,
		"10 years of owner earnings: 910",
		"Market Cap: 6000",
		"Owner earnings ratio (>1.0 is good): 0.15",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(out, s)
		require.GreaterOrEqual(t, idx, 0, "missing %q", s)
		assert.Greater(t, idx, last, "%q out of order", s)
		last = idx
	}

	assert.Contains(t, out, "NumberOfSharesAdjusted")
	assert.Contains(t, out, "StockPrice")
	assert.Contains(t, out, "TTM")
	assert.Contains(t, out, "Stages      : 7/7")
}

func TestPrintTableAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, []string{"", "2021", "TTM"}, [][]string{
		{"Revenues", "1000.00", "-"},
		{"EPS", "1.10", "12.50"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "             2021    TTM", lines[0])
	assert.Equal(t, strings.Repeat("─", len([]rune(lines[0]))), lines[1])
	assert.Equal(t, "Revenues  1000.00      -", lines[2])
	assert.Equal(t, "EPS          1.10  12.50", lines[3])
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		miss bool
		want string
	}{
		{name: "missing", miss: true, want: "-"},
		{name: "per share", in: 1.234, want: "1.23"},
		{name: "negative", in: -0.5, want: "-0.50"},
		{name: "large drops decimals", in: 394328000000.4, want: "394328000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := contracts.Num(tt.in)
			if tt.miss {
				v = contracts.Missing
			}
			assert.Equal(t, tt.want, formatValue(v))
		})
	}
}

func TestPrintGrowthAtNormalizedPE(t *testing.T) {
	tests := []struct {
		name     string
		est      contracts.RangeEstimate
		contains []string
	}{
		{
			name: "computable",
			est: contracts.RangeEstimate{
				EPS: 5, EPSPeriod: "TTM", GrowthPercent: 10, GrowthSource: contracts.SourceOperator,
				NormalizedPE: 15, PESource: contracts.SourceDefault, Low: 30.12, High: 75, Computable: true,
			},
			contains: []string{
				"Growth rate estimation: 10% (operator), future P/E estimation: 15.00 (default)",
				"EPS (TTM): 5.00",
				"Fair value is estimated in the range of $30.12 - $75.00",
			},
		},
		{
			name:     "missing eps",
			est:      contracts.RangeEstimate{Reason: contracts.ReasonMissingInput},
			contains: []string{"not computable: " + string(contracts.ReasonMissingInput)},
		},
		{
			name: "out of range",
			est: contracts.RangeEstimate{
				EPS: 1, GrowthPercent: 40, NormalizedPE: 15, Computable: true, OutOfRange: true,
			},
			contains: []string{"assumption outside sane bounds"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintGrowthAtNormalizedPE(&buf, tt.est)
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func TestPrintOwnerEarningsNotComputable(t *testing.T) {
	var buf bytes.Buffer
	PrintOwnerEarnings(&buf, contracts.PointEstimate{Reason: contracts.ReasonNonPositiveMarketCap})

	assert.Contains(t, buf.String(), "not computable: "+string(contracts.ReasonNonPositiveMarketCap))
	assert.NotContains(t, buf.String(), "Market Cap")
}

func TestFormatSpan(t *testing.T) {
	assert.Equal(t, "-", formatSpan(contracts.CAGRWindow{}))
	assert.Equal(t, "3", formatSpan(contracts.CAGRWindow{SpanYears: 3}))
	assert.Equal(t, "0.50", formatSpan(contracts.CAGRWindow{SpanYears: 0.5}))
}
