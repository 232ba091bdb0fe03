package s0_data

import (
	"testing"
	"time"

	"github.com/guregu/null/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fairvalue/internal/contracts"
)

func TestAssess(t *testing.T) {
	mk := func(year int, values map[contracts.Tag]null.Float) contracts.Period {
		return contracts.NewPeriod(contracts.AnnualKey(year), contracts.PeriodAnnual, year, time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC), values)
	}
	table, err := contracts.NewFundamentalsTable("X", []contracts.Period{
		mk(2020, map[contracts.Tag]null.Float{contracts.TagRevenues: null.FloatFrom(1), contracts.TagShares: null.FloatFrom(10)}),
		mk(2021, map[contracts.Tag]null.Float{contracts.TagRevenues: null.FloatFrom(2)}),
	})
	require.NoError(t, err)

	report := Assess(table)
	assert.Equal(t, 2, report.Periods)
	assert.Equal(t, 1.0, report.Coverage[contracts.TagRevenues])
	assert.Equal(t, 0.5, report.Coverage[contracts.TagShares])
	assert.Contains(t, report.Missing, contracts.TagNetIncome)
	assert.NotContains(t, report.Missing, contracts.TagShares)
	assert.InDelta(t, 1.5/float64(len(RatioInputs)), report.CoverageRate(), 1e-9)
}

func TestAssessEmpty(t *testing.T) {
	report := Assess(contracts.FundamentalsTable{})
	assert.Equal(t, 0, report.Periods)
	assert.Len(t, report.Missing, len(RatioInputs))
	assert.Equal(t, 0.0, report.CoverageRate())
}
