package valuationconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestLoadDefaultYAMLMatchesDefault(t *testing.T) {
	path := "../../config/valuation/default.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, data, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, Default(), cfg)

	h1, err := Hash(cfg)
	require.NoError(t, err)
	h2, err := Hash(Default())
	require.NoError(t, err)
	assert.Len(t, h1, 64)
	assert.Equal(t, h1, h2, "yaml and built-in defaults must hash identically")
}

func TestHashChangesWithConfig(t *testing.T) {
	a := Default()
	b := Default()
	b.Valuation.PEMultiplier = 1.2

	ha, _ := Hash(a)
	hb, _ := Hash(b)
	assert.NotEqual(t, ha, hb)
}

func TestParseRejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte("splits:\n  factor: [2]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "factor")
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{"unknown canonical tag", func(c *Config) { c.Tags.Aliases[0].Canonical = "Sales" }, "tags.aliases[0].canonical"},
		{"duplicate canonical tag", func(c *Config) { c.Tags.Aliases[1].Canonical = c.Tags.Aliases[0].Canonical }, "tags.aliases[1].canonical"},
		{"unknown balance tag", func(c *Config) { c.Tags.Balance = []string{"Cash"} }, "tags.balance[0]"},
		{"no split factors", func(c *Config) { c.Splits.Factors = nil }, "splits.factors"},
		{"factor not above one", func(c *Config) { c.Splits.Factors = []float64{2, 0.5} }, "splits.factors[1]"},
		{"tolerance too wide", func(c *Config) { c.Splits.Tolerance = 0.3 }, "splits.tolerance"},
		{"organic band overlaps smallest factor", func(c *Config) { c.Splits.OrganicBand = 1.45 }, "splits.organic_band"},
		{"windows unsorted", func(c *Config) { c.Growth.Windows = []int{5, 1} }, "growth.windows"},
		{"duplicate window", func(c *Config) { c.Growth.Windows = []int{1, 1} }, "growth.windows[1]"},
		{"clamp inverted", func(c *Config) { c.Valuation.GrowthClampMin = 30 }, "valuation.growth_clamp_min"},
		{"pe floor", func(c *Config) { c.Valuation.PEFloor = 0 }, "valuation.pe_floor"},
		{"projection years", func(c *Config) { c.Valuation.ProjectionYears = 0 }, "valuation.projection_years"},
		{"discount rates inverted", func(c *Config) { c.Valuation.LowDiscountRate = 0.05 }, "valuation.low_discount_rate"},
		{"owner earnings multiple", func(c *Config) { c.Valuation.OwnerEarningsMultiple = 0 }, "valuation.owner_earnings_multiple"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestSourcesForAndIsBalance(t *testing.T) {
	cfg := Default()

	assert.Equal(t, []string{"CashFlowFromOperations", "NetCashProvidedByUsedInOperatingActivities", "CashFlowsFromUsedInOperatingActivities"},
		cfg.SourcesFor("CashFlowFromOperations"))
	assert.Equal(t, []string{"GrossProfit"}, cfg.SourcesFor("GrossProfit"))

	assert.True(t, cfg.IsBalance("StockholdersEquity"))
	assert.False(t, cfg.IsBalance("Revenues"))
}

func TestSourceNames(t *testing.T) {
	names := Default().SourceNames()

	assert.Equal(t, "EarningsPerShareDiluted", names[0])
	assert.Contains(t, names, "GrossProfit")
	assert.Contains(t, names, "PaymentsToAcquirePropertyPlantAndEquipment")
	assert.Contains(t, names, "ProfitLossAttributableToOwnersOfParent")

	seen := map[string]bool{}
	for _, n := range names {
		assert.False(t, seen[n], "duplicate %s", n)
		seen[n] = true
	}
}
