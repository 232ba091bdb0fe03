package contracts

import (
	"math"
	"testing"

	"github.com/guregu/null/v5"
	"github.com/stretchr/testify/assert"
)

func TestDiv(t *testing.T) {
	tests := []struct {
		name       string
		num, den   null.Float
		want       null.Float
		wantReason Reason
	}{
		{"plain", null.FloatFrom(10), null.FloatFrom(4), null.FloatFrom(2.5), ReasonNone},
		{"zero denominator", null.FloatFrom(10), null.FloatFrom(0), Missing, ReasonZeroDenominator},
		{"missing numerator", Missing, null.FloatFrom(2), Missing, ReasonMissingInput},
		{"missing denominator", null.FloatFrom(1), Missing, Missing, ReasonMissingInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := Div(tt.num, tt.den)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestNumNormalizesNonFinite(t *testing.T) {
	assert.False(t, Num(math.NaN()).Valid)
	assert.False(t, Num(math.Inf(-1)).Valid)
	assert.Equal(t, null.FloatFrom(3), Num(3))
	assert.False(t, Clean(null.FloatFrom(math.Inf(1))).Valid)
}

func TestAddSub(t *testing.T) {
	assert.Equal(t, null.FloatFrom(7), Add(null.FloatFrom(3), null.FloatFrom(4)))
	assert.Equal(t, null.FloatFrom(-1), Sub(null.FloatFrom(3), null.FloatFrom(4)))
	assert.False(t, Add(Missing, null.FloatFrom(4)).Valid)
	assert.False(t, Sub(null.FloatFrom(3), Missing).Valid)
}

func TestHasFallback(t *testing.T) {
	list := []Fallback{FallbackDefaultGrowthRate, FallbackBasicSharesForDiluted}
	assert.True(t, HasFallback(list, FallbackBasicSharesForDiluted))
	assert.False(t, HasFallback(list, FallbackAnnualEPSForTTM))
	assert.False(t, HasFallback(nil, FallbackAnnualEPSForTTM))
}
