package contracts

import (
	"math"

	"github.com/guregu/null/v5"
)

// Missing is the explicit missing marker
var Missing = null.Float{}

// Num wraps v, normalizing NaN and ±Inf to missing
func Num(v float64) null.Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing
	}
	return null.FloatFrom(v)
}

// Clean re-normalizes an externally built value
func Clean(v null.Float) null.Float {
	if !v.Valid {
		return Missing
	}
	return Num(v.Float64)
}

// Div divides two nullable values. Missing operand or zero denominator yields missing.
func Div(num, den null.Float) (null.Float, Reason) {
	if !num.Valid || !den.Valid {
		return Missing, ReasonMissingInput
	}
	if den.Float64 == 0 {
		return Missing, ReasonZeroDenominator
	}
	return Num(num.Float64 / den.Float64), ReasonNone
}

// Sub returns a-b, missing if either side is missing
func Sub(a, b null.Float) null.Float {
	if !a.Valid || !b.Valid {
		return Missing
	}
	return Num(a.Float64 - b.Float64)
}

// Add returns a+b, missing if either side is missing
func Add(a, b null.Float) null.Float {
	if !a.Valid || !b.Valid {
		return Missing
	}
	return Num(a.Float64 + b.Float64)
}
