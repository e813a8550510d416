// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
func Round(val float64) float64 {
	return RoundTo(val, constants.CurrencyPlaces)
}

// RoundTo rounds half away from zero at the given number of decimal places.
// Rounding goes through a decimal so values like 1.005 land on the expected
// cent instead of the nearest binary float.
func RoundTo(val float64, places int32) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0
	}
	return decimal.NewFromFloat(val).Round(places).InexactFloat64()
}

// RoundWhole rounds a count (returns, units) to the nearest whole number.
func RoundWhole(val float64) float64 {
	return RoundTo(val, 0)
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// IsPositive checks if a value is positive (greater than tolerance)
func IsPositive(val float64) bool {
	return val > constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// SafeDivide divides a by b and returns 0 when b is zero.
func SafeDivide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}

// ApplyGrowth grows value by growthPct percent: value × (1 + growthPct/100).
func ApplyGrowth(value, growthPct float64) float64 {
	return value * (1 + growthPct/constants.PercentageMultiplier)
}

// Float returns the value behind p, or 0 when p is nil.
func Float(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Ptr returns a pointer to a copy of v.
func Ptr(v float64) *float64 {
	return &v
}
