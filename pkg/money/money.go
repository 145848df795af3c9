// Package money holds the two-decimal arithmetic shared by pricing, coupons and reports.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Tolerance is the largest difference still treated as equal when comparing client totals.
var Tolerance = decimal.New(1, -2)

// Round2 rounds half away from zero to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FromFloat converts a JSON number into a decimal rounded to cents.
func FromFloat(f float64) decimal.Decimal {
	return Round2(decimal.NewFromFloat(f))
}

// Float exposes a decimal as a JSON-friendly float.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// ToCents converts a decimal amount into minor units.
func ToCents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// FromCents converts minor units into a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Percent returns base * pct / 100 without rounding.
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}

// Growth returns (current-previous)/previous*100 rounded to cents, or zero when previous is zero.
func Growth(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return Round2(current.Sub(previous).Div(previous).Mul(hundred))
}

// ApproxEqual compares two amounts within Tolerance.
func ApproxEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// SafeDiv divides, returning zero for a zero divisor.
func SafeDiv(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}
