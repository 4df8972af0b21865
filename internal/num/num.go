// Package num holds the decimal helpers used for every price and indicator
// computation. Values are github.com/shopspring/decimal numbers; conversion
// to float64 only happens in Float, at the boundary with external consumers.
package num

import (
	"fmt"

	"github.com/shopspring/decimal"

	"cryptoTA/internal/ports"
)

// DivisionPrecision is the number of fractional digits kept by Div.
// Rounding is half away from zero.
const DivisionPrecision int32 = 16

var (
	Zero    = decimal.Zero
	One     = decimal.NewFromInt(1)
	Two     = decimal.NewFromInt(2)
	Hundred = decimal.NewFromInt(100)
)

// Of converts a float64 to a decimal using its shortest decimal representation,
// so Of(11.38) is exactly 11.38.
func Of(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// OfInt converts an integer to a decimal.
func OfInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// Parse reads a decimal from its string form.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing decimal %q: %w", s, err)
	}
	return d, nil
}

// MustParse is Parse for constants; it panics on malformed input.
func MustParse(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Div divides a by b, rounding to DivisionPrecision fractional digits.
func Div(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, fmt.Errorf("dividing %s: %w", a, ports.ErrDivisionByZero)
	}
	return a.DivRound(b, DivisionPrecision), nil
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if b.LessThan(a) {
		return b
	}
	return a
}

// Max returns the greater of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if b.GreaterThan(a) {
		return b
	}
	return a
}

// Float converts d for plotting or printing. It is lossy.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
