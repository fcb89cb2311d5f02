package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CentPlaces is the number of decimal places money is displayed and stored with.
const CentPlaces int32 = 2

// ParseAmount parses a user-supplied amount. Surrounding whitespace is
// ignored; NaN, infinities, exponents and thousands separators are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}
	if strings.ContainsAny(clean, "eE,_") {
		return decimal.Zero, fmt.Errorf("invalid amount string '%s'", s)
	}
	dec, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount string '%s': %w", s, err)
	}
	return dec, nil
}

// RoundCents rounds half away from zero to two decimal places.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(CentPlaces)
}

// FormatAmount renders an amount with exactly two decimals, e.g. "45.00".
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(CentPlaces)
}

// FormatCurrency renders an amount for display, e.g. "$1,234.50" or "-$3.00".
func FormatCurrency(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	fixed := d.StringFixed(CentPlaces)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s$%s.%s", sign, b.String(), frac)
}

// ClampNonNegative returns d, or zero when d is negative.
func ClampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
