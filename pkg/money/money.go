// Package money provides currency-safe amount parsing using integer minor
// units. It wraps go-money for ISO-4217 currency metadata and
// shopspring/decimal for precise string-to-cents conversion.
package money

import (
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Supported currency codes (ISO-4217)
const (
	INR = "INR" // Indian Rupee
	SAR = "SAR" // Saudi Riyal
)

// ParseDecimal parses a raw amount string into a decimal value.
// Thousands separators are tolerated; the decimal separator is a dot.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number: %s", raw)
	}
	return d, nil
}

// MinorUnits converts a decimal amount to the currency's minor units
// (paise for INR, halalas for SAR), rounding half away from zero.
func MinorUnits(amount decimal.Decimal, currencyCode string) int64 {
	fraction := 2
	if c := gomoney.GetCurrency(currencyCode); c != nil {
		fraction = c.Fraction
	}
	multiplier := decimal.New(1, int32(fraction))
	return amount.Mul(multiplier).Round(0).IntPart()
}

// FromMinorUnits renders minor units back into a display amount
// using the currency's formatting rules.
func FromMinorUnits(minor int64, currencyCode string) string {
	return gomoney.New(minor, currencyCode).Display()
}
