package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// Minor-unit exponents per ISO 4217. Everything this marketplace
// settles in today uses 2 decimals; zero-decimal currencies are listed
// so a catalog priced in them converts correctly.
var exponents = map[string]int32{
	"usd": 2,
	"eur": 2,
	"gbp": 2,
	"inr": 2,
	"jpy": 0,
	"krw": 0,
}

func exponent(currency string) int32 {
	if e, ok := exponents[strings.ToLower(currency)]; ok {
		return e
	}
	return 2
}

// ToMinorUnits converts a decimal price into the provider's integer
// minor-unit representation, rounding to the nearest unit. Zero and
// negative amounts are rejected.
func ToMinorUnits(amount decimal.Decimal, currency string) (int64, error) {
	if !amount.IsPositive() {
		return 0, ErrInvalidAmount
	}
	return amount.Shift(exponent(currency)).Round(0).IntPart(), nil
}

// FromMinorUnits is the exact inverse of ToMinorUnits for values
// representable as whole minor units.
func FromMinorUnits(n int64, currency string) decimal.Decimal {
	return decimal.New(n, -exponent(currency))
}
