package model

import (
	"errors"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrAmountNotNumber   = errors.New("amount is not a number")
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
	ErrAmountPrecision   = errors.New("amount has more than two decimal places")
	ErrAmountTooLarge    = errors.New("amount is too large")
)

var (
	centsPerUnit = decimal.NewFromInt(100)
	maxCents     = decimal.NewFromInt(math.MaxInt64)
)

// maxExponent bounds the exponent of an accepted amount. Any positive
// coefficient times 10^19 already exceeds maxCents in dollars.
const maxExponent = 18

// ParseAmount coerces a submitted amount into a positive decimal with at
// most two fractional digits. An empty string coerces to zero and is
// therefore rejected as not positive.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, ErrAmountNotPositive
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrAmountNotNumber
	}

	if !amount.IsPositive() {
		return decimal.Zero, ErrAmountNotPositive
	}

	// Exponents are checked before any arithmetic: rescaling "1e-20000000"
	// or "1e20000000" allocates a 10^|exp| big.Int.
	if amount.Exponent() > maxExponent {
		return decimal.Zero, ErrAmountTooLarge
	}

	if amount.Exponent() < -2 && !hasTrailingZeros(amount.Coefficient(), int(-2-amount.Exponent())) {
		return decimal.Zero, ErrAmountPrecision
	}

	if amount.Mul(centsPerUnit).GreaterThan(maxCents) {
		return decimal.Zero, ErrAmountTooLarge
	}

	return amount, nil
}

// hasTrailingZeros reports whether the last n decimal digits of the
// positive coefficient c are all zero. n is never larger than the number of
// digits c has, so the power of ten stays as small as the input.
func hasTrailingZeros(c *big.Int, n int) bool {
	if n > len(c.String()) {
		return false
	}

	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	return new(big.Int).Rem(c, pow).Sign() == 0
}

// ToCents converts a ParseAmount result into integer minor units.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(centsPerUnit).IntPart()
}

// FormatCents renders cents as a plain decimal string, e.g. 4250 -> "42.50".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
