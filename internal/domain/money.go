package domain

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of fractional digits kept for every amount.
const MoneyPlaces = 2

const (
	// MaxPriceCents caps a menu price at 100000.00.
	MaxPriceCents = 10_000_000
	// MaxLineQuantity caps the units of one item in a cart.
	MaxLineQuantity = 1000
)

// Round2 rounds half away from zero to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// ToCents converts an amount to the integer cents stored in the database.
// Amounts must be within int64 cents; callers validate input with ValidPrice.
func ToCents(d decimal.Decimal) int64 {
	return Round2(d).Shift(MoneyPlaces).IntPart()
}

func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -MoneyPlaces)
}

// ValidPrice reports whether d is a positive whole number of cents no greater than MaxPriceCents.
func ValidPrice(d decimal.Decimal) bool {
	if !d.IsPositive() || !d.Equal(Round2(d)) {
		return false
	}
	return d.LessThanOrEqual(FromCents(MaxPriceCents)) && FromCents(ToCents(d)).Equal(d)
}

// ValidQuantity reports whether q units fit on one cart line.
func ValidQuantity(q int) bool {
	return q > 0 && q <= MaxLineQuantity
}
