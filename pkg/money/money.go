// Package money holds the monetary rules shared by rides and payments.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// refundMultiplier is the ride cost plus the 20% service fee.
var refundMultiplier = decimal.RequireFromString("1.20")

var hundred = decimal.NewFromInt(100)

// FromFloat converts a stored cost into an exact decimal using the shortest
// representation of the float, so 10.1 stays 10.1.
func FromFloat(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount)
}

// Parse reads a user-supplied amount such as "12.50".
func Parse(amount string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return d, nil
}

// Refund is the amount returned to a passenger when a ride is deleted.
func Refund(cost decimal.Decimal) decimal.Decimal {
	return cost.Mul(refundMultiplier)
}

// Format renders an amount with two fraction digits.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// ToMinorUnits converts dollars to cents, truncating any fraction of a cent.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).IntPart()
}
