// Package types provides money and quantity arithmetic for the procurement core.
// All monetary math uses decimal.Decimal; float64 is never used for amounts.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// LineTotal computes quantity * unit price rounded to 2 decimal places.
// Line totals are always recomputed server-side, never trusted from input.
func LineTotal(quantity, unitPrice decimal.Decimal) Money {
	return quantity.Mul(unitPrice).Round(2)
}

// ReceivedPercentage computes received/total * 100 rounded to 2 places.
// The second return value is false when total is zero, in which case the
// percentage is undefined and callers must report a consistency error
// instead of dividing.
func ReceivedPercentage(received, total Money) (decimal.Decimal, bool) {
	if total.IsZero() {
		return decimal.Zero, false
	}
	hundred := decimal.NewFromInt(100)
	return received.Div(total).Mul(hundred).Round(2), true
}

// SumLineTotals adds up a slice of line totals, rounded to 2 places.
func SumLineTotals(totals []Money) Money {
	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(t)
	}
	return sum.Round(2)
}
