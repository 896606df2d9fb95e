// Package types provides common type aliases and utilities.
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

// AmountOrZero coerces a nullable amount to Money.
// Source data is not guaranteed clean: NULL and unparseable amounts
// contribute 0 to totals instead of failing the report.
func AmountOrZero(d decimal.NullDecimal) Money {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

// PercentOf returns part as a percentage of total.
// Returns 0 unless total is strictly positive (never NaN or a division error).
func PercentOf(part, total Money) float64 {
	if !total.IsPositive() {
		return 0
	}
	pct, _ := part.Div(total).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}
