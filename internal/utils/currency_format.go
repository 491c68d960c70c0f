package utils

import "github.com/shopspring/decimal"

// DefaultCurrencyExponent is the minor-unit exponent of the system's single
// implicit currency (2 means amounts are stored in cents).
const DefaultCurrencyExponent int32 = 2

// FormatMinorUnits renders a minor-unit integer amount as a fixed-point
// decimal string.
// Example: amount 1234 with exponent 2 returns "12.34"
// Example: amount -50 with exponent 2 returns "-0.50"
func FormatMinorUnits(amount int64, exponent int32) string {
	return decimal.New(amount, -exponent).StringFixed(exponent)
}

// FormatAmount renders a minor-unit amount using the default exponent.
func FormatAmount(amount int64) string {
	return FormatMinorUnits(amount, DefaultCurrencyExponent)
}
