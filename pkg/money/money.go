// Package money provides currency amount helpers for invoice arithmetic.
// Amounts are decimal values carried as float64 and rounded to two
// decimal places at well-defined points only, never per intermediate step.
package money

import "math"

// Round2 rounds an amount half-up to two decimal places.
func Round2(amount float64) float64 {
	return math.Floor(amount*100+0.5) / 100
}

// LineTotal computes a single line amount at full precision and rounds once.
func LineTotal(quantity, unitPrice float64) float64 {
	return Round2(quantity * unitPrice)
}

// Tax computes the tax portion for a subtotal and a percentage rate.
// A zero or negative rate yields zero.
func Tax(subtotal, ratePercent float64) float64 {
	if ratePercent <= 0 || subtotal <= 0 {
		return 0
	}
	return Round2(subtotal * ratePercent / 100)
}
