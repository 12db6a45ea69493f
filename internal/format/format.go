// Package format renders metric values for tables and terminal reports.
package format

import (
	"fmt"
	"math"
)

// Currency is the symbol prefixed to money values.
const Currency = "€"

// Missing is shown for undefined values.
const Missing = "-"

func undefined(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// K abbreviates values of 1000 or more as thousands ("12.3k") and rounds
// smaller ones to whole numbers.
func K(v float64, currency bool) string {
	if undefined(v) {
		return Missing
	}
	var s string
	if math.Abs(v) >= 1000 {
		s = fmt.Sprintf("%.1fk", v/1000)
	} else {
		s = fmt.Sprintf("%.0f", v)
	}
	if currency {
		return Currency + s
	}
	return s
}

// Pct renders a fraction as a percentage ("0.1234" -> "12.3%" with one decimal).
func Pct(v float64, decimals int) string {
	if undefined(v) {
		return Missing
	}
	return fmt.Sprintf("%.*f%%", decimals, v*100)
}

// Float renders v with a fixed number of decimals.
func Float(v float64, decimals int) string {
	if undefined(v) {
		return Missing
	}
	return fmt.Sprintf("%.*f", decimals, v)
}

// Money renders an amount with cents ("€12.50").
func Money(v float64) string {
	if undefined(v) {
		return Missing
	}
	return fmt.Sprintf("%s%.2f", Currency, v)
}

// Delta renders a signed difference ("+0.42").
func Delta(v float64, decimals int) string {
	if undefined(v) {
		return Missing
	}
	return fmt.Sprintf("%+.*f", decimals, v)
}
