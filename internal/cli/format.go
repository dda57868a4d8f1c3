package cli

import (
	"fmt"
	"math"
	"strings"
)

// FormatPrice formats an option or underlying price.
func FormatPrice(price float64) string {
	if math.Abs(price) >= 10 {
		return fmt.Sprintf("%.2f", price)
	}
	return fmt.Sprintf("%.4f", price)
}

// FormatStdErr formats a Monte Carlo standard error as "± x".
func FormatStdErr(stdErr float64) string {
	if stdErr == 0 {
		return "-"
	}
	return fmt.Sprintf("± %.4f", stdErr)
}

// FormatDeviation formats a signed difference from a reference price.
func FormatDeviation(value, reference float64) string {
	diff := value - reference
	sign := ""
	if diff > 0 {
		sign = "+"
	}
	if reference == 0 {
		return fmt.Sprintf("%s%.4f", sign, diff)
	}
	return fmt.Sprintf("%s%.4f (%s%.2f%%)", sign, diff, sign, diff/reference*100)
}

// FormatPercent formats a rate or volatility given as a fraction.
func FormatPercent(value float64) string {
	return fmt.Sprintf("%.2f%%", value*100)
}

// Bar returns a horizontal bar of value/max scaled to width cells.
func Bar(value, max float64, width int) string {
	if max <= 0 || value <= 0 || width <= 0 {
		return ""
	}
	filled := int(math.Round(value / max * float64(width)))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled)
}
