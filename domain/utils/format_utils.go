package utils

import (
	"fmt"

	"github.com/holiman/uint256"
)

// FormatShortNotation formats an amount using short notation (e.g., 50k instead of 50000).
// Amounts beyond uint64 fall back to full decimal.
func FormatShortNotation(amount uint256.Int) string {
	if !amount.IsUint64() {
		return amount.Dec()
	}
	value := amount.Uint64()

	switch {
	case value >= 1_000_000_000_000:
		return fmt.Sprintf("%.2fT", float64(value)/1_000_000_000_000)
	case value >= 1_000_000_000:
		return fmt.Sprintf("%.2fB", float64(value)/1_000_000_000)
	case value >= 1_000_000:
		return fmt.Sprintf("%.2fM", float64(value)/1_000_000)
	case value >= 10_000:
		// No decimal places between 10k and 1M
		return fmt.Sprintf("%dk", value/1_000)
	case value >= 1_000:
		return fmt.Sprintf("%.1fk", float64(value)/1_000)
	default:
		return fmt.Sprintf("%d", value)
	}
}
