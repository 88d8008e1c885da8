// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/fitrack/internal/finance"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatBytes formats a byte count, e.g. 1536 -> "1.5 KB".
func FormatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// Money formats an amount with two decimals.
func Money(v float64, cur finance.Currency) string {
	return finance.FormatMoney(v, 2, cur)
}

// Rate formats a small per-second amount; two decimals would round it to zero.
func Rate(v float64, cur finance.Currency) string {
	return finance.FormatMoney(v, 6, cur)
}

// FormatDelta formats the change between two amounts with an explicit sign.
func FormatDelta(current, previous float64, cur finance.Currency) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + Money(delta, cur)
	}
	return "-" + Money(-delta, cur)
}
