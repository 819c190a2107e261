package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a typed amount. ok is false for blank, malformed,
// zero or negative input.
func ParseAmount(s string) (amount decimal.Decimal, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// SumLines totals the parseable amounts of lines.
func SumLines(lines []SplitLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if d, ok := ParseAmount(l.Amount); ok {
			total = total.Add(d)
		}
	}
	return total
}
