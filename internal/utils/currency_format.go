package utils

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatFCFA renders an integer FCFA amount with thousands separators for
// display, e.g. 1250500 -> "1 250 500 FCFA". FCFA has no fractional units.
func FormatFCFA(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}

	out := b.String()
	if negative {
		out = "-" + out
	}
	return out + " FCFA"
}

// FormatAverageFCFA renders a derived decimal amount (e.g. an average) with
// two decimal places.
func FormatAverageFCFA(amount decimal.Decimal) string {
	return amount.Round(2).String() + " FCFA"
}
