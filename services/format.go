package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Display precision. Stored values are never rounded.
const (
	USDPlaces = 4
	RMBPlaces = 2
)

// FormatUSD renders a USD amount with 4 decimals and thousands separators,
// e.g. $1,234.5600.
func FormatUSD(amount decimal.Decimal) string {
	return formatMoney("$", amount, USDPlaces)
}

// FormatRMB renders an RMB amount with 2 decimals and thousands separators,
// e.g. ¥8,825.30.
func FormatRMB(amount decimal.Decimal) string {
	return formatMoney("¥", amount, RMBPlaces)
}

// FormatPercent renders a markup fraction as a percentage: 0.1 -> "10%",
// 0.125 -> "12.5%".
func FormatPercent(fraction decimal.Decimal) string {
	return fraction.Shift(2).Round(2).String() + "%"
}

func formatMoney(symbol string, amount decimal.Decimal, places int32) string {
	negative := amount.IsNegative()
	raw := amount.Abs().StringFixed(places)

	intPart, decPart, _ := strings.Cut(raw, ".")
	result := symbol + applyGrouping(intPart)
	if decPart != "" {
		result += "." + decPart
	}
	if negative {
		result = "-" + result
	}
	return result
}

// applyGrouping inserts a comma every three digits from the right.
func applyGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
