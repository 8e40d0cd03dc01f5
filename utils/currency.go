package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatCurrencyBRL formats an amount in Brazilian Real.
// Example: 1234.5 -> "R$ 1.234,50"
func FormatCurrencyBRL(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	cents := int64(math.Round(amount * 100))
	integerPart := fmt.Sprintf("%d", cents/100)
	decimalPart := fmt.Sprintf("%02d", cents%100)

	// pemisah ribuan
	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	return fmt.Sprintf("%sR$ %s,%s", sign, strings.Join(groups, "."), decimalPart)
}

// RoundMoney rounds to cents.
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}
