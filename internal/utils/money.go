package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatSoles renders an amount in céntimos as "S/ 25.50".
func FormatSoles(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%sS/ %d.%02d", sign, cents/100, cents%100)
}

// ParseSoles parses "S/ 25.50", "25.5" or "25" into céntimos.
func ParseSoles(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.ToLower(s), "s/")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, fmt.Errorf("monto inválido")
	}
	whole, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("monto inválido")
	}
	cents := n * 100
	switch len(frac) {
	case 0:
	case 1:
		d, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("monto inválido")
		}
		cents += d * 10
	case 2:
		d, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("monto inválido")
		}
		cents += d
	default:
		return 0, fmt.Errorf("monto inválido")
	}
	return cents, nil
}
