package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseFloat converts a string to a float64, returning 0 for an empty string
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// ParsePrice parses a form price. Negative, NaN and infinite values are rejected.
func ParsePrice(s string) (float64, error) {
	value, err := ParseFloat(s)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("price must be a non-negative number")
	}
	return value, nil
}

// ToMinorUnits converts a decimal amount (e.g. dollars) to integer minor
// units (cents), rounding half away from zero.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
