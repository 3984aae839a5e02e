package formstate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxMinorUnits bounds stored amounts to integers float64 represents exactly.
const MaxMinorUnits = 1 << 53

// MajorToMinor converts a display amount such as "12.34" into minor currency
// units, rounding to the nearest unit. A comma decimal separator is accepted.
func MajorToMinor(display string) (int64, error) {
	s := strings.TrimSpace(display)
	if s == "" {
		return 0, nil
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", display)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid amount %q", display)
	}
	if f < 0 {
		return 0, fmt.Errorf("amount must not be negative: %q", display)
	}
	minor := math.Round(f * 100)
	if minor > MaxMinorUnits {
		return 0, fmt.Errorf("invalid amount %q: too large", display)
	}
	return int64(minor), nil
}

// MinorToMajor formats minor units for display with two decimals.
func MinorToMajor(minor int64) string {
	sign := ""
	abs := uint64(minor)
	if minor < 0 {
		sign = "-"
		abs = -abs // also correct for math.MinInt64
	}
	return fmt.Sprintf("%s%d.%02d", sign, abs/100, abs%100)
}

// Int coerces a tree value read with Get into an integer. The empty-string
// default and unparsable values yield ok=false.
func Int(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(math.Round(n)), true
	case string:
		if n == "" {
			return 0, false
		}
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}
