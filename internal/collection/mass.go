package collection

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const nbsp = "\u00a0"

// ParseMass converts a locale formatted mass such as "12,5 kg" to a number.
// It reports false for anything it cannot read; it never fails a load.
func ParseMass(raw string) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimSpace(strings.ReplaceAll(s, "kg", ""))
	s = strings.ReplaceAll(s, nbsp, " ")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" || !isDecimalLiteral(s) {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseMassValue parses an untyped cell. Numbers pass through unchanged,
// strings go through ParseMass, nil and unreadable values yield nil.
func ParseMassValue(v any) *float64 {
	var (
		f  float64
		ok bool
	)
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		f, ok = x, !math.IsNaN(x) && !math.IsInf(x, 0)
	case float32:
		return ParseMassValue(float64(x))
	case int:
		f, ok = float64(x), true
	case int32:
		f, ok = float64(x), true
	case int64:
		f, ok = float64(x), true
	case uint:
		f, ok = float64(x), true
	case uint32:
		f, ok = float64(x), true
	case uint64:
		f, ok = float64(x), true
	case string:
		f, ok = ParseMass(x)
	default:
		f, ok = ParseMass(fmt.Sprint(x))
	}
	if !ok {
		return nil
	}
	return &f
}

// isDecimalLiteral rejects inputs strconv would accept but a mass column
// never means, such as "inf", hex floats or digit separators.
func isDecimalLiteral(s string) bool {
	digits := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits = true
		case r == '.' || r == '+' || r == '-' || r == 'e':
		default:
			return false
		}
	}
	return digits
}
