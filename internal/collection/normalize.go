package collection

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var chipSeparators = strings.NewReplacer(" ", "", "-", "")

// NormalizeChip canonicalizes a chip identifier so that spellings differing
// only in surrounding whitespace, interior spaces or hyphens compare equal.
// Case is preserved. The function is idempotent.
func NormalizeChip(raw string) string {
	s := strings.TrimSpace(raw)
	s = chipSeparators.Replace(s)
	// Removing separators can expose whitespace such as tabs at the edges.
	return strings.TrimSpace(s)
}

// NormalizeChipValue normalizes an untyped cell. nil yields "".
func NormalizeChipValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return NormalizeChip(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ""
		}
		return NormalizeChip(strconv.FormatFloat(x, 'f', -1, 64))
	case float32:
		return NormalizeChipValue(float64(x))
	default:
		return NormalizeChip(fmt.Sprint(x))
	}
}
