package merge

import (
	"math"
	"strconv"
	"strings"
)

// ToNumber coerces a raw cell value to float64. Values that cannot be
// parsed become NaN rather than an error; NaN fails every threshold and
// continuity comparison downstream, which routes malformed rows to the
// pass-through stream.
func ToNumber(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// lessNumeric orders float64 values with NaN sorted last, matching the
// source system's sort semantics for unparseable cells.
func lessNumeric(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a < b
}
