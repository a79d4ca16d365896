package matcher

import (
	"math"
	"strconv"
	"strings"
)

// RoundPercent converts a score in [0, 1] to a percentage rounded to two
// decimal places.
func RoundPercent(score float64) float64 {
	return math.Round(score*100*100) / 100
}

// FormatPercent renders a score as a percentage with at most two decimals
// and at least one, e.g. 0.955 -> "95.5", 2/3 -> "66.67", 1 -> "100.0".
func FormatPercent(score float64) string {
	s := strconv.FormatFloat(RoundPercent(score), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
