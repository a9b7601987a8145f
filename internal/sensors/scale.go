package sensors

import "math"

// ScaleToDomain maps a converter count in [0, fromMax] onto [0, domainMax],
// rounding to the nearest count. Readings outside the input range
// (negative single-ended noise, over-range) are pinned to the domain ends.
func ScaleToDomain(raw, fromMax, domainMax int) int {
	if fromMax <= 0 || raw <= 0 {
		return 0
	}
	if raw >= fromMax {
		return domainMax
	}
	return int(math.Round(float64(raw) * float64(domainMax) / float64(fromMax)))
}
