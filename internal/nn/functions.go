package nn

import "math"

// Sat clamps value to [min, max].
func Sat(value, max, min float64) float64 {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}

// Finite reports whether value is neither NaN nor infinite.
func Finite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
