package synthesis

import "math"

// Mean calculates the arithmetic mean
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// ClampFloat64 clamps a value to the given range
func ClampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// RoundScore rounds a weighted score to the nearest integer and clamps
// it to the 0-100 contract range.
func RoundScore(value float64) int {
	return int(ClampFloat64(math.Round(value), 0, 100))
}
