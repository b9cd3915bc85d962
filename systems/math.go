// Package systems holds the plant-care physical models: ambient weather,
// soil moisture, photosynthesis, stress, health and reward.
package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// clamp clamps v between minVal and maxVal. NaN maps to minVal.
func clamp(v, minVal, maxVal float64) float64 {
	if v < minVal || math.IsNaN(v) {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps v to the [0, 1] range.
func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// contains reports whether v lies in the closed interval iv.
func contains(iv r1.Interval, v float64) bool {
	return v >= iv.Min && v <= iv.Max
}
