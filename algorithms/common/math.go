package common

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistical functions used across algorithms using gonum for robustness

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// PopulationMeanStdDev returns the mean and the population (ddof=0)
// standard deviation of data
func PopulationMeanStdDev(data []float64) (mean, std float64) {
	if len(data) == 0 {
		return 0.0, 0.0
	}
	return stat.PopMeanStdDev(data, nil)
}

// Max returns the largest value, 0 for an empty slice
func Max(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Max(data)
}

// AllFinite reports whether no element is NaN or ±Inf
func AllFinite(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// NearestIndex returns the index of the element of an ascending slice
// closest to x. Equidistant neighbours resolve to the lower index.
// Returns -1 for an empty slice.
func NearestIndex(sorted []float64, x float64) int {
	n := len(sorted)
	if n == 0 {
		return -1
	}

	i := sort.SearchFloat64s(sorted, x)
	switch {
	case i == 0:
		return 0
	case i == n:
		return n - 1
	}

	if math.Abs(sorted[i-1]-x) <= math.Abs(sorted[i]-x) {
		return i - 1
	}
	return i
}

// Clamp limits value to [min, max]
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
