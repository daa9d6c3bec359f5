// Package stats wraps the gonum statistics routines used across the
// simulation and falsification packages, with empty-input guards.
package stats

import (
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean, or 0 for empty input.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev returns the population standard deviation, or 0 for inputs
// with fewer than two samples.
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.PopStdDev(data, nil)
}

// Correlation returns the Pearson correlation coefficient between two
// equal-length datasets, or 0 when undefined.
func Correlation(x, y []float64) float64 {
	if len(x) == 0 || len(y) == 0 || len(x) != len(y) {
		return 0
	}
	return stat.Correlation(x, y, nil)
}

// Gradient returns the discrete gradient of data using central
// differences in the interior and one-sided differences at the ends.
func Gradient(data []float64) []float64 {
	n := len(data)
	g := make([]float64, n)
	if n < 2 {
		return g
	}
	g[0] = data[1] - data[0]
	g[n-1] = data[n-1] - data[n-2]
	for i := 1; i < n-1; i++ {
		g[i] = (data[i+1] - data[i-1]) / 2
	}
	return g
}

// Max returns the maximum value, or 0 for empty input.
func Max(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := data[0]
	for _, v := range data[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
