// Package formulas holds the small numeric helpers shared by the analysis modules.
package formulas

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Sum adds up a slice of float64 values
func Sum(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return floats.Sum(data)
}

// Shares converts absolute values into fractions of their total.
// Returns nil when the total is not positive.
func Shares(values []float64) []float64 {
	total := Sum(values)
	if total <= 0 {
		return nil
	}
	shares := make([]float64, len(values))
	copy(shares, values)
	floats.Scale(1/total, shares)
	return shares
}

// HerfindahlIndex returns the sum of squared shares of the given values.
// 1.0 means everything sits in a single bucket; 1/n means an even split.
func HerfindahlIndex(values []float64) float64 {
	shares := Shares(values)
	if shares == nil {
		return 0
	}
	return floats.Dot(shares, shares)
}
