// Package clustering implements seeded k-means partitioning, silhouette
// scoring, and the cluster-to-uptrend-label mapping.
package clustering

import (
	"gonum.org/v1/gonum/stat"
)

// StdMode selects the standard deviation estimator used for z-scoring.
// The crypto path normalizes with the sample estimator, the equity path
// with the population estimator; the two paths keep distinct scaling.
type StdMode int

const (
	// SampleStd divides by n-1.
	SampleStd StdMode = iota
	// PopulationStd divides by n.
	PopulationStd
)

// ZScore normalizes each column of the feature matrix to zero mean and
// unit standard deviation. A column with zero variance divides by zero and
// yields NaN values; this is a known edge case and is not silently
// handled.
func ZScore(matrix [][]float64, mode StdMode) [][]float64 {
	if len(matrix) == 0 {
		return nil
	}
	cols := len(matrix[0])
	out := make([][]float64, len(matrix))
	for i := range out {
		out[i] = make([]float64, cols)
	}

	column := make([]float64, len(matrix))
	for c := 0; c < cols; c++ {
		for r := range matrix {
			column[r] = matrix[r][c]
		}
		mean := stat.Mean(column, nil)
		var std float64
		if mode == PopulationStd {
			std = stat.PopStdDev(column, nil)
		} else {
			std = stat.StdDev(column, nil)
		}
		for r := range matrix {
			out[r][c] = (matrix[r][c] - mean) / std
		}
	}
	return out
}
