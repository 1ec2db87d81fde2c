package clustering

import (
	"errors"
	"math"
)

// ErrSingleCluster is returned when silhouette scoring is asked to rate a
// partition with fewer than 2 distinct clusters.
var ErrSingleCluster = errors.New("silhouette requires at least 2 clusters")

// Silhouette returns the mean silhouette coefficient over all points.
// For each point, a is the mean distance to its own cluster's other
// members and b the smallest mean distance to another cluster; the
// coefficient is (b-a)/max(a,b). Points in singleton clusters score 0.
func Silhouette(points [][]float64, labels []int) (float64, error) {
	sizes := make(map[int]int)
	for _, l := range labels {
		sizes[l]++
	}
	if len(sizes) < 2 {
		return 0, ErrSingleCluster
	}

	total := 0.0
	for i, p := range points {
		own := labels[i]
		if sizes[own] == 1 {
			continue // singleton scores 0
		}

		// Mean distance from point i to each cluster.
		sums := make(map[int]float64, len(sizes))
		for j, q := range points {
			if i == j {
				continue
			}
			sums[labels[j]] += dist(p, q)
		}

		a := sums[own] / float64(sizes[own]-1)
		b := math.Inf(1)
		for l, sum := range sums {
			if l == own {
				continue
			}
			if mean := sum / float64(sizes[l]); mean < b {
				b = mean
			}
		}

		if denom := math.Max(a, b); denom > 0 {
			total += (b - a) / denom
		}
	}
	return total / float64(len(points)), nil
}

func dist(a, b []float64) float64 {
	return math.Sqrt(sqDist(a, b))
}
