package clustering

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// k-means loop bounds, matching the common library defaults.
const (
	kmeansRestarts = 10
	kmeansMaxIter  = 300
)

// Errors returned by KMeans.
var (
	ErrNoPoints      = errors.New("no points to cluster")
	ErrTooFewPoints  = errors.New("fewer points than clusters")
	ErrInvalidK      = errors.New("k must be at least 1")
	ErrRaggedMatrix  = errors.New("points have inconsistent dimensions")
)

// KMeans partitions points into k clusters and returns one cluster id per
// point. Uses k-means++ seeding with a deterministic RNG derived from
// seed; the best of several restarts (lowest inertia) wins, so results are
// reproducible for a given (points, k, seed).
func KMeans(points [][]float64, k int, seed int64) ([]int, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	if len(points) < k {
		return nil, fmt.Errorf("%w: %d points, k=%d", ErrTooFewPoints, len(points), k)
	}
	dim := len(points[0])
	for _, p := range points {
		if len(p) != dim {
			return nil, ErrRaggedMatrix
		}
	}

	rng := rand.New(rand.NewSource(seed))

	bestInertia := math.Inf(1)
	var bestLabels []int
	for restart := 0; restart < kmeansRestarts; restart++ {
		labels, inertia := runLloyd(points, k, rng)
		if inertia < bestInertia {
			bestInertia = inertia
			bestLabels = labels
		}
	}
	return bestLabels, nil
}

// runLloyd performs one seeded k-means run and returns labels and inertia.
func runLloyd(points [][]float64, k int, rng *rand.Rand) ([]int, float64) {
	centers := plusPlusInit(points, k, rng)
	labels := make([]int, len(points))

	for iter := 0; iter < kmeansMaxIter; iter++ {
		// Assignment step.
		changed := false
		for i, p := range points {
			best := 0
			bestDist := sqDist(p, centers[0])
			for c := 1; c < k; c++ {
				if d := sqDist(p, centers[c]); d < bestDist {
					bestDist = d
					best = c
				}
			}
			if labels[i] != best {
				changed = true
			}
			labels[i] = best
		}
		if iter > 0 && !changed {
			break
		}

		// Update step.
		dim := len(points[0])
		counts := make([]int, k)
		for c := range centers {
			centers[c] = make([]float64, dim)
		}
		for i, p := range points {
			c := labels[i]
			counts[c]++
			for d, v := range p {
				centers[c][d] += v
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				// Revive an empty cluster at the point farthest from its center.
				centers[c] = append([]float64(nil), farthestPoint(points, centers, labels)...)
				continue
			}
			for d := range centers[c] {
				centers[c][d] /= float64(counts[c])
			}
		}
	}

	inertia := 0.0
	for i, p := range points {
		inertia += sqDist(p, centers[labels[i]])
	}
	return labels, inertia
}

// plusPlusInit selects k initial centers with k-means++ weighting.
func plusPlusInit(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, k)
	centers = append(centers, append([]float64(nil), points[rng.Intn(len(points))]...))

	dists := make([]float64, len(points))
	for len(centers) < k {
		total := 0.0
		for i, p := range points {
			d := sqDist(p, centers[0])
			for _, c := range centers[1:] {
				if dc := sqDist(p, c); dc < d {
					d = dc
				}
			}
			dists[i] = d
			total += d
		}

		var next int
		if total > 0 {
			target := rng.Float64() * total
			acc := 0.0
			for i, d := range dists {
				acc += d
				if acc >= target {
					next = i
					break
				}
			}
		} else {
			// All points coincide with existing centers.
			next = rng.Intn(len(points))
		}
		centers = append(centers, append([]float64(nil), points[next]...))
	}
	return centers
}

// farthestPoint returns the point with the largest distance to its
// assigned center.
func farthestPoint(points [][]float64, centers [][]float64, labels []int) []float64 {
	worst := 0
	worstDist := -1.0
	for i, p := range points {
		if d := sqDist(p, centers[labels[i]]); d > worstDist {
			worstDist = d
			worst = i
		}
	}
	return points[worst]
}

func sqDist(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
