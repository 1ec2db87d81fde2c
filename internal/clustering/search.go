package clustering

import (
	"fmt"
	"sync"
)

// SearchResult is the winning partition of a silhouette k-search.
type SearchResult struct {
	K      int
	Score  float64
	Labels []int
}

// SearchBestK clusters points for every k in [kMin, kMax], scores each
// partition by mean silhouette coefficient, and returns the best. The
// candidates are independent, so they run in parallel with a final
// max-reduction; ties go to the smaller k so results stay reproducible.
// Candidate k values the input cannot support (silhouette needs at least
// one cluster of size >= 2 and k <= n-1) are not attempted.
func SearchBestK(points [][]float64, kMin, kMax int, seed int64) (*SearchResult, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points for a k-search", ErrTooFewPoints)
	}
	if limit := len(points) - 1; kMax > limit {
		kMax = limit
	}
	if kMax < kMin {
		// Degenerate input (e.g. 2 points): a single feasible partition.
		kMax = kMin
	}

	type candidate struct {
		result SearchResult
		err    error
	}
	candidates := make([]candidate, kMax-kMin+1)

	var wg sync.WaitGroup
	for k := kMin; k <= kMax; k++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			c := &candidates[k-kMin]
			labels, err := KMeans(points, k, seed)
			if err != nil {
				c.err = err
				return
			}
			score, err := Silhouette(points, labels)
			if err != nil {
				c.err = err
				return
			}
			c.result = SearchResult{K: k, Score: score, Labels: labels}
		}(k)
	}
	wg.Wait()

	var best *SearchResult
	var firstErr error
	for i := range candidates {
		c := &candidates[i]
		if c.err != nil {
			if firstErr == nil {
				firstErr = c.err
			}
			continue
		}
		if best == nil || c.result.Score > best.Score {
			best = &c.result
		}
	}
	if best == nil {
		return nil, fmt.Errorf("k-search produced no partition: %w", firstErr)
	}
	return best, nil
}
