package clustering

import "sort"

// Uptrend probability labels. These are ordinal heuristic tags derived
// from relative cluster ranking, not calibrated probabilities.
var (
	// CryptoLabels are assigned on the crypto path (fixed k=3).
	CryptoLabels = []string{"90% Uptrend", "80% Uptrend", "70% Uptrend"}

	// EquityLabels are assigned on the equity path; clusters ranked below
	// the named labels share EquityOverflowLabel.
	EquityLabels = []string{"95% Uptrend", "90% Uptrend", "80% Uptrend"}

	// EquityOverflowLabel tags every cluster past the named labels.
	EquityOverflowLabel = "80% Uptrend (Extra)"
)

// RankClustersByChange returns the distinct cluster ids ordered by mean
// price change descending. Ties keep ascending cluster-id order (stable
// sort), so re-runs with the same input rank identically.
func RankClustersByChange(labels []int, changes []float64) []int {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for i, c := range labels {
		sums[c] += changes[i]
		counts[c]++
	}

	ids := make([]int, 0, len(counts))
	for c := range counts {
		ids = append(ids, c)
	}
	sort.Ints(ids)
	sort.SliceStable(ids, func(i, j int) bool {
		return sums[ids[i]]/float64(counts[ids[i]]) > sums[ids[j]]/float64(counts[ids[j]])
	})
	return ids
}

// MapLabels assigns ordinal names to ranked cluster ids: the i-th ranked
// cluster gets names[i]; clusters beyond the list share overflow. With an
// empty overflow, unranked clusters stay unmapped. Returns an empty map
// when there are fewer clusters than names and no overflow label; the
// crypto path only maps groups when all three exist.
func MapLabels(ranked []int, names []string, overflow string) map[int]string {
	mapping := make(map[int]string, len(ranked))
	if overflow == "" && len(ranked) < len(names) {
		return mapping
	}
	for i, id := range ranked {
		if i < len(names) {
			mapping[id] = names[i]
		} else if overflow != "" {
			mapping[id] = overflow
		}
	}
	return mapping
}
