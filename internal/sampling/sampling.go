// Package sampling caps each probability group at a fixed number of
// assets, sampled reproducibly.
package sampling

import (
	"math/rand"
	"sort"

	"fypy-hub/internal/domain"
)

// DefaultGroupSize is the per-label cap.
const DefaultGroupSize = 20

// Coins selects up to size assets per probability group. Groups with at
// least size members are sampled uniformly without replacement with a
// fresh RNG seeded per group, so a given (input, seed) always yields the
// same selection; smaller groups pass through whole, in existing order.
// Rows with an empty label are dropped. Output groups are ordered by
// label ascending.
func Coins(rows []domain.CoinPrediction, size int, seed int64) []domain.CoinPrediction {
	groups := make(map[string][]int)
	for i, row := range rows {
		if row.Label == "" {
			continue
		}
		groups[row.Label] = append(groups[row.Label], i)
	}

	var out []domain.CoinPrediction
	for _, label := range sortedKeys(groups) {
		for _, idx := range pick(groups[label], size, seed) {
			out = append(out, rows[idx])
		}
	}
	return out
}

// Stocks is the equity-path counterpart of Coins.
func Stocks(rows []domain.StockCluster, size int, seed int64) []domain.StockCluster {
	groups := make(map[string][]int)
	for i, row := range rows {
		if row.Label == "" {
			continue
		}
		groups[row.Label] = append(groups[row.Label], i)
	}

	var out []domain.StockCluster
	for _, label := range sortedKeys(groups) {
		for _, idx := range pick(groups[label], size, seed) {
			out = append(out, rows[idx])
		}
	}
	return out
}

// pick returns the sampled member indices for one group.
func pick(members []int, size int, seed int64) []int {
	if len(members) < size {
		return members
	}
	rng := rand.New(rand.NewSource(seed))
	selected := make([]int, 0, size)
	for _, p := range rng.Perm(len(members))[:size] {
		selected = append(selected, members[p])
	}
	return selected
}

func sortedKeys(groups map[string][]int) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
