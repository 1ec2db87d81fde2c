// Package pipeline orchestrates the retraining and index-processing runs:
// feature extraction, clustering, labeling, sampling and logging.
package pipeline

import (
	"time"

	"fypy-hub/internal/domain"
)

// Skip names an asset excluded from a run and why.
type Skip struct {
	Asset  string
	Reason string
}

// CoinRunResult is the output of one crypto retraining run.
type CoinRunResult struct {
	RunID       string
	GeneratedAt time.Time
	Table       []domain.CoinPrediction // final labeled, filtered, sampled table
	Skips       []Skip
	Clusters    int // distinct clusters found
}

// StockRunResult is the output of one equity index run.
type StockRunResult struct {
	GeneratedAt time.Time
	Table       []domain.StockCluster
	Skips       []Skip
	K           int     // winning cluster count
	Silhouette  float64 // score of the winning partition, 0 when no search ran
}
