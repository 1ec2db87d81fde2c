package domain

import "time"

// PredictionRecord is one row of the append-only prediction log: a
// CoinPrediction snapshot stamped with the run that produced it.
// Log rows are never mutated or deleted.
type PredictionRecord struct {
	CoinPrediction
	RunID      string
	RecordedAt time.Time
}

// EvaluationDetail is the outcome for one stale prediction: the signed
// error between the latest actual price and the logged price.
type EvaluationDetail struct {
	Asset      string
	Predicted  float64
	Actual     float64
	Error      float64 // Actual - Predicted
	RecordedAt time.Time
}

// EvaluationResult aggregates evaluation over all stale log rows.
// Skipped lists assets that could not be resolved in the fresh data;
// those are non-fatal lookup misses.
type EvaluationResult struct {
	Details []EvaluationDetail
	MAE     float64
	Skipped []string
}

// Evaluated returns the number of successfully matched rows.
func (r *EvaluationResult) Evaluated() int {
	return len(r.Details)
}
