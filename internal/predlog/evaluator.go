package predlog

import (
	"errors"
	"math"
	"time"

	"fypy-hub/internal/domain"
)

// Evaluation outcomes that carry no numbers. Neither is a failure; the
// page layer maps them to informational messages.
var (
	// ErrNothingToEvaluate: the log is empty or holds no stale rows.
	ErrNothingToEvaluate = errors.New("no predictions old enough to evaluate")

	// ErrNoMatches: stale rows exist but no asset resolved in fresh data.
	ErrNoMatches = errors.New("no logged asset found in fresh data")
)

// PriceLookup resolves the latest known actual price for an asset.
type PriceLookup func(asset string) (float64, bool)

// Evaluator compares stale logged predictions against fresh prices.
type Evaluator struct {
	log   *Log
	clock func() time.Time
}

// NewEvaluator creates an evaluator over the given log.
func NewEvaluator(log *Log) *Evaluator {
	return &Evaluator{
		log:   log,
		clock: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock for deterministic tests.
func (e *Evaluator) WithClock(clock func() time.Time) *Evaluator {
	e.clock = clock
	return e
}

// Evaluate selects log rows recorded at or before now-threshold and
// compares each logged price with the asset's latest actual price.
// Assets missing from the fresh data are skipped and reported in
// Skipped; the mean absolute error covers the matched rows only.
// Returns ErrNothingToEvaluate when no row is stale and ErrNoMatches
// when every stale row missed.
func (e *Evaluator) Evaluate(thresholdDays int, lookup PriceLookup) (*domain.EvaluationResult, error) {
	records, err := e.log.Read()
	if err != nil {
		return nil, err
	}

	cutoff := e.clock().Add(-time.Duration(thresholdDays) * 24 * time.Hour)
	var stale []domain.PredictionRecord
	for _, rec := range records {
		if !rec.RecordedAt.After(cutoff) {
			stale = append(stale, rec)
		}
	}
	if len(stale) == 0 {
		return nil, ErrNothingToEvaluate
	}

	result := &domain.EvaluationResult{}
	sumAbs := 0.0
	for _, rec := range stale {
		actual, ok := lookup(rec.Asset)
		if !ok {
			result.Skipped = append(result.Skipped, rec.Asset)
			continue
		}
		diff := actual - rec.LatestPrice
		result.Details = append(result.Details, domain.EvaluationDetail{
			Asset:      rec.Asset,
			Predicted:  rec.LatestPrice,
			Actual:     actual,
			Error:      diff,
			RecordedAt: rec.RecordedAt,
		})
		sumAbs += math.Abs(diff)
	}

	if len(result.Details) == 0 {
		return nil, ErrNoMatches
	}
	result.MAE = sumAbs / float64(len(result.Details))
	return result, nil
}
