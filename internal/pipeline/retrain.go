package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fypy-hub/internal/clustering"
	"fypy-hub/internal/dataset"
	"fypy-hub/internal/domain"
	"fypy-hub/internal/features"
	"fypy-hub/internal/predlog"
	"fypy-hub/internal/sampling"
)

// Crypto-path defaults. Assets below either threshold are dropped from the
// final table; k is fixed and labels are only assigned when all three
// clusters materialize.
const (
	DefaultMinVolume    = 50_000.0
	DefaultMinMarketCap = 1_000_000.0

	cryptoClusters = 3
)

// Retrainer runs the crypto retraining pipeline: extract features per
// asset, cluster, label, filter, sample, then append the result to the
// prediction log under a fresh run id.
type Retrainer struct {
	log       *predlog.Log
	clock     func() time.Time
	newRunID  func() string
	seed      int64
	groupSize int

	minVolume    float64
	minMarketCap float64
}

// NewRetrainer creates a Retrainer appending to the given prediction log.
func NewRetrainer(log *predlog.Log) *Retrainer {
	return &Retrainer{
		log:          log,
		clock:        func() time.Time { return time.Now().UTC() },
		newRunID:     uuid.NewString,
		seed:         0,
		groupSize:    sampling.DefaultGroupSize,
		minVolume:    DefaultMinVolume,
		minMarketCap: DefaultMinMarketCap,
	}
}

// WithClock sets a custom clock function for deterministic output.
func (r *Retrainer) WithClock(clock func() time.Time) *Retrainer {
	r.clock = clock
	return r
}

// WithRunID sets a custom run-id generator for deterministic output.
func (r *Retrainer) WithRunID(fn func() string) *Retrainer {
	r.newRunID = fn
	return r
}

// WithSeed sets the seed used for clustering and group sampling.
func (r *Retrainer) WithSeed(seed int64) *Retrainer {
	r.seed = seed
	return r
}

// WithGroupSize sets the per-label sample cap.
func (r *Retrainer) WithGroupSize(n int) *Retrainer {
	r.groupSize = n
	return r
}

// WithThresholds sets the volume and market cap floors.
func (r *Retrainer) WithThresholds(minVolume, minMarketCap float64) *Retrainer {
	r.minVolume = minVolume
	r.minMarketCap = minMarketCap
	return r
}

// Run executes one retraining pass over the loaded dataset. The run fails
// as a whole when clustering is impossible (fewer than three usable
// assets); per-asset extraction failures only skip that asset.
func (r *Retrainer) Run(ctx context.Context, ds *dataset.Dataset) (*CoinRunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &CoinRunResult{
		RunID:       r.newRunID(),
		GeneratedAt: r.clock(),
	}

	var feats []domain.CoinFeatures
	for i := range ds.Series {
		f, err := features.ExtractCoinFeatures(&ds.Series[i])
		switch {
		case errors.Is(err, features.ErrInsufficientHistory),
			errors.Is(err, features.ErrFilteredOut):
			result.Skips = append(result.Skips, Skip{Asset: ds.Series[i].Asset, Reason: err.Error()})
			continue
		case err != nil:
			return nil, fmt.Errorf("extract features for %s: %w", ds.Series[i].Asset, err)
		}
		feats = append(feats, *f)
	}

	if len(feats) < cryptoClusters {
		return nil, fmt.Errorf("retrain: %d usable assets, need at least %d", len(feats), cryptoClusters)
	}

	matrix := make([][]float64, len(feats))
	changes := make([]float64, len(feats))
	for i, f := range feats {
		matrix[i] = []float64{f.MeanPrice, f.StdPrice, f.Volatility, f.PriceChange}
		changes[i] = f.PriceChange
	}
	normalized := clustering.ZScore(matrix, clustering.SampleStd)

	labels, err := clustering.KMeans(normalized, cryptoClusters, r.seed)
	if err != nil {
		return nil, fmt.Errorf("retrain: %w", err)
	}

	ranked := clustering.RankClustersByChange(labels, changes)
	result.Clusters = len(ranked)
	mapping := clustering.MapLabels(ranked, clustering.CryptoLabels, "")

	preds := make([]domain.CoinPrediction, 0, len(feats))
	for i, f := range feats {
		if reason, ok := r.belowThresholds(&f); ok {
			result.Skips = append(result.Skips, Skip{Asset: f.Asset, Reason: reason})
			continue
		}
		preds = append(preds, domain.CoinPrediction{
			CoinFeatures: f,
			Cluster:      labels[i],
			Label:        mapping[labels[i]],
		})
	}

	result.Table = sampling.Coins(preds, r.groupSize, r.seed)

	records := make([]domain.PredictionRecord, len(result.Table))
	for i, pred := range result.Table {
		records[i] = domain.PredictionRecord{
			CoinPrediction: pred,
			RunID:          result.RunID,
			RecordedAt:     result.GeneratedAt,
		}
	}
	if err := r.log.Append(records); err != nil {
		return nil, fmt.Errorf("retrain: %w", err)
	}

	return result, nil
}

// belowThresholds reports whether the asset fails the volume/market cap
// floor. A missing value fails the check.
func (r *Retrainer) belowThresholds(f *domain.CoinFeatures) (string, bool) {
	if f.TradingVolume == nil || *f.TradingVolume < r.minVolume {
		return "trading volume below threshold", true
	}
	if f.MarketCap == nil || *f.MarketCap < r.minMarketCap {
		return "market cap below threshold", true
	}
	return "", false
}
