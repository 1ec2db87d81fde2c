package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fypy-hub/internal/clustering"
	"fypy-hub/internal/dataset"
	"fypy-hub/internal/domain"
	"fypy-hub/internal/features"
	"fypy-hub/internal/sampling"
)

// Equity-path k-search bounds.
const (
	DefaultKMin = 2
	DefaultKMax = 10
)

// IndexProcessor runs the equity pipeline for one index workbook: extract
// features, find the best cluster count by silhouette score, label and
// sample. Results are returned, not logged.
type IndexProcessor struct {
	clock      func() time.Time
	seed       int64
	groupSize  int
	kMin, kMax int
}

// NewIndexProcessor creates an IndexProcessor with default settings.
func NewIndexProcessor() *IndexProcessor {
	return &IndexProcessor{
		clock:     func() time.Time { return time.Now().UTC() },
		seed:      0,
		groupSize: sampling.DefaultGroupSize,
		kMin:      DefaultKMin,
		kMax:      DefaultKMax,
	}
}

// WithClock sets a custom clock function for deterministic output.
func (p *IndexProcessor) WithClock(clock func() time.Time) *IndexProcessor {
	p.clock = clock
	return p
}

// WithSeed sets the seed used for clustering and group sampling.
func (p *IndexProcessor) WithSeed(seed int64) *IndexProcessor {
	p.seed = seed
	return p
}

// WithGroupSize sets the per-label sample cap.
func (p *IndexProcessor) WithGroupSize(n int) *IndexProcessor {
	p.groupSize = n
	return p
}

// WithKRange sets the k-search bounds.
func (p *IndexProcessor) WithKRange(kMin, kMax int) *IndexProcessor {
	p.kMin = kMin
	p.kMax = kMax
	return p
}

// Run executes one index pass over the loaded dataset. With fewer than two
// usable assets the k-search is skipped and every asset lands in cluster 0.
func (p *IndexProcessor) Run(ctx context.Context, ds *dataset.Dataset) (*StockRunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &StockRunResult{
		GeneratedAt: p.clock(),
	}

	var feats []domain.StockFeatures
	for i := range ds.Series {
		f, err := features.ExtractStockFeatures(&ds.Series[i])
		if errors.Is(err, features.ErrInsufficientHistory) {
			result.Skips = append(result.Skips, Skip{Asset: ds.Series[i].Asset, Reason: err.Error()})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("extract features for %s: %w", ds.Series[i].Asset, err)
		}
		feats = append(feats, *f)
	}

	if len(feats) == 0 {
		return result, nil
	}

	changes := make([]float64, len(feats))
	labels := make([]int, len(feats)) // all cluster 0 unless a search runs
	for i, f := range feats {
		changes[i] = f.PriceChange
	}

	if len(feats) >= 2 {
		matrix := make([][]float64, len(feats))
		for i, f := range feats {
			matrix[i] = []float64{
				f.MeanPrice, f.StdPrice, f.MinPrice, f.MaxPrice,
				f.PriceChange, f.StrikeDiffMean, f.AvgVolume,
			}
		}
		normalized := clustering.ZScore(matrix, clustering.PopulationStd)

		search, err := clustering.SearchBestK(normalized, p.kMin, p.kMax, p.seed)
		if err != nil {
			return nil, fmt.Errorf("index run: %w", err)
		}
		labels = search.Labels
		result.K = search.K
		result.Silhouette = search.Score
	} else {
		result.K = 1
	}

	ranked := clustering.RankClustersByChange(labels, changes)
	mapping := clustering.MapLabels(ranked, clustering.EquityLabels, clustering.EquityOverflowLabel)

	rows := make([]domain.StockCluster, len(feats))
	for i, f := range feats {
		rows[i] = domain.StockCluster{
			StockFeatures: f,
			Cluster:       labels[i],
			Label:         mapping[labels[i]],
		}
	}

	result.Table = sampling.Stocks(rows, p.groupSize, p.seed)
	return result, nil
}
