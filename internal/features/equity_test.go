package features

import (
	"errors"
	"math"
	"testing"

	"fypy-hub/internal/domain"
)

func stockSeries(asset string, closes, volumes []float64) *domain.AssetSeries {
	s := &domain.AssetSeries{Asset: asset}
	for i := range closes {
		c := closes[i]
		row := domain.AssetRow{Close: &c}
		if i < len(volumes) {
			v := volumes[i]
			row.Volume = &v
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

func TestExtractStockFeatures_InsufficientHistory(t *testing.T) {
	_, err := ExtractStockFeatures(stockSeries("X", []float64{100}, nil))
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestExtractStockFeatures_StrikeAndVolume(t *testing.T) {
	closes := []float64{100, 110, 120}
	volumes := []float64{1000, 2000, 3000}

	f, err := ExtractStockFeatures(stockSeries("INFY", closes, volumes))
	if err != nil {
		t.Fatalf("ExtractStockFeatures failed: %v", err)
	}

	// Strike is the first close; mean deviation = mean(closes) - 100 = 10.
	if math.Abs(f.StrikeDiffMean-10) > 1e-12 {
		t.Errorf("strike diff mean: expected 10, got %f", f.StrikeDiffMean)
	}
	if f.AvgVolume != 2000 {
		t.Errorf("avg volume: expected 2000, got %f", f.AvgVolume)
	}
	if f.MeanPrice != 110 {
		t.Errorf("mean: expected 110, got %f", f.MeanPrice)
	}
	if f.MinPrice != 100 || f.MaxPrice != 120 {
		t.Errorf("min/max: got %f/%f", f.MinPrice, f.MaxPrice)
	}
	if math.Abs(f.PriceChange-0.2) > 1e-12 {
		t.Errorf("price change: expected 0.2, got %f", f.PriceChange)
	}
}

func TestExtractStockFeatures_SkipsNullCloses(t *testing.T) {
	s := &domain.AssetSeries{Asset: "GAPPY", Rows: []domain.AssetRow{
		{Close: fp(100)},
		{},
		{Close: fp(150)},
	}}

	f, err := ExtractStockFeatures(s)
	if err != nil {
		t.Fatalf("ExtractStockFeatures failed: %v", err)
	}
	if f.MeanPrice != 125 {
		t.Errorf("expected mean 125 over non-null closes, got %f", f.MeanPrice)
	}
}
