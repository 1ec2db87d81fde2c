package features

import (
	"gonum.org/v1/gonum/stat"

	"fypy-hub/internal/domain"
)

// ExtractStockFeatures computes the equity-path feature vector for one
// asset from its close-price and volume series. The first close acts as a
// strike price reference. There is no momentum filter and no trailing
// horizon step on this path.
func ExtractStockFeatures(series *domain.AssetSeries) (*domain.StockFeatures, error) {
	var closes, volumes []float64
	for _, row := range series.Rows {
		if row.Close != nil {
			closes = append(closes, *row.Close)
		}
		if row.Volume != nil {
			volumes = append(volumes, *row.Volume)
		}
	}
	if len(closes) < 2 {
		return nil, ErrInsufficientHistory
	}

	strike := closes[0]
	diffs := make([]float64, len(closes))
	for i, c := range closes {
		diffs[i] = c - strike
	}

	priceChange := 0.0
	if closes[0] != 0 {
		priceChange = (closes[len(closes)-1] - closes[0]) / closes[0]
	}

	return &domain.StockFeatures{
		Asset:          series.Asset,
		MeanPrice:      stat.Mean(closes, nil),
		StdPrice:       stat.PopStdDev(closes, nil),
		MinPrice:       minOf(closes),
		MaxPrice:       maxOf(closes),
		PriceChange:    priceChange,
		StrikeDiffMean: stat.Mean(diffs, nil),
		AvgVolume:      stat.Mean(volumes, nil),
	}, nil
}
