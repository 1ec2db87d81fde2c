// Package lookup resolves actual prices from loaded series and archived
// price points.
package lookup

import (
	"errors"
	"time"

	"fypy-hub/internal/domain"
)

// ErrNoPriceData is returned when a series holds no usable price.
var ErrNoPriceData = errors.New("no price data available")

// LatestPrice returns the last non-null price in the series, in row order.
func LatestPrice(rows []domain.AssetRow) (float64, error) {
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].Price != nil {
			return *rows[i].Price, nil
		}
	}
	return 0, ErrNoPriceData
}

// LatestClose returns the last non-null close in the series, in row order.
func LatestClose(rows []domain.AssetRow) (float64, error) {
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].Close != nil {
			return *rows[i].Close, nil
		}
	}
	return 0, ErrNoPriceData
}

// PriceAt returns the price at or before target. Points must be ordered by
// timestamp ASC. If no point lies before target, the first available price
// is returned.
func PriceAt(target time.Time, points []domain.PricePoint) (float64, error) {
	if len(points) == 0 {
		return 0, ErrNoPriceData
	}
	for i := len(points) - 1; i >= 0; i-- {
		if !points[i].Timestamp.After(target) {
			return points[i].Price, nil
		}
	}
	return points[0].Price, nil
}
