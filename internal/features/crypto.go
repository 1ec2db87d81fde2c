// Package features computes per-asset feature vectors from loaded series.
package features

import (
	"errors"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"fypy-hub/internal/domain"
)

// Errors classifying why an asset produced no features. Both exclude the
// asset from the run; neither aborts it.
var (
	// ErrInsufficientHistory: fewer than 2 valid rows after dropping nulls.
	ErrInsufficientHistory = errors.New("insufficient history: need at least 2 valid rows")

	// ErrFilteredOut: the momentum/crash filter rejected the asset.
	ErrFilteredOut = errors.New("asset rejected by momentum filter")
)

// daysPerMonth converts an age in days to months.
const daysPerMonth = 30.44

// Percentage-change horizons, in trailing observations.
const (
	horizon24h = 2
	horizon7d  = 7
	horizon14d = 14
	horizon30d = 30
)

// ExtractCoinFeatures computes the crypto-path feature vector for one
// asset. Rows with a null date or price are dropped, the remainder is
// sorted by date. Returns ErrInsufficientHistory with fewer than 2 usable
// rows and ErrFilteredOut when 24h and 7d changes are both negative or the
// 30d change is below -50%.
func ExtractCoinFeatures(series *domain.AssetSeries) (*domain.CoinFeatures, error) {
	type obs struct {
		date  time.Time
		price float64
	}
	var prices []obs
	for _, row := range series.Rows {
		if row.Date == nil || row.Price == nil {
			continue
		}
		prices = append(prices, obs{date: *row.Date, price: *row.Price})
	}
	if len(prices) < 2 {
		return nil, ErrInsufficientHistory
	}
	sort.SliceStable(prices, func(i, j int) bool {
		return prices[i].date.Before(prices[j].date)
	})

	values := make([]float64, len(prices))
	for i, p := range prices {
		values[i] = p.price
	}

	first := prices[0]
	last := prices[len(prices)-1]
	ageInDays := int(last.date.Sub(first.date).Hours() / 24)
	ageInMonths := round2(float64(ageInDays) / daysPerMonth)

	// A horizon with insufficient observations deliberately reports 0%
	// change, which conflates "no data" with "flat" and biases the
	// filter below toward keeping young assets.
	chg24h := trailingChange(values, horizon24h)
	chg7d := trailingChange(values, horizon7d)
	chg14d := trailingChange(values, horizon14d)
	chg30d := trailingChange(values, horizon30d)

	if (chg24h < 0 && chg7d < 0) || chg30d < -50 {
		return nil, ErrFilteredOut
	}

	mean := stat.Mean(values, nil)
	std := stat.PopStdDev(values, nil)
	volatility := 0.0
	if mean != 0 {
		volatility = std / mean
	}
	priceChange := 0.0
	if first.price != 0 {
		priceChange = (last.price - first.price) / first.price
	}

	f := &domain.CoinFeatures{
		Asset:          series.Asset,
		MeanPrice:      mean,
		StdPrice:       std,
		MinPrice:       minOf(values),
		MaxPrice:       maxOf(values),
		Volatility:     volatility,
		PriceChange:    priceChange,
		PriceChange24h: chg24h,
		PriceChange7d:  chg7d,
		PriceChange14d: chg14d,
		PriceChange30d: chg30d,
		AgeInMonths:    ageInMonths,
		LatestPrice:    last.price,
		PredictionDate: last.date,
	}
	carryThrough(f, series.Rows)
	return f, nil
}

// trailingChange returns the percentage change between the last value and
// the value n observations back from the end, or 0 when fewer than n
// observations exist or the reference value is 0.
func trailingChange(values []float64, n int) float64 {
	if len(values) < n {
		return 0
	}
	start := values[len(values)-n]
	end := values[len(values)-1]
	if start == 0 {
		return 0
	}
	return (end - start) / start * 100
}

// carryThrough copies optional metadata columns into the feature vector:
// identity fields from the first row that has them, market cap and volume
// from the last.
func carryThrough(f *domain.CoinFeatures, rows []domain.AssetRow) {
	for _, row := range rows {
		if f.Token == nil && row.Token != nil {
			f.Token = row.Token
		}
		if f.ContractAddress == nil && row.ContractAddress != nil {
			f.ContractAddress = row.ContractAddress
		}
		if f.Platform == nil && row.Platform != nil {
			f.Platform = row.Platform
		}
		if f.TwitterFollowers == nil && row.TwitterFollowers != nil {
			f.TwitterFollowers = row.TwitterFollowers
		}
	}
	for i := len(rows) - 1; i >= 0; i-- {
		if f.MarketCap == nil && rows[i].MarketCap != nil {
			f.MarketCap = rows[i].MarketCap
		}
		if f.TradingVolume == nil && rows[i].Volume != nil {
			f.TradingVolume = rows[i].Volume
		}
		if f.MarketCap != nil && f.TradingVolume != nil {
			break
		}
	}
	if f.ContractAddress != nil {
		if onCurve, ok := checkAddress(*f.ContractAddress); ok {
			f.AddressOnCurve = &onCurve
		}
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
