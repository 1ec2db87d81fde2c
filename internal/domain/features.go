package domain

import "time"

// CoinFeatures is the per-asset feature vector for the crypto path.
// Percentage changes are in percent; PriceChange is the overall
// (last-first)/first fraction. Optional pass-through columns are pointers.
type CoinFeatures struct {
	Asset string

	MeanPrice  float64
	StdPrice   float64 // population stddev
	MinPrice   float64
	MaxPrice   float64
	Volatility float64 // StdPrice / MeanPrice, 0 when mean is 0

	PriceChange    float64 // (last - first) / first, 0 when first is 0
	PriceChange24h float64 // percent over last 2 observations
	PriceChange7d  float64 // percent over last 7 observations
	PriceChange14d float64
	PriceChange30d float64

	AgeInMonths    float64 // days(last-first)/30.44, rounded to 2 decimals
	LatestPrice    float64
	PredictionDate time.Time

	Token            *string
	ContractAddress  *string
	AddressOnCurve   *bool // set when ContractAddress parses as a 32-byte key
	MarketCap        *float64
	TradingVolume    *float64
	Platform         *string
	TwitterFollowers *float64
}

// StockFeatures is the per-asset feature vector for the equity path.
// Computed from close-price and volume series only.
type StockFeatures struct {
	Asset string

	MeanPrice   float64
	StdPrice    float64 // population stddev
	MinPrice    float64
	MaxPrice    float64
	PriceChange float64 // (last - first) / first, 0 when first is 0

	StrikeDiffMean float64 // mean deviation from the first close
	AvgVolume      float64
}

// CoinPrediction is a CoinFeatures row with its cluster assignment.
// Label is empty when the cluster could not be mapped to a probability
// group (fewer clusters than labels).
type CoinPrediction struct {
	CoinFeatures
	Cluster int
	Label   string
}

// StockCluster is a StockFeatures row with its cluster assignment.
type StockCluster struct {
	StockFeatures
	Cluster int
	Label   string
}
