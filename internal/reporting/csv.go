// Package reporting renders run results for download and display.
package reporting

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fypy-hub/internal/domain"
)

var coinsCSVHeader = []string{
	"asset", "token", "contract_address", "address_on_curve", "platform",
	"market_cap", "trading_volume", "twitter_followers", "age_in_months",
	"mean_price", "std_price", "min_price", "max_price", "volatility",
	"price_change", "price_change_24h", "price_change_7d", "price_change_14d", "price_change_30d",
	"price", "prediction_date", "cluster", "probability_group",
}

var stocksCSVHeader = []string{
	"asset", "mean_price", "std_price", "min_price", "max_price",
	"price_change", "strike_diff_mean", "avg_volume", "cluster", "probability_group",
}

// RenderCoinsCSV renders a labeled coin table as CSV. Column order matches
// the prediction log, minus the run bookkeeping columns. Optional fields
// render as empty cells.
func RenderCoinsCSV(rows []domain.CoinPrediction) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	_ = w.Write(coinsCSVHeader)
	for i := range rows {
		r := &rows[i]
		_ = w.Write([]string{
			r.Asset,
			optString(r.Token),
			optString(r.ContractAddress),
			optBool(r.AddressOnCurve),
			optString(r.Platform),
			optFloat(r.MarketCap),
			optFloat(r.TradingVolume),
			optFloat(r.TwitterFollowers),
			fmt.Sprintf("%.2f", r.AgeInMonths),
			fmt.Sprintf("%.6f", r.MeanPrice),
			fmt.Sprintf("%.6f", r.StdPrice),
			fmt.Sprintf("%.6f", r.MinPrice),
			fmt.Sprintf("%.6f", r.MaxPrice),
			fmt.Sprintf("%.6f", r.Volatility),
			fmt.Sprintf("%.6f", r.PriceChange),
			fmt.Sprintf("%.6f", r.PriceChange24h),
			fmt.Sprintf("%.6f", r.PriceChange7d),
			fmt.Sprintf("%.6f", r.PriceChange14d),
			fmt.Sprintf("%.6f", r.PriceChange30d),
			fmt.Sprintf("%.6f", r.LatestPrice),
			r.PredictionDate.Format(time.RFC3339),
			strconv.Itoa(r.Cluster),
			r.Label,
		})
	}
	w.Flush()

	return sb.String()
}

// RenderStocksCSV renders a labeled stock table as CSV.
func RenderStocksCSV(rows []domain.StockCluster) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	_ = w.Write(stocksCSVHeader)
	for i := range rows {
		r := &rows[i]
		_ = w.Write([]string{
			r.Asset,
			fmt.Sprintf("%.6f", r.MeanPrice),
			fmt.Sprintf("%.6f", r.StdPrice),
			fmt.Sprintf("%.6f", r.MinPrice),
			fmt.Sprintf("%.6f", r.MaxPrice),
			fmt.Sprintf("%.6f", r.PriceChange),
			fmt.Sprintf("%.6f", r.StrikeDiffMean),
			fmt.Sprintf("%.6f", r.AvgVolume),
			strconv.Itoa(r.Cluster),
			r.Label,
		})
	}
	w.Flush()

	return sb.String()
}

func optString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *f)
}

func optBool(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
