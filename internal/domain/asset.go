// Package domain defines core data structures shared across the hub.
package domain

import "time"

// AssetRow is one observation row for an asset, as read from a workbook
// sheet. Optional columns are pointers; a missing column yields nil, not an
// error.
type AssetRow struct {
	Date             *time.Time // crypto profile
	Price            *float64   // crypto profile
	Close            *float64   // equity profile
	Volume           *float64
	MarketCap        *float64
	Token            *string
	ContractAddress  *string
	Platform         *string
	TwitterFollowers *float64
}

// AssetSeries holds all rows for one asset, in sheet order.
// Rows are immutable once loaded.
type AssetSeries struct {
	Asset string // sheet name, the asset key
	Rows  []AssetRow
}

// PricePoint is one archived price observation, used by the price history
// store and the live ticker.
type PricePoint struct {
	Asset     string
	Timestamp time.Time
	Price     float64
	Volume    *float64
}
