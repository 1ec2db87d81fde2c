// Package dataset loads multi-sheet XLSX workbooks into asset series.
// Each sheet is one asset; the sheet name is the asset key. A sheet that
// fails to parse is skipped with a recorded warning; the load only fails
// when the file is unreadable or no sheet parses at all.
package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"fypy-hub/internal/domain"
)

// Errors returned by Load.
var (
	// ErrNoData is returned when zero sheets parse successfully.
	ErrNoData = errors.New("no sheets were loaded successfully")
)

// Profile selects the required column set for a workbook.
type Profile int

const (
	// ProfileCrypto requires date and price columns per sheet.
	ProfileCrypto Profile = iota
	// ProfileEquity requires Close and Volume columns per sheet.
	ProfileEquity
)

// Required column names per profile. Header match is exact.
var requiredColumns = map[Profile][]string{
	ProfileCrypto: {"date", "price"},
	ProfileEquity: {"Close", "Volume"},
}

// Optional columns recognized on the crypto profile.
const (
	colToken            = "token"
	colContractAddress  = "contract_address"
	colMarketCap        = "market_cap"
	colVolume           = "volume"
	colPlatform         = "platform"
	colTwitterFollowers = "twitter_followers"
)

// Dataset is one loaded workbook: ordered series plus per-sheet warnings.
type Dataset struct {
	Series   []domain.AssetSeries
	Warnings []string
}

// Get returns the series for an asset key, or nil if absent.
func (d *Dataset) Get(asset string) *domain.AssetSeries {
	for i := range d.Series {
		if d.Series[i].Asset == asset {
			return &d.Series[i]
		}
	}
	return nil
}

// Load reads all sheets of the workbook at path into a Dataset.
func Load(path string, profile Profile) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	ds := &Dataset{}
	for _, sheet := range f.GetSheetList() {
		series, err := parseSheet(f, sheet, profile)
		if err != nil {
			ds.Warnings = append(ds.Warnings, fmt.Sprintf("sheet %s: %v", sheet, err))
			continue
		}
		ds.Series = append(ds.Series, *series)
	}

	if len(ds.Series) == 0 {
		return nil, ErrNoData
	}
	return ds, nil
}

// parseSheet reads one sheet into an AssetSeries.
func parseSheet(f *excelize.File, sheet string, profile Profile) (*domain.AssetSeries, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	header := rows[0]
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range requiredColumns[profile] {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	series := &domain.AssetSeries{Asset: sheet}
	for _, cells := range rows[1:] {
		row := domain.AssetRow{
			Date:             dateAt(cells, cols, "date"),
			Price:            floatAt(cells, cols, "price"),
			Close:            floatAt(cells, cols, "Close"),
			MarketCap:        floatAt(cells, cols, colMarketCap),
			Token:            stringAt(cells, cols, colToken),
			ContractAddress:  stringAt(cells, cols, colContractAddress),
			Platform:         stringAt(cells, cols, colPlatform),
			TwitterFollowers: floatAt(cells, cols, colTwitterFollowers),
		}
		// The two profiles name their volume columns differently.
		if profile == ProfileEquity {
			row.Volume = floatAt(cells, cols, "Volume")
		} else {
			row.Volume = floatAt(cells, cols, colVolume)
		}
		series.Rows = append(series.Rows, row)
	}
	return series, nil
}

// cellAt returns the raw trimmed cell value, or "" when out of range.
func cellAt(cells []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

func stringAt(cells []string, cols map[string]int, name string) *string {
	v := cellAt(cells, cols, name)
	if v == "" {
		return nil
	}
	return &v
}

func floatAt(cells []string, cols map[string]int, name string) *float64 {
	v := cellAt(cells, cols, name)
	if v == "" {
		return nil
	}
	v = strings.ReplaceAll(v, ",", "")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

// Date cell layouts seen in exported workbooks.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"1/2/06 15:04",
	"01/02/2006",
	time.RFC3339,
}

// excelEpoch is day zero of the 1900 date system.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

func dateAt(cells []string, cols map[string]int, name string) *time.Time {
	v := cellAt(cells, cols, name)
	if v == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	// Unformatted date cells surface as serial day numbers.
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		t := excelEpoch.Add(time.Duration(serial * 24 * float64(time.Hour)))
		return &t
	}
	return nil
}
