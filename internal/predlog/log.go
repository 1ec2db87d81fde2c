// Package predlog persists prediction runs to a flat append-only CSV log
// and evaluates stale predictions against fresh prices.
package predlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"fypy-hub/internal/domain"
)

// Log column order. The header is written once, when the file is created;
// later runs append rows without it. Rows are never mutated or deleted.
var columns = []string{
	"asset",
	"token",
	"contract_address",
	"address_on_curve",
	"platform",
	"market_cap",
	"trading_volume",
	"twitter_followers",
	"age_in_months",
	"mean_price",
	"std_price",
	"min_price",
	"max_price",
	"volatility",
	"price_change",
	"price_change_24h",
	"price_change_7d",
	"price_change_14d",
	"price_change_30d",
	"price",
	"prediction_date",
	"cluster",
	"probability_group",
	"run_id",
	"recorded_at",
}

// timeLayout is the timestamp format used in the log.
const timeLayout = time.RFC3339

// Log is an append-only CSV prediction log.
type Log struct {
	path string
}

// New creates a Log handle for the given file path. The file itself is
// created on first append.
func New(path string) *Log {
	return &Log{path: path}
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}

// Append writes records to the end of the log, creating the file with a
// header row if it does not exist yet.
func (l *Log) Append(records []domain.PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}

	writeHeader := false
	if info, err := os.Stat(l.path); errors.Is(err, fs.ErrNotExist) {
		writeHeader = true
	} else if err != nil {
		return fmt.Errorf("stat prediction log: %w", err)
	} else if info.Size() == 0 {
		writeHeader = true
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open prediction log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(columns); err != nil {
			return fmt.Errorf("write log header: %w", err)
		}
	}
	for i := range records {
		if err := w.Write(recordToRow(&records[i])); err != nil {
			return fmt.Errorf("write log row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush prediction log: %w", err)
	}
	return nil
}

// Read parses the whole log. A missing file reads as an empty log.
func (l *Log) Read() ([]domain.PredictionRecord, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open prediction log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read prediction log: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	records := make([]domain.PredictionRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec, err := rowToRecord(row)
		if err != nil {
			return nil, fmt.Errorf("parse prediction log row: %w", err)
		}
		records = append(records, *rec)
	}
	return records, nil
}

func recordToRow(rec *domain.PredictionRecord) []string {
	return []string{
		rec.Asset,
		strOrEmpty(rec.Token),
		strOrEmpty(rec.ContractAddress),
		boolOrEmpty(rec.AddressOnCurve),
		strOrEmpty(rec.Platform),
		floatOrEmpty(rec.MarketCap),
		floatOrEmpty(rec.TradingVolume),
		floatOrEmpty(rec.TwitterFollowers),
		formatFloat(rec.AgeInMonths),
		formatFloat(rec.MeanPrice),
		formatFloat(rec.StdPrice),
		formatFloat(rec.MinPrice),
		formatFloat(rec.MaxPrice),
		formatFloat(rec.Volatility),
		formatFloat(rec.PriceChange),
		formatFloat(rec.PriceChange24h),
		formatFloat(rec.PriceChange7d),
		formatFloat(rec.PriceChange14d),
		formatFloat(rec.PriceChange30d),
		formatFloat(rec.LatestPrice),
		rec.PredictionDate.Format(timeLayout),
		strconv.Itoa(rec.Cluster),
		rec.Label,
		rec.RunID,
		rec.RecordedAt.Format(timeLayout),
	}
}

func rowToRecord(row []string) (*domain.PredictionRecord, error) {
	if len(row) != len(columns) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(columns), len(row))
	}

	rec := &domain.PredictionRecord{}
	rec.Asset = row[0]
	rec.Token = parseString(row[1])
	rec.ContractAddress = parseString(row[2])
	rec.AddressOnCurve = parseBool(row[3])
	rec.Platform = parseString(row[4])
	rec.MarketCap = parseOptFloat(row[5])
	rec.TradingVolume = parseOptFloat(row[6])
	rec.TwitterFollowers = parseOptFloat(row[7])

	var err error
	fields := []struct {
		dst *float64
		val string
	}{
		{&rec.AgeInMonths, row[8]},
		{&rec.MeanPrice, row[9]},
		{&rec.StdPrice, row[10]},
		{&rec.MinPrice, row[11]},
		{&rec.MaxPrice, row[12]},
		{&rec.Volatility, row[13]},
		{&rec.PriceChange, row[14]},
		{&rec.PriceChange24h, row[15]},
		{&rec.PriceChange7d, row[16]},
		{&rec.PriceChange14d, row[17]},
		{&rec.PriceChange30d, row[18]},
		{&rec.LatestPrice, row[19]},
	}
	for _, f := range fields {
		if *f.dst, err = strconv.ParseFloat(f.val, 64); err != nil {
			return nil, fmt.Errorf("numeric field: %w", err)
		}
	}

	if rec.PredictionDate, err = time.Parse(timeLayout, row[20]); err != nil {
		return nil, fmt.Errorf("prediction_date: %w", err)
	}
	if rec.Cluster, err = strconv.Atoi(row[21]); err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}
	rec.Label = row[22]
	rec.RunID = row[23]
	if rec.RecordedAt, err = time.Parse(timeLayout, row[24]); err != nil {
		return nil, fmt.Errorf("recorded_at: %w", err)
	}
	return rec, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func boolOrEmpty(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func floatOrEmpty(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

func parseString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseBool(s string) *bool {
	if s == "" {
		return nil
	}
	b := s == "true"
	return &b
}

func parseOptFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
