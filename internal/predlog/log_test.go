package predlog

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fypy-hub/internal/domain"
)

func sp(v string) *string   { return &v }
func fp(v float64) *float64 { return &v }

func record(asset string, price float64, at time.Time) domain.PredictionRecord {
	return domain.PredictionRecord{
		CoinPrediction: domain.CoinPrediction{
			CoinFeatures: domain.CoinFeatures{
				Asset:          asset,
				MeanPrice:      price,
				LatestPrice:    price,
				PredictionDate: at,
			},
			Cluster: 1,
			Label:   "90% Uptrend",
		},
		RunID:      "run-1",
		RecordedAt: at,
	}
}

func TestLog_AppendWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions_log.csv")
	log := New(path)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := log.Append([]domain.PredictionRecord{record("A", 10, at)}); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if err := log.Append([]domain.PredictionRecord{record("B", 20, at)}); err != nil {
		t.Fatalf("second append failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "asset,") {
		t.Errorf("first line should be the header, got %q", lines[0])
	}
	if strings.HasPrefix(lines[2], "asset,") {
		t.Error("second append must not repeat the header")
	}
}

func TestLog_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions_log.csv")
	log := New(path)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	rec := record("PEPE", 1.25, at)
	rec.Token = sp("pepe")
	rec.MarketCap = fp(2_000_000)
	rec.Volatility = 0.35

	if err := log.Append([]domain.PredictionRecord{rec}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	records, err := log.Read()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	got := records[0]
	if got.Asset != "PEPE" || got.LatestPrice != 1.25 {
		t.Errorf("asset/price mismatch: %+v", got)
	}
	if got.Token == nil || *got.Token != "pepe" {
		t.Errorf("token: got %v", got.Token)
	}
	if got.MarketCap == nil || *got.MarketCap != 2_000_000 {
		t.Errorf("market cap: got %v", got.MarketCap)
	}
	if got.ContractAddress != nil {
		t.Error("empty optional should read back as nil")
	}
	if !got.RecordedAt.Equal(at) {
		t.Errorf("recorded at: got %v", got.RecordedAt)
	}
	if got.Label != "90% Uptrend" || got.Cluster != 1 {
		t.Errorf("label/cluster: %q/%d", got.Label, got.Cluster)
	}
}

func TestLog_ReadMissingFile(t *testing.T) {
	log := New(filepath.Join(t.TempDir(), "absent.csv"))

	records, err := log.Read()
	if err != nil {
		t.Fatalf("missing file should read as empty, got %v", err)
	}
	if records != nil {
		t.Errorf("expected nil records, got %v", records)
	}
}

func TestEvaluate_MAE(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions_log.csv")
	log := New(path)
	t0 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	err := log.Append([]domain.PredictionRecord{
		record("A", 10, t0),
		record("B", 20, t0),
		record("C", 30, t0),
	})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	fresh := map[string]float64{"A": 12, "B": 18, "C": 33}
	eval := NewEvaluator(log).WithClock(func() time.Time { return t0.AddDate(0, 0, 4) })

	result, err := eval.Evaluate(3, func(asset string) (float64, bool) {
		price, ok := fresh[asset]
		return price, ok
	})
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	if result.Evaluated() != 3 {
		t.Fatalf("expected 3 evaluated rows, got %d", result.Evaluated())
	}
	want := (2.0 + 2.0 + 3.0) / 3.0
	if math.Abs(result.MAE-want) > 1e-12 {
		t.Errorf("MAE: expected %f, got %f", want, result.MAE)
	}
	if result.Details[1].Error != -2 {
		t.Errorf("signed error for B: expected -2, got %f", result.Details[1].Error)
	}
}

func TestEvaluate_SkipsMissingAssets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions_log.csv")
	log := New(path)
	t0 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	err := log.Append([]domain.PredictionRecord{
		record("A", 10, t0),
		record("GONE", 5, t0),
	})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	eval := NewEvaluator(log).WithClock(func() time.Time { return t0.AddDate(0, 0, 10) })
	result, err := eval.Evaluate(3, func(asset string) (float64, bool) {
		if asset == "A" {
			return 11, true
		}
		return 0, false
	})
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	if result.Evaluated() != 1 {
		t.Errorf("expected 1 evaluated row, got %d", result.Evaluated())
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != "GONE" {
		t.Errorf("expected GONE skipped, got %v", result.Skipped)
	}
	if result.MAE != 1 {
		t.Errorf("MAE should cover matched rows only: got %f", result.MAE)
	}
}

func TestEvaluate_NothingStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions_log.csv")
	log := New(path)
	t0 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	if err := log.Append([]domain.PredictionRecord{record("A", 10, t0)}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	// Only one day has passed; the threshold is three.
	eval := NewEvaluator(log).WithClock(func() time.Time { return t0.AddDate(0, 0, 1) })
	_, err := eval.Evaluate(3, func(string) (float64, bool) { return 0, false })
	if err != ErrNothingToEvaluate {
		t.Errorf("expected ErrNothingToEvaluate, got %v", err)
	}
}

func TestEvaluate_EmptyLog(t *testing.T) {
	log := New(filepath.Join(t.TempDir(), "absent.csv"))

	eval := NewEvaluator(log)
	_, err := eval.Evaluate(3, func(string) (float64, bool) { return 0, false })
	if err != ErrNothingToEvaluate {
		t.Errorf("expected ErrNothingToEvaluate for empty log, got %v", err)
	}
}

func TestEvaluate_AllLookupsMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions_log.csv")
	log := New(path)
	t0 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	if err := log.Append([]domain.PredictionRecord{record("A", 10, t0)}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	eval := NewEvaluator(log).WithClock(func() time.Time { return t0.AddDate(0, 0, 10) })
	_, err := eval.Evaluate(3, func(string) (float64, bool) { return 0, false })
	if err != ErrNoMatches {
		t.Errorf("expected ErrNoMatches, got %v", err)
	}
}
