package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Pipeline.RetryAttempts != 5 {
		t.Errorf("Expected 5 retry attempts, got %d", cfg.Pipeline.RetryAttempts)
	}
	if cfg.Pipeline.RetryDelay != 60*time.Second {
		t.Errorf("Expected 60s retry delay, got %v", cfg.Pipeline.RetryDelay)
	}
	if cfg.Pipeline.GroupSize != 20 {
		t.Errorf("Expected group size 20, got %d", cfg.Pipeline.GroupSize)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected default addr :8080, got %s", cfg.Server.Addr)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
data:
  crypto_workbook: "./testdata/coins.xlsx"
  prediction_log: "./testdata/log.csv"
  indexes:
    nifty50: "./testdata/nifty50.xlsx"
    banknifty: "./testdata/banknifty.xlsx"

pipeline:
  min_volume: 10000
  min_market_cap: 500000
  group_size: 10
  seed: 7
  retry_attempts: 3
  retry_delay: 5s
  eval_threshold_days: 14

server:
  addr: ":9090"
  ticker_interval: 10s

storage:
  postgres_dsn: "postgres://test"
  clickhouse_dsn: "clickhouse://test/db"

logging:
  level: "debug"
  format: "json"
`
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Data.CryptoWorkbook != "./testdata/coins.xlsx" {
		t.Errorf("Unexpected workbook: %s", cfg.Data.CryptoWorkbook)
	}
	if len(cfg.Data.Indexes) != 2 {
		t.Errorf("Expected 2 indexes, got %d", len(cfg.Data.Indexes))
	}
	if cfg.Data.Indexes["nifty50"] != "./testdata/nifty50.xlsx" {
		t.Errorf("Unexpected index path: %s", cfg.Data.Indexes["nifty50"])
	}
	if cfg.Pipeline.RetryAttempts != 3 {
		t.Errorf("Expected 3 retry attempts, got %d", cfg.Pipeline.RetryAttempts)
	}
	if cfg.Pipeline.Seed != 7 {
		t.Errorf("Expected seed 7, got %d", cfg.Pipeline.Seed)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Expected addr :9090, got %s", cfg.Server.Addr)
	}
	if cfg.Storage.ClickhouseDSN != "clickhouse://test/db" {
		t.Errorf("Unexpected clickhouse dsn: %s", cfg.Storage.ClickhouseDSN)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Config should validate, got %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	base := func() *Config {
		cfg, _ := Load("")
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty workbook", func(c *Config) { c.Data.CryptoWorkbook = "" }},
		{"empty log path", func(c *Config) { c.Data.PredictionLog = "" }},
		{"zero group size", func(c *Config) { c.Pipeline.GroupSize = 0 }},
		{"zero retry attempts", func(c *Config) { c.Pipeline.RetryAttempts = 0 }},
		{"negative threshold days", func(c *Config) { c.Pipeline.EvalThresholdDays = -1 }},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
