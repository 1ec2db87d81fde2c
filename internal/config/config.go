// Package config loads hub configuration from a YAML file with FYPY_
// environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete hub configuration.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DataConfig names the input workbooks and the prediction log.
type DataConfig struct {
	CryptoWorkbook string            `mapstructure:"crypto_workbook"`
	Indexes        map[string]string `mapstructure:"indexes"` // index name -> workbook path
	PredictionLog  string            `mapstructure:"prediction_log"`
}

// PipelineConfig holds run parameters shared by the pipelines.
type PipelineConfig struct {
	MinVolume         float64       `mapstructure:"min_volume"`
	MinMarketCap      float64       `mapstructure:"min_market_cap"`
	GroupSize         int           `mapstructure:"group_size"`
	Seed              int64         `mapstructure:"seed"`
	RetryAttempts     int           `mapstructure:"retry_attempts"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	EvalThresholdDays int           `mapstructure:"eval_threshold_days"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	TickerInterval time.Duration `mapstructure:"ticker_interval"`
}

// StorageConfig holds database DSNs. Empty DSNs select the in-memory
// stores.
type StorageConfig struct {
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	ClickhouseDSN string `mapstructure:"clickhouse_dsn"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional file plus environment
// variables. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("FYPY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.crypto_workbook", "./data/coins.xlsx")
	v.SetDefault("data.indexes", map[string]string{})
	v.SetDefault("data.prediction_log", "./data/predictions.csv")

	v.SetDefault("pipeline.min_volume", 50000.0)
	v.SetDefault("pipeline.min_market_cap", 1000000.0)
	v.SetDefault("pipeline.group_size", 20)
	v.SetDefault("pipeline.seed", 0)
	v.SetDefault("pipeline.retry_attempts", 5)
	v.SetDefault("pipeline.retry_delay", "60s")
	v.SetDefault("pipeline.eval_threshold_days", 7)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.ticker_interval", "5s")

	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.clickhouse_dsn", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	if c.Data.CryptoWorkbook == "" {
		return fmt.Errorf("data.crypto_workbook is required")
	}
	if c.Data.PredictionLog == "" {
		return fmt.Errorf("data.prediction_log is required")
	}

	if c.Pipeline.GroupSize < 1 {
		return fmt.Errorf("pipeline.group_size must be at least 1")
	}
	if c.Pipeline.RetryAttempts < 1 {
		return fmt.Errorf("pipeline.retry_attempts must be at least 1")
	}
	if c.Pipeline.RetryDelay < 0 {
		return fmt.Errorf("pipeline.retry_delay must not be negative")
	}
	if c.Pipeline.EvalThresholdDays < 0 {
		return fmt.Errorf("pipeline.eval_threshold_days must not be negative")
	}
	if c.Pipeline.MinVolume < 0 || c.Pipeline.MinMarketCap < 0 {
		return fmt.Errorf("pipeline thresholds must not be negative")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.TickerInterval < time.Second {
		return fmt.Errorf("server.ticker_interval must be at least 1 second")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
