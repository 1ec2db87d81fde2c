// Package main runs the clustering pipelines from the command line:
// a crypto retrain, a prediction evaluation, or an equity index run.
// Results land as Markdown and CSV files in the output directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"fypy-hub/internal/config"
	"fypy-hub/internal/dataset"
	"fypy-hub/internal/logger"
	"fypy-hub/internal/lookup"
	"fypy-hub/internal/pipeline"
	"fypy-hub/internal/predlog"
	"fypy-hub/internal/reporting"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (env vars apply on top)")
	mode := flag.String("mode", "retrain", "Pipeline mode: retrain, evaluate or index")
	index := flag.String("index", "", "Index name for -mode index")
	outputDir := flag.String("output-dir", "output", "Output directory for reports")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("load config: %v", err)
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received %v, cancelling", sig)
		cancel()
	}()

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Fatal("create output dir: %v", err)
	}

	switch *mode {
	case "retrain":
		err = runRetrain(ctx, cfg, *outputDir)
	case "evaluate":
		err = runEvaluate(cfg)
	case "index":
		err = runIndex(ctx, cfg, *index, *outputDir)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		logger.Fatal("%v", err)
	}
}

func runRetrain(ctx context.Context, cfg *config.Config, outputDir string) error {
	ds, err := dataset.Load(cfg.Data.CryptoWorkbook, dataset.ProfileCrypto)
	if err != nil {
		return fmt.Errorf("load workbook: %w", err)
	}
	for _, w := range ds.Warnings {
		logger.Warn("workbook: %s", w)
	}

	retrainer := pipeline.NewRetrainer(predlog.New(cfg.Data.PredictionLog)).
		WithSeed(cfg.Pipeline.Seed).
		WithGroupSize(cfg.Pipeline.GroupSize).
		WithThresholds(cfg.Pipeline.MinVolume, cfg.Pipeline.MinMarketCap)

	var result *pipeline.CoinRunResult
	retrier := pipeline.NewRetrier(cfg.Pipeline.RetryAttempts, cfg.Pipeline.RetryDelay)
	err = retrier.Run(ctx, func(ctx context.Context) error {
		var runErr error
		result, runErr = retrainer.Run(ctx, ds)
		return runErr
	})
	if err != nil {
		return err
	}

	sum := reporting.RunSummary{
		RunID:       result.RunID,
		GeneratedAt: result.GeneratedAt,
		Assets:      len(result.Table),
	}
	for _, skip := range result.Skips {
		sum.Skipped = append(sum.Skipped, reporting.SkipRow{Asset: skip.Asset, Reason: skip.Reason})
	}

	if err := writeReport(outputDir, "coin_clusters.md", reporting.RenderCoinsMarkdown(sum, result.Table)); err != nil {
		return err
	}
	if err := writeReport(outputDir, "coin_clusters.csv", reporting.RenderCoinsCSV(result.Table)); err != nil {
		return err
	}

	logger.Info("retrain %s: %d assets in %d clusters, %d skipped",
		result.RunID, len(result.Table), result.Clusters, len(result.Skips))
	return nil
}

func runEvaluate(cfg *config.Config) error {
	ds, err := dataset.Load(cfg.Data.CryptoWorkbook, dataset.ProfileCrypto)
	if err != nil {
		return fmt.Errorf("load workbook: %w", err)
	}

	fresh := make(map[string]float64, len(ds.Series))
	for i := range ds.Series {
		price, err := lookup.LatestPrice(ds.Series[i].Rows)
		if err != nil {
			continue
		}
		fresh[ds.Series[i].Asset] = price
	}

	evaluator := predlog.NewEvaluator(predlog.New(cfg.Data.PredictionLog))
	result, err := evaluator.Evaluate(cfg.Pipeline.EvalThresholdDays, func(asset string) (float64, bool) {
		price, ok := fresh[asset]
		return price, ok
	})
	switch {
	case errors.Is(err, predlog.ErrNothingToEvaluate), errors.Is(err, predlog.ErrNoMatches):
		logger.Info("evaluate: %v", err)
		return nil
	case err != nil:
		return err
	}

	for _, d := range result.Details {
		logger.Info("evaluate %s: predicted %.6f actual %.6f error %+.6f",
			d.Asset, d.Predicted, d.Actual, d.Error)
	}
	for _, asset := range result.Skipped {
		logger.Warn("evaluate %s: not in fresh data", asset)
	}
	logger.Info("evaluate: %d matched, MAE %.6f", result.Evaluated(), result.MAE)
	return nil
}

func runIndex(ctx context.Context, cfg *config.Config, index, outputDir string) error {
	path, ok := cfg.Data.Indexes[index]
	if !ok {
		return fmt.Errorf("unknown index %q, configured: %v", index, indexNames(cfg))
	}

	ds, err := dataset.Load(path, dataset.ProfileEquity)
	if err != nil {
		return fmt.Errorf("load workbook: %w", err)
	}
	for _, w := range ds.Warnings {
		logger.Warn("workbook: %s", w)
	}

	result, err := pipeline.NewIndexProcessor().
		WithSeed(cfg.Pipeline.Seed).
		WithGroupSize(cfg.Pipeline.GroupSize).
		Run(ctx, ds)
	if err != nil {
		return err
	}

	sum := reporting.RunSummary{
		GeneratedAt: result.GeneratedAt,
		Assets:      len(result.Table),
	}
	for _, skip := range result.Skips {
		sum.Skipped = append(sum.Skipped, reporting.SkipRow{Asset: skip.Asset, Reason: skip.Reason})
	}

	base := fmt.Sprintf("stock_clusters_%s", index)
	if err := writeReport(outputDir, base+".md", reporting.RenderStocksMarkdown(sum, result.Table)); err != nil {
		return err
	}
	if err := writeReport(outputDir, base+".csv", reporting.RenderStocksCSV(result.Table)); err != nil {
		return err
	}

	logger.Info("index %s: %d assets, k=%d, silhouette %.4f",
		index, len(result.Table), result.K, result.Silhouette)
	return nil
}

func indexNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Data.Indexes))
	for name := range cfg.Data.Indexes {
		names = append(names, name)
	}
	return names
}

func writeReport(dir, name, content string) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info("wrote %s", path)
	return nil
}
