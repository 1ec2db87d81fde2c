// Package main runs the hub API server: account handling, pipeline runs,
// prediction evaluation, exports, metrics and the live price ticker.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fypy-hub/internal/config"
	"fypy-hub/internal/logger"
	"fypy-hub/internal/predlog"
	"fypy-hub/internal/server"
	"fypy-hub/internal/storage"
	chstore "fypy-hub/internal/storage/clickhouse"
	"fypy-hub/internal/storage/memory"
	"fypy-hub/internal/storage/migrations"
	pgstore "fypy-hub/internal/storage/postgres"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (env vars apply on top)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("load config: %v", err)
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	users, prices, cleanup, err := createStores(ctx, cfg)
	if err != nil {
		logger.Fatal("create stores: %v", err)
	}
	defer cleanup()

	srv := server.New(server.Options{
		Users:             users,
		Prices:            prices,
		Log:               predlog.New(cfg.Data.PredictionLog),
		CryptoWorkbook:    cfg.Data.CryptoWorkbook,
		Indexes:           cfg.Data.Indexes,
		MinVolume:         cfg.Pipeline.MinVolume,
		MinMarketCap:      cfg.Pipeline.MinMarketCap,
		GroupSize:         cfg.Pipeline.GroupSize,
		Seed:              cfg.Pipeline.Seed,
		RetryAttempts:     cfg.Pipeline.RetryAttempts,
		RetryDelay:        cfg.Pipeline.RetryDelay,
		EvalThresholdDays: cfg.Pipeline.EvalThresholdDays,
		TickerInterval:    cfg.Server.TickerInterval,
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router(),
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case sig := <-sigCh:
		logger.Info("received %v, shutting down", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown: %v", err)
	}
	logger.Info("shutdown complete")
}

// createStores builds the user and price stores. With both DSNs empty
// everything runs in memory; otherwise both backends are required and
// migrations run before the server accepts traffic.
func createStores(ctx context.Context, cfg *config.Config) (storage.UserStore, storage.PriceSeriesStore, func(), error) {
	if cfg.Storage.PostgresDSN == "" && cfg.Storage.ClickhouseDSN == "" {
		logger.Info("using in-memory storage")
		return memory.NewUserStore(), memory.NewPriceSeriesStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := migrations.ApplyPostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	conn, err := chstore.NewConn(ctx, cfg.Storage.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	if err := migrations.ApplyClickhouse(ctx, conn); err != nil {
		pool.Close()
		_ = conn.Close()
		return nil, nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		if err := conn.Close(); err != nil {
			logger.Warn("close clickhouse: %v", err)
		}
	}
	return pgstore.NewUserStore(pool), chstore.NewPriceSeriesStore(conn), cleanup, nil
}
