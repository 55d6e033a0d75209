// Command altair-server serves backtest reports, strategy metadata, and
// Prometheus metrics over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"altair/internal/backtest"
	"altair/internal/config"
	"altair/internal/engine"
	"altair/internal/httpapi"
	"altair/internal/monitor"
	"altair/internal/store"
	"altair/internal/util"
)

func main() {
	var (
		addr    = flag.String("addr", ":8080", "listen address")
		cfgPath = flag.String("config", "", "path to YAML config file")
	)
	flag.Parse()

	cfg, err := config.Load(configPath(*cfgPath))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	util.SetDefault(util.NewLogger(cfg.Logging.Level))

	bars := store.NewParquetStore(cfg.Storage.DataDir)
	reports, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening report database: %v", err)
	}
	defer reports.Close()

	simCfg := backtest.Config{
		InitialCapital:   cfg.Backtest.InitialCapital,
		RiskPerTrade:     cfg.Backtest.RiskPerTrade,
		StopLossPct:      cfg.Backtest.StopLossPct,
		TakeProfitPct:    cfg.Backtest.TakeProfitPct,
		MaxPositionValue: cfg.Backtest.MaxPositionValue,
	}

	runner := engine.NewRunner(bars, reports, monitor.NewPrometheus())
	api := httpapi.NewServer(runner, reports, simCfg)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      api.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // backtest runs can take a while
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown", "error", err)
		}
	}()

	slog.Info("altair-server listening", "addr", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

// configPath resolves the config file: the -config flag wins, then
// ALTAIR_CONFIG, then the conventional location if it exists.
func configPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv("ALTAIR_CONFIG"); p != "" {
		return p
	}
	const conventional = "config/altair.yaml"
	if _, err := os.Stat(conventional); err == nil {
		return conventional
	}
	return ""
}
