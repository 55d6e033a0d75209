// Command altair-backtest runs one backtest from the command line and prints
// the resulting report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"altair/internal/backtest"
	"altair/internal/config"
	"altair/internal/domain"
	"altair/internal/engine"
	"altair/internal/store"
	"altair/internal/util"
)

func main() {
	var (
		symbol    = flag.String("symbol", "", "ticker symbol to backtest (required)")
		startStr  = flag.String("start", "", "start date YYYY-MM-DD (default: earliest stored bar)")
		endStr    = flag.String("end", "", "end date YYYY-MM-DD (default: latest stored bar)")
		stratName = flag.String("strategy", "", "strategy profile: conservative, balanced, aggressive")
		capital   = flag.Float64("capital", 0, "initial capital (overrides config)")
		cfgPath   = flag.String("config", "", "path to YAML config file")
	)
	flag.Parse()

	if *symbol == "" {
		flag.Usage()
		os.Exit(2)
	}
	var start, end time.Time
	var err error
	if *startStr != "" {
		if start, err = time.Parse("2006-01-02", *startStr); err != nil {
			log.Fatalf("invalid -start: %v", err)
		}
	}
	if *endStr != "" {
		if end, err = time.Parse("2006-01-02", *endStr); err != nil {
			log.Fatalf("invalid -end: %v", err)
		}
	}

	cfg, err := config.Load(configPath(*cfgPath))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	util.SetDefault(util.NewLogger(cfg.Logging.Level))

	simCfg := backtest.Config{
		InitialCapital:   cfg.Backtest.InitialCapital,
		RiskPerTrade:     cfg.Backtest.RiskPerTrade,
		StopLossPct:      cfg.Backtest.StopLossPct,
		TakeProfitPct:    cfg.Backtest.TakeProfitPct,
		MaxPositionValue: cfg.Backtest.MaxPositionValue,
	}
	if *capital > 0 {
		simCfg.InitialCapital = *capital
	}
	name := *stratName
	if name == "" {
		name = cfg.Backtest.Strategy
	}

	bars := store.NewParquetStore(cfg.Storage.DataDir)
	reports, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening report database: %v", err)
	}
	defer reports.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner := engine.NewRunner(bars, reports, nil)
	report, err := runner.Run(ctx, engine.RunRequest{
		Symbol:   *symbol,
		Start:    start,
		End:      end,
		Strategy: name,
		Sim:      simCfg,
	})
	if err != nil {
		log.Fatalf("backtest failed: %v", err)
	}

	printReport(report)
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

func printReport(r *domain.BacktestReport) {
	fmt.Printf("Backtest %s  %s  (%s)\n", r.ID, r.Symbol, r.Strategy)
	fmt.Printf("Period:          %s to %s\n", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	fmt.Printf("Initial capital: %12.2f\n", r.InitialCapital)
	fmt.Printf("Final capital:   %12.2f\n", r.FinalCapital)
	fmt.Printf("Total return:    %12.2f  (%.2f%%)\n", r.TotalReturn, r.TotalReturnPct*100)
	fmt.Printf("Trades:          %d  (win rate %.1f%%)\n", len(r.Trades), r.WinRate*100)
	fmt.Printf("Avg return/trade: %.2f%%\n", r.AvgReturnPct*100)
	fmt.Printf("Max drawdown:     %.2f%%\n", r.MaxDrawdownPct*100)

	if len(r.Trades) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("  entry       exit        qty      entry$     exit$        pnl  reason")
	for _, t := range r.Trades {
		fmt.Printf("  %s  %s  %5d  %10.2f  %8.2f  %9.2f  %s\n",
			t.EntryTimestamp.Format("2006-01-02"),
			t.ExitTimestamp.Format("2006-01-02"),
			t.Quantity, t.EntryPrice, t.ExitPrice, t.PnL, t.ExitReason)
	}
}
