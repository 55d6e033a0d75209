// Command altair-fetch downloads daily bars from the Alpaca market-data API
// into the local Parquet store.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"altair/internal/config"
	"altair/internal/gather"
	"altair/internal/store"
	"altair/internal/util"
)

func main() {
	var (
		symbolsArg = flag.String("symbols", "", "comma-separated ticker symbols (required)")
		startStr   = flag.String("start", "", "start date YYYY-MM-DD (required)")
		endStr     = flag.String("end", "", "end date YYYY-MM-DD (default: latest finished trading day)")
		cfgPath    = flag.String("config", "", "path to YAML config file")
	)
	flag.Parse()

	if *symbolsArg == "" || *startStr == "" {
		flag.Usage()
		os.Exit(2)
	}
	start, err := time.Parse("2006-01-02", *startStr)
	if err != nil {
		log.Fatalf("invalid -start: %v", err)
	}
	var end time.Time
	if *endStr != "" {
		end, err = time.Parse("2006-01-02", *endStr)
		if err != nil {
			log.Fatalf("invalid -end: %v", err)
		}
	}

	cfg, err := config.Load(configPath(*cfgPath))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	util.SetDefault(util.NewLogger(cfg.Logging.Level))

	if cfg.Alpaca.APIKey == "" || cfg.Alpaca.APISecret == "" {
		log.Fatal("Alpaca credentials missing: set alpaca.api_key/api_secret or APCA_API_KEY_ID/APCA_API_SECRET_KEY")
	}

	var symbols []string
	for _, s := range strings.Split(*symbolsArg, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}

	g := gather.NewDailyBarGatherer(
		cfg.Alpaca.APIKey,
		cfg.Alpaca.APISecret,
		cfg.Alpaca.DataURL,
		cfg.Alpaca.BaseURL,
		store.NewParquetStore(cfg.Storage.DataDir),
		symbols,
		gather.DateRange{Start: start, End: end},
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := g.Run(ctx); err != nil {
		log.Fatalf("fetch failed: %v", err)
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
