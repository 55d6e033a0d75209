package gather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"altair/internal/domain"
	"altair/internal/store"
	"altair/internal/util"
)

// Compile-time interface check.
var _ Gatherer = (*DailyBarGatherer)(nil)

// Default request pacing for the free Alpaca data tier.
const defaultRateLimitPerMin = 200

// DailyBarGatherer fetches daily OHLCV bars for a fixed list of symbols via
// the Alpaca market-data API and writes them to the bar store.
type DailyBarGatherer struct {
	client    *marketdata.Client
	store     store.BarStore
	symbols   []string
	window    DateRange
	batchSize int
	apiKey    string
	apiSecret string
	baseURL   string // live trading API, used for the calendar
	limiter   *util.RateLimiter
	log       *slog.Logger
}

// NewDailyBarGatherer creates a DailyBarGatherer for the given symbols and
// date range. A zero window end means "latest finished trading day".
func NewDailyBarGatherer(apiKey, apiSecret, dataURL, baseURL string, s store.BarStore, symbols []string, window DateRange) *DailyBarGatherer {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}

	upper := make([]string, len(symbols))
	for i, sym := range symbols {
		upper[i] = strings.ToUpper(sym)
	}

	return &DailyBarGatherer{
		client:    marketdata.NewClient(opts),
		store:     s,
		symbols:   upper,
		window:    window,
		batchSize: 200,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   baseURL,
		limiter:   util.NewRateLimiter(defaultRateLimitPerMin),
		log:       slog.Default().With("gatherer", "daily-bars"),
	}
}

// Name returns the gatherer identifier.
func (g *DailyBarGatherer) Name() string { return "daily-bars" }

// Run fetches daily bars for every configured symbol and writes them to the
// store. Writes merge with existing data, so reruns are idempotent.
func (g *DailyBarGatherer) Run(ctx context.Context) error {
	if len(g.symbols) == 0 {
		return fmt.Errorf("no symbols configured")
	}

	end := g.window.End
	if end.IsZero() {
		var err error
		end, err = LatestFinishedTradingDay(g.apiKey, g.apiSecret, g.baseURL)
		if err != nil {
			return fmt.Errorf("determining end date: %w", err)
		}
	}

	runStart := time.Now()
	g.log.Info("starting daily-bars",
		"symbols", len(g.symbols),
		"start", g.window.Start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"),
	)

	var total int
	for i := 0; i < len(g.symbols); i += g.batchSize {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		batch := g.symbols[i:min(i+g.batchSize, len(g.symbols))]

		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}

		var bars []domain.Bar
		err := util.Retry(ctx, 3, time.Second, func() error {
			var ferr error
			bars, ferr = g.fetchMultiBars(ctx, batch, g.window.Start, end)
			return ferr
		})
		if err != nil {
			return fmt.Errorf("fetching bars for batch starting %s: %w", batch[0], err)
		}

		if len(bars) > 0 {
			if err := g.store.WriteBars(ctx, bars); err != nil {
				return fmt.Errorf("writing bars: %w", err)
			}
		}
		total += len(bars)

		g.log.Info("batch done",
			"symbols", len(batch),
			"bars", len(bars),
			"elapsed", time.Since(runStart).Round(time.Second),
		)
	}

	g.log.Info("complete", "bars", total, "elapsed", time.Since(runStart).Round(time.Second))
	return nil
}

// fetchMultiBars fetches daily bars for multiple symbols in a single API call.
func (g *DailyBarGatherer) fetchMultiBars(ctx context.Context, symbols []string, start, end time.Time) ([]domain.Bar, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	multiBars, err := g.client.GetMultiBars(symbols, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
		Feed:      "sip",
	})
	if err != nil {
		return nil, fmt.Errorf("GetMultiBars: %w", err)
	}

	var bars []domain.Bar
	for symbol, alpacaBars := range multiBars {
		for _, ab := range alpacaBars {
			bars = append(bars, domain.Bar{
				Symbol:     strings.ToUpper(symbol),
				Timestamp:  ab.Timestamp,
				Open:       ab.Open,
				High:       ab.High,
				Low:        ab.Low,
				Close:      ab.Close,
				Volume:     int64(ab.Volume),
				TradeCount: int64(ab.TradeCount),
				VWAP:       ab.VWAP,
			})
		}
	}
	return bars, nil
}

// LatestFinishedTradingDay returns the most recent trading day whose market
// session has ended (after 20:05 ET, so extended hours data has settled).
// It uses the Alpaca trading calendar API.
func LatestFinishedTradingDay(apiKey, apiSecret, baseURL string) (time.Time, error) {
	client := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   baseURL,
	})

	et, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.Time{}, fmt.Errorf("loading ET timezone: %w", err)
	}

	now := time.Now().In(et)
	start := now.AddDate(0, 0, -7)

	calendar, err := client.GetCalendar(alpaca.GetCalendarRequest{
		Start: start,
		End:   now,
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("GetCalendar: %w", err)
	}

	if len(calendar) == 0 {
		return time.Time{}, fmt.Errorf("no trading days returned from calendar")
	}

	today := now.Format("2006-01-02")
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 20, 5, 0, 0, et)

	for i := len(calendar) - 1; i >= 0; i-- {
		day := calendar[i]
		if day.Date == today {
			if now.After(cutoff) {
				t, _ := time.Parse("2006-01-02", day.Date)
				return t, nil
			}
			continue
		}
		dayDate, err := time.Parse("2006-01-02", day.Date)
		if err != nil {
			continue
		}
		if dayDate.Before(now) {
			return dayDate, nil
		}
	}

	return time.Time{}, fmt.Errorf("could not determine latest finished trading day")
}
