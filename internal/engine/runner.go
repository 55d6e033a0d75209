// Package engine orchestrates a full backtest run: loading bars, generating
// signals, simulating trades, and persisting the resulting report.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"altair/internal/backtest"
	"altair/internal/domain"
	"altair/internal/monitor"
	"altair/internal/store"
	"altair/internal/strategy"
	"altair/internal/validate"
)

// RunRequest describes one backtest to execute. A zero Start or End leaves
// that side of the bar range unbounded, so a zero pair runs against all
// stored history for the symbol.
type RunRequest struct {
	Symbol   string
	Start    time.Time
	End      time.Time
	Strategy string // profile name; empty means the default profile
	Sim      backtest.Config
}

// Runner wires the stores, the strategy layer, and the simulator into a
// single entry point.
type Runner struct {
	bars    store.BarStore
	reports store.ReportStore
	rec     monitor.Recorder
	log     *slog.Logger
}

// NewRunner creates a Runner. A nil recorder disables monitoring.
func NewRunner(bars store.BarStore, reports store.ReportStore, rec monitor.Recorder) *Runner {
	if rec == nil {
		rec = monitor.Nop()
	}
	return &Runner{
		bars:    bars,
		reports: reports,
		rec:     rec,
		log:     slog.Default().With("component", "runner"),
	}
}

// Run executes one backtest and persists the report. The returned report has
// its ID, strategy name, and creation time filled in.
func (r *Runner) Run(ctx context.Context, req RunRequest) (*domain.BacktestReport, error) {
	name := req.Strategy
	if name == "" {
		name = strategy.DefaultProfile
	}
	profile, err := strategy.Get(name)
	if err != nil {
		r.rec.RunFailed()
		return nil, err
	}

	bars, err := r.bars.ReadBars(ctx, req.Symbol, req.Start, req.End)
	if err != nil {
		r.rec.RunFailed()
		return nil, fmt.Errorf("loading bars for %s: %w", req.Symbol, err)
	}
	if err := validate.Bars(bars); err != nil {
		r.rec.RunFailed()
		return nil, fmt.Errorf("bar data for %s: %w", req.Symbol, err)
	}

	r.log.Info("run starting",
		"symbol", req.Symbol,
		"strategy", profile.Name,
		"bars", len(bars),
		"start", bars[0].Timestamp.Format("2006-01-02"),
		"end", bars[len(bars)-1].Timestamp.Format("2006-01-02"),
	)

	signals, err := strategy.Analyze(profile, bars)
	if err != nil {
		r.rec.RunFailed()
		return nil, fmt.Errorf("analyzing %s: %w", req.Symbol, err)
	}
	for _, sig := range signals {
		if sig.Action != domain.ActionHold {
			r.rec.SignalGenerated(string(sig.Action))
		}
	}

	sim, err := backtest.New(req.Sim, r.rec)
	if err != nil {
		r.rec.RunFailed()
		return nil, err
	}
	// The simulator records its own run outcome.
	report, err := sim.Run(ctx, bars, signals)
	if err != nil {
		return nil, fmt.Errorf("simulating %s: %w", req.Symbol, err)
	}

	report.ID = uuid.NewString()
	report.Strategy = profile.Name
	report.CreatedAt = time.Now().UTC()

	if r.reports != nil {
		if err := r.reports.SaveReport(ctx, report); err != nil {
			return nil, fmt.Errorf("saving report %s: %w", report.ID, err)
		}
	}

	r.log.Info("run complete",
		"report", report.ID,
		"trades", len(report.Trades),
		"finalCapital", report.FinalCapital,
		"totalReturnPct", report.TotalReturnPct,
	)
	return report, nil
}
