// Package monitor exposes countable events from the simulation core to an
// external monitoring collaborator. The core only sees the Recorder
// interface; when no collaborator is configured the no-op recorder keeps
// every call free of side effects.
package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives countable events emitted during a backtest run.
type Recorder interface {
	SignalGenerated(action string)
	TradeOpened()
	TradeClosed(reason string)
	RunCompleted()
	RunFailed()
}

// nopRecorder discards every event.
type nopRecorder struct{}

func (nopRecorder) SignalGenerated(string) {}
func (nopRecorder) TradeOpened()           {}
func (nopRecorder) TradeClosed(string)     {}
func (nopRecorder) RunCompleted()          {}
func (nopRecorder) RunFailed()             {}

// Nop returns a Recorder that ignores all events.
func Nop() Recorder { return nopRecorder{} }

// ---------------------------------------------------------------------------
// Prometheus-backed recorder
// ---------------------------------------------------------------------------

var (
	signalsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "altair_signals_generated_total",
			Help: "Total number of non-hold signals generated (by action).",
		},
		[]string{"action"},
	)

	tradesOpened = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "altair_trades_opened_total",
			Help: "Total number of simulated positions opened.",
		},
	)

	tradesClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "altair_trades_closed_total",
			Help: "Total number of simulated positions closed (by exit reason).",
		},
		[]string{"reason"},
	)

	runsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "altair_backtest_runs_completed_total",
			Help: "Total number of backtest runs that produced a report.",
		},
	)

	runsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "altair_backtest_runs_failed_total",
			Help: "Total number of backtest runs that returned an error.",
		},
	)
)

func init() {
	prometheus.MustRegister(signalsGenerated, tradesOpened, tradesClosed, runsCompleted, runsFailed)
}

// promRecorder forwards events to the process-wide Prometheus registry.
type promRecorder struct{}

// NewPrometheus returns a Recorder backed by Prometheus counters.
func NewPrometheus() Recorder { return promRecorder{} }

func (promRecorder) SignalGenerated(action string) { signalsGenerated.WithLabelValues(action).Inc() }
func (promRecorder) TradeOpened()                  { tradesOpened.Inc() }
func (promRecorder) TradeClosed(reason string)     { tradesClosed.WithLabelValues(reason).Inc() }
func (promRecorder) RunCompleted()                 { runsCompleted.Inc() }
func (promRecorder) RunFailed()                    { runsFailed.Inc() }
