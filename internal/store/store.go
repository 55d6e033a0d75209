// Package store persists and retrieves bar data and backtest reports.
// Bars live in Parquet files on disk; reports live in a SQLite database.
package store

import (
	"context"
	"time"

	"altair/internal/domain"
)

// BarStore persists and retrieves OHLCV bar data.
type BarStore interface {
	// WriteBars persists a batch of bars to storage.
	WriteBars(ctx context.Context, bars []domain.Bar) error

	// ReadBars returns bars for the given symbol within [start, end],
	// ordered by timestamp. A zero start or end leaves that side of the
	// range unbounded.
	ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols with stored bars.
	ListSymbols(ctx context.Context) ([]string, error)
}

// ReportStore persists completed backtest reports. Reports are write-once:
// there is no update path.
type ReportStore interface {
	// SaveReport inserts a report, its trade ledger, and its equity curve.
	SaveReport(ctx context.Context, report *domain.BacktestReport) error

	// GetReport retrieves a full report by its ID.
	GetReport(ctx context.Context, id string) (*domain.BacktestReport, error)

	// ListReports returns recent report summaries (without trades or equity
	// curve), newest first. An empty symbol matches all symbols.
	ListReports(ctx context.Context, symbol string, limit int) ([]domain.BacktestReport, error)
}
