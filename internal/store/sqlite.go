package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"altair/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ ReportStore = (*SQLiteStore)(nil)

// ErrReportNotFound is returned by GetReport when no report has the given ID.
var ErrReportNotFound = errors.New("report not found")

// SQLiteStore implements ReportStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, runs
// migrations, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating report database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS reports (
	id               TEXT PRIMARY KEY,
	symbol           TEXT NOT NULL,
	strategy         TEXT NOT NULL,
	start_ts         INTEGER NOT NULL,
	end_ts           INTEGER NOT NULL,
	created_at       INTEGER NOT NULL,
	initial_capital  REAL NOT NULL,
	final_capital    REAL NOT NULL,
	total_return     REAL NOT NULL,
	total_return_pct REAL NOT NULL,
	win_rate         REAL NOT NULL,
	avg_return_pct   REAL NOT NULL,
	max_drawdown_pct REAL NOT NULL,
	equity_curve     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	report_id       TEXT NOT NULL REFERENCES reports(id),
	seq             INTEGER NOT NULL,
	symbol          TEXT NOT NULL,
	entry_ts        INTEGER NOT NULL,
	exit_ts         INTEGER NOT NULL,
	entry_price     REAL NOT NULL,
	exit_price      REAL NOT NULL,
	quantity        INTEGER NOT NULL,
	pnl             REAL NOT NULL,
	return_pct      REAL NOT NULL,
	exit_reason     TEXT NOT NULL,
	PRIMARY KEY (report_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_reports_symbol ON reports(symbol, created_at DESC);
`)
	return err
}

// equityJSON is the serialized form of one equity curve point. Timestamps are
// stored as Unix milliseconds to keep the column compact and sortable.
type equityJSON struct {
	TS    int64   `json:"ts"`
	Value float64 `json:"value"`
}

// ---------------------------------------------------------------------------
// ReportStore implementation
// ---------------------------------------------------------------------------

// SaveReport inserts a report with its trade ledger and equity curve in one
// transaction.
func (s *SQLiteStore) SaveReport(ctx context.Context, report *domain.BacktestReport) error {
	curve := make([]equityJSON, len(report.EquityCurve))
	for i, p := range report.EquityCurve {
		curve[i] = equityJSON{TS: p.Timestamp.UnixMilli(), Value: p.Value}
	}
	curveData, err := json.Marshal(curve)
	if err != nil {
		return fmt.Errorf("encoding equity curve: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO reports (
	id, symbol, strategy, start_ts, end_ts, created_at,
	initial_capital, final_capital, total_return, total_return_pct,
	win_rate, avg_return_pct, max_drawdown_pct, equity_curve
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.Symbol, report.Strategy,
		report.Start.UnixMilli(), report.End.UnixMilli(), report.CreatedAt.UnixMilli(),
		report.InitialCapital, report.FinalCapital, report.TotalReturn, report.TotalReturnPct,
		report.WinRate, report.AvgReturnPct, report.MaxDrawdownPct, string(curveData))
	if err != nil {
		return fmt.Errorf("inserting report %s: %w", report.ID, err)
	}

	for i, t := range report.Trades {
		_, err = tx.ExecContext(ctx, `
INSERT INTO trades (
	report_id, seq, symbol, entry_ts, exit_ts,
	entry_price, exit_price, quantity, pnl, return_pct, exit_reason
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.ID, i, t.Symbol, t.EntryTimestamp.UnixMilli(), t.ExitTimestamp.UnixMilli(),
			t.EntryPrice, t.ExitPrice, t.Quantity, t.PnL, t.ReturnPct, string(t.ExitReason))
		if err != nil {
			return fmt.Errorf("inserting trade %d of report %s: %w", i, report.ID, err)
		}
	}

	return tx.Commit()
}

// GetReport retrieves a full report, including trades and equity curve.
func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*domain.BacktestReport, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, symbol, strategy, start_ts, end_ts, created_at,
       initial_capital, final_capital, total_return, total_return_pct,
       win_rate, avg_return_pct, max_drawdown_pct, equity_curve
FROM reports WHERE id = ?`, id)

	report, curveData, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}

	var curve []equityJSON
	if err := json.Unmarshal([]byte(curveData), &curve); err != nil {
		return nil, fmt.Errorf("decoding equity curve of report %s: %w", id, err)
	}
	report.EquityCurve = make([]domain.EquityPoint, len(curve))
	for i, p := range curve {
		report.EquityCurve[i] = domain.EquityPoint{
			Timestamp: time.UnixMilli(p.TS).UTC(),
			Value:     p.Value,
		}
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT symbol, entry_ts, exit_ts, entry_price, exit_price,
       quantity, pnl, return_pct, exit_reason
FROM trades WHERE report_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.Trade
		var entryTS, exitTS int64
		var reason string
		if err := rows.Scan(&t.Symbol, &entryTS, &exitTS, &t.EntryPrice, &t.ExitPrice,
			&t.Quantity, &t.PnL, &t.ReturnPct, &reason); err != nil {
			return nil, err
		}
		t.EntryTimestamp = time.UnixMilli(entryTS).UTC()
		t.ExitTimestamp = time.UnixMilli(exitTS).UTC()
		t.ExitReason = domain.ExitReason(reason)
		report.Trades = append(report.Trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return report, nil
}

// ListReports returns report summaries (without trades or equity curve),
// newest first. An empty symbol matches all symbols.
func (s *SQLiteStore) ListReports(ctx context.Context, symbol string, limit int) ([]domain.BacktestReport, error) {
	query := `
SELECT id, symbol, strategy, start_ts, end_ts, created_at,
       initial_capital, final_capital, total_return, total_return_pct,
       win_rate, avg_return_pct, max_drawdown_pct, '[]'
FROM reports`
	args := []any{}
	if symbol != "" {
		query += " WHERE symbol = ?"
		args = append(args, symbol)
	}
	query += " ORDER BY created_at DESC, id LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []domain.BacktestReport
	for rows.Next() {
		report, _, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*domain.BacktestReport, string, error) {
	var report domain.BacktestReport
	var startTS, endTS, createdTS int64
	var curveData string
	err := row.Scan(&report.ID, &report.Symbol, &report.Strategy,
		&startTS, &endTS, &createdTS,
		&report.InitialCapital, &report.FinalCapital,
		&report.TotalReturn, &report.TotalReturnPct,
		&report.WinRate, &report.AvgReturnPct, &report.MaxDrawdownPct,
		&curveData)
	if err != nil {
		return nil, "", err
	}
	report.Start = time.UnixMilli(startTS).UTC()
	report.End = time.UnixMilli(endTS).UTC()
	report.CreatedAt = time.UnixMilli(createdTS).UTC()
	return &report, curveData, nil
}
