// Package domain defines the core data types shared across altair: OHLCV
// bars, trading signals, simulated positions and trades, and backtest
// reports. Values are treated as immutable once produced.
package domain

import "time"

// Action is the per-bar decision emitted by a strategy.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// ExitReason records why a simulated position was closed.
type ExitReason string

const (
	ExitSignal     ExitReason = "signal"
	ExitStopLoss   ExitReason = "stop_loss"
	ExitTakeProfit ExitReason = "take_profit"
	ExitEndOfData  ExitReason = "end_of_data"
)

// Bar is a single OHLCV bar. Bars form an ordered sequence with strictly
// increasing timestamps.
type Bar struct {
	Symbol     string
	Timestamp  time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     int64
	TradeCount int64
	VWAP       float64
}

// Signal is the decision for one bar, with an indicator snapshot taken at
// the moment the decision was made. Strength is in [0, 1]; higher means more
// of the profile's sub-conditions were satisfied. Snapshot fields are zero
// while the indicators are still warming up (Action is always Hold then).
type Signal struct {
	Timestamp time.Time
	Action    Action
	Strength  float64
	Close     float64
	RSI       float64
	FastMA    float64
	SlowMA    float64
}

// Position is an open simulated position. At most one exists at any point
// during a backtest run.
type Position struct {
	Symbol         string
	EntryTimestamp time.Time
	EntryPrice     float64
	Quantity       int64
	StopLoss       float64
	TakeProfit     float64
}

// Trade is a completed position, appended to the trade ledger in entry
// order and never mutated afterwards. ReturnPct is a ratio (0.045 = 4.5%).
type Trade struct {
	Symbol         string
	EntryTimestamp time.Time
	ExitTimestamp  time.Time
	EntryPrice     float64
	ExitPrice      float64
	Quantity       int64
	PnL            float64
	ReturnPct      float64
	ExitReason     ExitReason
}

// EquityPoint is the portfolio value (cash plus mark-to-market position
// value) after processing one bar.
type EquityPoint struct {
	Timestamp time.Time
	Value     float64
}

// BacktestReport is the read-only result of one backtest run. All *_Pct
// fields are ratios, not percentages; MaxDrawdownPct is zero or negative.
type BacktestReport struct {
	ID             string
	Symbol         string
	Strategy       string
	Start          time.Time
	End            time.Time
	CreatedAt      time.Time
	InitialCapital float64
	FinalCapital   float64
	TotalReturn    float64
	TotalReturnPct float64
	WinRate        float64
	AvgReturnPct   float64
	MaxDrawdownPct float64
	Trades         []Trade
	EquityCurve    []EquityPoint
}
