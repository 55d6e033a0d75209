// Package backtest replays a signal series bar-by-bar against a virtual
// portfolio with stop-loss/take-profit risk controls, producing a trade
// ledger, an equity curve, and summary metrics.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"math"

	"altair/internal/domain"
	"altair/internal/monitor"
)

var (
	// ErrInvalidConfig marks out-of-range risk parameters. Fatal to the run
	// they were passed to, nothing else.
	ErrInvalidConfig = errors.New("invalid backtest config")

	// ErrSimulationInvariant marks a logic defect (a second position opening
	// while one is live). The run aborts and returns no report.
	ErrSimulationInvariant = errors.New("simulation invariant violated")
)

// Config holds the risk parameters for one simulation run.
type Config struct {
	InitialCapital float64
	RiskPerTrade   float64 // fraction of current capital risked per trade, in (0, 1)
	StopLossPct    float64 // e.g. 0.02 places the stop 2% below entry
	TakeProfitPct  float64 // e.g. 0.04 places the target 4% above entry
	// MaxPositionValue caps the notional value of any single position.
	// Zero disables the cap.
	MaxPositionValue float64
}

// Validate checks the risk parameters. Stop-loss and take-profit are
// independent of each other; each only needs to be positive.
func (c Config) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("%w: InitialCapital (%v) must be positive", ErrInvalidConfig, c.InitialCapital)
	}
	if c.RiskPerTrade <= 0 || c.RiskPerTrade >= 1 {
		return fmt.Errorf("%w: RiskPerTrade (%v) must be in (0, 1)", ErrInvalidConfig, c.RiskPerTrade)
	}
	if c.StopLossPct <= 0 {
		return fmt.Errorf("%w: StopLossPct (%v) must be positive", ErrInvalidConfig, c.StopLossPct)
	}
	if c.TakeProfitPct <= 0 {
		return fmt.Errorf("%w: TakeProfitPct (%v) must be positive", ErrInvalidConfig, c.TakeProfitPct)
	}
	if c.MaxPositionValue < 0 {
		return fmt.Errorf("%w: MaxPositionValue (%v) cannot be negative", ErrInvalidConfig, c.MaxPositionValue)
	}
	return nil
}

// Simulator runs backtests with a fixed risk configuration. Each Run owns
// all of its state, so one Simulator may serve concurrent runs.
type Simulator struct {
	cfg Config
	rec monitor.Recorder
}

// New creates a Simulator after validating the config. A nil recorder is
// replaced with the no-op recorder.
func New(cfg Config, rec monitor.Recorder) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rec == nil {
		rec = monitor.Nop()
	}
	return &Simulator{cfg: cfg, rec: rec}, nil
}

// runState is the per-run mutable state; it is never shared across runs.
type runState struct {
	cash   float64
	pos    *domain.Position
	trades []domain.Trade
	curve  []domain.EquityPoint
}

// Run replays the signals against the bars in a single chronological pass.
// Stop-loss and take-profit are checked intrabar against the bar's low/high
// before the bar's signal is considered; a breach closes the position at
// the breached level even when the signal says Hold or Buy. A position
// still open after the final bar is force-closed at its close.
//
// The result is deterministic: identical bars, signals, and config always
// yield an identical report. Cancellation via ctx takes effect between
// bars and returns no report.
func (s *Simulator) Run(ctx context.Context, bars []domain.Bar, signals []domain.Signal) (*domain.BacktestReport, error) {
	if len(bars) != len(signals) {
		return nil, fmt.Errorf("%w: %d bars but %d signals", ErrInvalidConfig, len(bars), len(signals))
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: empty bar sequence", ErrInvalidConfig)
	}

	st := &runState{
		cash:  s.cfg.InitialCapital,
		curve: make([]domain.EquityPoint, 0, len(bars)),
	}

	for i, bar := range bars {
		if err := ctx.Err(); err != nil {
			s.rec.RunFailed()
			return nil, err
		}
		sig := signals[i]

		if st.pos != nil {
			switch {
			case bar.Low <= st.pos.StopLoss:
				s.closePosition(st, bar, st.pos.StopLoss, domain.ExitStopLoss)
			case bar.High >= st.pos.TakeProfit:
				s.closePosition(st, bar, st.pos.TakeProfit, domain.ExitTakeProfit)
			case sig.Action == domain.ActionSell:
				s.closePosition(st, bar, bar.Close, domain.ExitSignal)
			}
		} else if sig.Action == domain.ActionBuy {
			if err := s.openPosition(st, bar); err != nil {
				s.rec.RunFailed()
				return nil, err
			}
		}

		equity := st.cash
		if st.pos != nil {
			equity += float64(st.pos.Quantity) * bar.Close
		}
		st.curve = append(st.curve, domain.EquityPoint{
			Timestamp: bar.Timestamp,
			Value:     roundCents(equity),
		})
	}

	// End of data: flatten any open position at the final close.
	if st.pos != nil {
		last := bars[len(bars)-1]
		s.closePosition(st, last, last.Close, domain.ExitEndOfData)
		st.curve[len(st.curve)-1].Value = roundCents(st.cash)
	}

	report := &domain.BacktestReport{
		Symbol:         bars[0].Symbol,
		Start:          bars[0].Timestamp,
		End:            bars[len(bars)-1].Timestamp,
		InitialCapital: s.cfg.InitialCapital,
		Trades:         st.trades,
		EquityCurve:    st.curve,
	}
	Summarize(report)
	s.rec.RunCompleted()
	return report, nil
}

// openPosition sizes a new long position so that the distance to the stop
// amounts to RiskPerTrade of current capital, then deducts the cost.
// Quantities are whole shares; prices are rounded to cents.
func (s *Simulator) openPosition(st *runState, bar domain.Bar) error {
	if st.pos != nil {
		return fmt.Errorf("%w: position already open at %s", ErrSimulationInvariant, bar.Timestamp)
	}

	entry := roundCents(bar.Close)
	stop := roundCents(entry * (1 - s.cfg.StopLossPct))
	target := roundCents(entry * (1 + s.cfg.TakeProfitPct))
	riskPerShare := entry - stop
	if riskPerShare <= 0 {
		return nil
	}

	qty := int64(math.Floor(st.cash * s.cfg.RiskPerTrade / riskPerShare))
	if s.cfg.MaxPositionValue > 0 {
		if maxQty := int64(math.Floor(s.cfg.MaxPositionValue / entry)); qty > maxQty {
			qty = maxQty
		}
	}
	if affordable := int64(math.Floor(st.cash / entry)); qty > affordable {
		qty = affordable
	}
	if qty < 1 {
		return nil
	}

	st.cash = roundCents(st.cash - float64(qty)*entry)
	st.pos = &domain.Position{
		Symbol:         bar.Symbol,
		EntryTimestamp: bar.Timestamp,
		EntryPrice:     entry,
		Quantity:       qty,
		StopLoss:       stop,
		TakeProfit:     target,
	}
	s.rec.TradeOpened()
	return nil
}

// closePosition exits the open position at the given price and appends the
// completed trade to the ledger.
func (s *Simulator) closePosition(st *runState, bar domain.Bar, price float64, reason domain.ExitReason) {
	pos := st.pos
	exit := roundCents(price)
	proceeds := roundCents(float64(pos.Quantity) * exit)
	st.cash = roundCents(st.cash + proceeds)

	st.trades = append(st.trades, domain.Trade{
		Symbol:         pos.Symbol,
		EntryTimestamp: pos.EntryTimestamp,
		ExitTimestamp:  bar.Timestamp,
		EntryPrice:     pos.EntryPrice,
		ExitPrice:      exit,
		Quantity:       pos.Quantity,
		PnL:            roundCents(float64(pos.Quantity) * (exit - pos.EntryPrice)),
		ReturnPct:      (exit - pos.EntryPrice) / pos.EntryPrice,
		ExitReason:     reason,
	})
	st.pos = nil
	s.rec.TradeClosed(string(reason))
}

// roundCents rounds a dollar amount to the nearest cent. Applied on every
// price and cash mutation so identical inputs reproduce identical ledgers.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
