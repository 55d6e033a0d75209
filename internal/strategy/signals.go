package strategy

import (
	"fmt"

	"altair/internal/domain"
	"altair/internal/indicator"
)

// barState is the one bar of prior indicator history the crossover checks
// need. Generate folds it over the sequence instead of keeping mutable
// fields on a strategy object, so signal generation stays a pure function.
type barState struct {
	rsi  indicator.Value
	fast indicator.Value
	slow indicator.Value
}

// Analyze computes the profile's indicators over the bars and generates the
// per-bar signal series in one step.
func Analyze(p Profile, bars []domain.Bar) ([]domain.Signal, error) {
	frame, err := indicator.Compute(bars, p.FastPeriod, p.SlowPeriod, p.RSIPeriod)
	if err != nil {
		return nil, err
	}
	return Generate(p, bars, frame)
}

// Generate applies the profile's combination rule to each bar of the frame,
// producing exactly one Signal per input bar. Bars whose indicators are
// still warming up always yield Hold with strength 0. When a bar satisfies
// both a sell and a buy condition, the sell wins.
func Generate(p Profile, bars []domain.Bar, frame *indicator.Frame) ([]domain.Signal, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("strategy %q: %w", p.Name, err)
	}
	if frame.Len() != len(bars) {
		return nil, fmt.Errorf("frame covers %d bars, signal input has %d", frame.Len(), len(bars))
	}

	signals := make([]domain.Signal, len(bars))
	var prev barState

	for i, bar := range bars {
		cur := barState{rsi: frame.RSI[i], fast: frame.FastMA[i], slow: frame.SlowMA[i]}
		sig := domain.Signal{
			Timestamp: bar.Timestamp,
			Action:    domain.ActionHold,
			Close:     bar.Close,
		}

		if cur.rsi.Valid && cur.fast.Valid && cur.slow.Valid {
			sig.RSI = cur.rsi.Float64
			sig.FastMA = cur.fast.Float64
			sig.SlowMA = cur.slow.Float64

			if action, strength := evaluate(p, bar.Close, prev, cur); action != domain.ActionHold {
				sig.Action = action
				sig.Strength = strength
			}
		}

		signals[i] = sig
		prev = cur
	}
	return signals, nil
}

// evaluate applies the profile's rule to one bar. It returns Hold with
// strength 0 when no condition fires.
func evaluate(p Profile, close float64, prev, cur barState) (domain.Action, float64) {
	rsiRecovery := crossAbove(prev.rsi, cur.rsi, p.RSIOversold)
	maCrossUp := maCrossedUp(prev, cur)
	maCrossDown := maCrossedDown(prev, cur)
	bullish := cur.fast.Float64 > cur.slow.Float64
	rsiHealthy := cur.rsi.Float64 > p.RSIOversold && cur.rsi.Float64 < p.RSIOverbought
	aboveSlow := close > cur.slow.Float64

	// Sell conditions are shared by all rules; OR_PLUS adds a weakness exit.
	sellConds := []bool{
		crossAbove(prev.rsi, cur.rsi, p.RSIOverbought),
		maCrossDown,
	}
	if p.Rule == RuleORPlus {
		sellConds = append(sellConds, crossBelow(prev.rsi, cur.rsi, p.RSIOversold))
	}
	if sold, strength := anyOf(sellConds); sold {
		return domain.ActionSell, strength
	}

	var buyConds []bool
	switch p.Rule {
	case RuleAND:
		// Both confirmations on the same bar.
		if rsiRecovery && maCrossUp && aboveSlow {
			return domain.ActionBuy, 1
		}
		return domain.ActionHold, 0
	case RuleOR:
		buyConds = []bool{
			rsiRecovery && bullish,
			maCrossUp && rsiHealthy,
		}
	case RuleORPlus:
		momentum := bullish &&
			close > cur.fast.Float64 &&
			cur.rsi.Float64 > momentumRSIFloor &&
			cur.rsi.Float64 < p.RSIOverbought &&
			prev.rsi.Valid && cur.rsi.Float64 > prev.rsi.Float64
		buyConds = []bool{
			rsiRecovery && bullish,
			maCrossUp && cur.rsi.Float64 < p.RSIOverbought,
			momentum,
		}
	}

	if !aboveSlow {
		return domain.ActionHold, 0
	}
	if bought, strength := anyOf(buyConds); bought {
		return domain.ActionBuy, strength
	}
	return domain.ActionHold, 0
}

// anyOf reports whether any condition holds and the fraction that do.
func anyOf(conds []bool) (bool, float64) {
	n := 0
	for _, c := range conds {
		if c {
			n++
		}
	}
	if n == 0 {
		return false, 0
	}
	return true, float64(n) / float64(len(conds))
}

// crossAbove reports a threshold crossover: the previous value was at or
// below the threshold and the current value is above it. Warmup values on
// either side never register a crossover.
func crossAbove(prev, cur indicator.Value, threshold float64) bool {
	return prev.Valid && cur.Valid && prev.Float64 <= threshold && cur.Float64 > threshold
}

// crossBelow is the inverse transition.
func crossBelow(prev, cur indicator.Value, threshold float64) bool {
	return prev.Valid && cur.Valid && prev.Float64 >= threshold && cur.Float64 < threshold
}

func maCrossedUp(prev, cur barState) bool {
	return prev.fast.Valid && prev.slow.Valid && cur.fast.Valid && cur.slow.Valid &&
		prev.fast.Float64 <= prev.slow.Float64 && cur.fast.Float64 > cur.slow.Float64
}

func maCrossedDown(prev, cur barState) bool {
	return prev.fast.Valid && prev.slow.Valid && cur.fast.Valid && cur.slow.Valid &&
		prev.fast.Float64 >= prev.slow.Float64 && cur.fast.Float64 < cur.slow.Float64
}
