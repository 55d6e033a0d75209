// Package indicator computes the technical indicators used by the signal
// generator: Wilder-smoothed RSI and simple moving averages. All functions
// are pure; the same bar sequence and periods always produce the same frame.
package indicator

import (
	"errors"
	"fmt"

	"altair/internal/domain"
)

// ErrInsufficientData is returned when the bar sequence is too short for any
// signal to ever be produced with the requested periods. Callers can recover
// by fetching more history.
var ErrInsufficientData = errors.New("insufficient bar data")

// Value is an indicator sample that may still be warming up. Warmup samples
// have Valid == false and must never register a threshold crossover.
type Value struct {
	Float64 float64
	Valid   bool
}

// Frame holds per-bar indicator series aligned with the input bar sequence:
// index i of each slice corresponds to bars[i].
type Frame struct {
	RSI    []Value
	FastMA []Value
	SlowMA []Value
}

// Len returns the number of bars the frame covers.
func (f *Frame) Len() int { return len(f.RSI) }

// Compute derives RSI and fast/slow moving averages from the bar sequence.
// Leading entries of each series are invalid until enough history exists:
// rsiPeriod bars for RSI, fastPeriod-1 / slowPeriod-1 bars for the MAs.
//
// It fails with an ErrInsufficientData-wrapped error when fewer than
// max(slowPeriod, rsiPeriod)+1 bars are supplied, since no bar could ever
// have a fully defined indicator set.
func Compute(bars []domain.Bar, fastPeriod, slowPeriod, rsiPeriod int) (*Frame, error) {
	if fastPeriod <= 0 || slowPeriod <= 0 || rsiPeriod <= 0 {
		return nil, fmt.Errorf("indicator periods must be positive (fast=%d slow=%d rsi=%d)",
			fastPeriod, slowPeriod, rsiPeriod)
	}
	need := slowPeriod
	if rsiPeriod > need {
		need = rsiPeriod
	}
	need++
	if len(bars) < need {
		return nil, fmt.Errorf("%w: have %d bars, need at least %d for periods (fast=%d slow=%d rsi=%d)",
			ErrInsufficientData, len(bars), need, fastPeriod, slowPeriod, rsiPeriod)
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	return &Frame{
		RSI:    rsi(closes, rsiPeriod),
		FastMA: sma(closes, fastPeriod),
		SlowMA: sma(closes, slowPeriod),
	}, nil
}

// sma computes a simple arithmetic mean over the trailing `period` values.
// Entries before index period-1 are invalid.
func sma(closes []float64, period int) []Value {
	out := make([]Value, len(closes))
	var sum float64
	for i, c := range closes {
		sum += c
		if i >= period {
			sum -= closes[i-period]
		}
		if i >= period-1 {
			out[i] = Value{Float64: sum / float64(period), Valid: true}
		}
	}
	return out
}

// rsi computes the Wilder-smoothed Relative Strength Index. The first
// average gain/loss is a simple mean over the first `period` price changes;
// subsequent values use Wilder smoothing:
//
//	avg = (prevAvg*(period-1) + current) / period
//
// Entries before index `period` are invalid. Results are clamped to [0, 100].
func rsi(closes []float64, period int) []Value {
	out := make([]Value, len(closes))
	if len(closes) <= period {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = Value{Float64: rsiFromAverages(avgGain, avgLoss), Valid: true}

	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = Value{Float64: rsiFromAverages(avgGain, avgLoss), Valid: true}
	}
	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	v := 100 - 100/(1+rs)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
