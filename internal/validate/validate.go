// Package validate checks OHLCV bar sequences before they reach the
// indicator engine. Problems are collected as field-level errors rather than
// aborting on the first defect, so callers can report everything wrong with
// a data set at once.
package validate

import (
	"fmt"
	"strings"

	"altair/internal/domain"
)

// FieldError describes a single validation failure.
type FieldError struct {
	Index   int    // bar index, -1 for sequence-level errors
	Field   string // "open", "high", "low", "close", "volume", "timestamp", "bars"
	Message string
}

func (e FieldError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("bar[%d] %s: %s", e.Index, e.Field, e.Message)
}

// Errors is the full list of validation failures for one bar sequence.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return fmt.Sprintf("bar validation failed: %s", strings.Join(msgs, "; "))
}

// Bars validates an ordered bar sequence. It returns nil when the sequence
// is clean, otherwise an Errors value listing every failure found.
//
// Checks per bar: positive prices, high >= max(open, close),
// low <= min(open, close), high >= low, volume >= 0, non-zero timestamp.
// Checks across bars: strictly increasing timestamps (no duplicates).
func Bars(bars []domain.Bar) error {
	var errs Errors

	if len(bars) == 0 {
		errs = append(errs, FieldError{Index: -1, Field: "bars", Message: "sequence is empty"})
		return errs
	}

	for i, b := range bars {
		if b.Timestamp.IsZero() {
			errs = append(errs, FieldError{Index: i, Field: "timestamp", Message: "missing timestamp"})
		}
		for _, p := range []struct {
			name string
			v    float64
		}{{"open", b.Open}, {"high", b.High}, {"low", b.Low}, {"close", b.Close}} {
			if p.v <= 0 {
				errs = append(errs, FieldError{
					Index: i, Field: p.name,
					Message: fmt.Sprintf("non-positive price %v", p.v),
				})
			}
		}
		if b.High < b.Low {
			errs = append(errs, FieldError{
				Index: i, Field: "high",
				Message: fmt.Sprintf("high %v below low %v", b.High, b.Low),
			})
		}
		if b.High < b.Open || b.High < b.Close {
			errs = append(errs, FieldError{
				Index: i, Field: "high",
				Message: fmt.Sprintf("high %v below open/close", b.High),
			})
		}
		if b.Low > b.Open || b.Low > b.Close {
			errs = append(errs, FieldError{
				Index: i, Field: "low",
				Message: fmt.Sprintf("low %v above open/close", b.Low),
			})
		}
		if b.Volume < 0 {
			errs = append(errs, FieldError{
				Index: i, Field: "volume",
				Message: fmt.Sprintf("negative volume %d", b.Volume),
			})
		}
		if i > 0 && !b.Timestamp.After(bars[i-1].Timestamp) {
			errs = append(errs, FieldError{
				Index: i, Field: "timestamp",
				Message: fmt.Sprintf("timestamp %s not after previous bar", b.Timestamp.Format("2006-01-02T15:04:05Z07:00")),
			})
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
