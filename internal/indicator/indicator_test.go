package indicator

import (
	"errors"
	"math"
	"testing"
	"time"

	"altair/internal/domain"
)

func barsFromCloses(closes []float64) []domain.Bar {
	bars := make([]domain.Bar, len(closes))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = domain.Bar{
			Symbol:    "TEST",
			Timestamp: base.AddDate(0, 0, i),
			Open:      c, High: c + 1, Low: c - 1, Close: c,
			Volume: 1000,
		}
	}
	return bars
}

func TestComputeInsufficientData(t *testing.T) {
	bars := barsFromCloses([]float64{100, 101, 102})
	_, err := Compute(bars, 2, 10, 14)
	if err == nil {
		t.Fatal("Compute returned nil error for short sequence")
	}
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("error = %v, want ErrInsufficientData", err)
	}
}

func TestComputeWarmupAlignment(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	frame, err := Compute(barsFromCloses(closes), 5, 10, 14)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if frame.Len() != 30 {
		t.Fatalf("frame length = %d, want 30", frame.Len())
	}

	// Fast MA defined from index 4, slow from index 9, RSI from index 14.
	for i := 0; i < 4; i++ {
		if frame.FastMA[i].Valid {
			t.Errorf("FastMA[%d] valid during warmup", i)
		}
	}
	if !frame.FastMA[4].Valid {
		t.Error("FastMA[4] invalid, want first defined value")
	}
	if frame.SlowMA[8].Valid || !frame.SlowMA[9].Valid {
		t.Error("SlowMA warmup boundary wrong, want first value at index 9")
	}
	if frame.RSI[13].Valid || !frame.RSI[14].Valid {
		t.Error("RSI warmup boundary wrong, want first value at index 14")
	}
}

func TestSMAValues(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6}
	got := sma(closes, 3)
	want := []float64{0, 0, 2, 3, 4, 5}
	for i, w := range want {
		if i < 2 {
			if got[i].Valid {
				t.Errorf("sma[%d] valid during warmup", i)
			}
			continue
		}
		if !got[i].Valid || math.Abs(got[i].Float64-w) > 1e-12 {
			t.Errorf("sma[%d] = %+v, want %v", i, got[i], w)
		}
	}
}

func TestRSIMonotoneSeries(t *testing.T) {
	// Strictly rising closes: no losses, RSI pegged at 100.
	up := make([]float64, 20)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	for i, v := range rsi(up, 14) {
		if v.Valid && v.Float64 != 100 {
			t.Errorf("rsi[%d] = %v for all-gain series, want 100", i, v.Float64)
		}
	}

	// Strictly falling closes: no gains, RSI at 0.
	down := make([]float64, 20)
	for i := range down {
		down[i] = 100 - float64(i)
	}
	for i, v := range rsi(down, 14) {
		if v.Valid && v.Float64 != 0 {
			t.Errorf("rsi[%d] = %v for all-loss series, want 0", i, v.Float64)
		}
	}
}

func TestRSIBounded(t *testing.T) {
	// Pseudo-random walk, deterministic seedless generation.
	closes := make([]float64, 120)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		step := float64((i*7919)%13) - 6
		closes[i] = closes[i-1] + step/2
	}
	for i, v := range rsi(closes, 14) {
		if !v.Valid {
			continue
		}
		if v.Float64 < 0 || v.Float64 > 100 {
			t.Errorf("rsi[%d] = %v outside [0,100]", i, v.Float64)
		}
	}
}

func TestComputeDeterministic(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 5*math.Sin(float64(i)/4)
	}
	bars := barsFromCloses(closes)

	a, err := Compute(bars, 9, 21, 14)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	b, err := Compute(bars, 9, 21, 14)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i := 0; i < a.Len(); i++ {
		if a.RSI[i] != b.RSI[i] || a.FastMA[i] != b.FastMA[i] || a.SlowMA[i] != b.SlowMA[i] {
			t.Fatalf("frame differs at index %d across identical runs", i)
		}
	}
}
