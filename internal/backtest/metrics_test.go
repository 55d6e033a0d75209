package backtest

import (
	"math"
	"testing"
	"time"

	"altair/internal/domain"
)

func curveOf(values ...float64) []domain.EquityPoint {
	curve := make([]domain.EquityPoint, len(values))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		curve[i] = domain.EquityPoint{Timestamp: base.AddDate(0, 0, i), Value: v}
	}
	return curve
}

func TestMaxDrawdown(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"flat", []float64{100, 100, 100}, 0},
		{"monotone rise", []float64{100, 110, 120}, 0},
		{"single dip", []float64{10000, 11000, 9900, 10500}, -0.1},
		{"trough after later peak", []float64{100, 90, 120, 60}, -0.5},
		{"full curve decline", []float64{100, 80, 60}, -0.4},
	}
	for _, tc := range cases {
		got := maxDrawdown(curveOf(tc.values...))
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("%s: maxDrawdown = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSummarizeNoTrades(t *testing.T) {
	report := &domain.BacktestReport{
		InitialCapital: 10000,
		EquityCurve:    curveOf(10000, 10000),
	}
	Summarize(report)

	if report.FinalCapital != 10000 || report.TotalReturn != 0 || report.TotalReturnPct != 0 {
		t.Errorf("no-trade run reported movement: %+v", report)
	}
	if report.WinRate != 0 || report.AvgReturnPct != 0 || report.MaxDrawdownPct != 0 {
		t.Errorf("no-trade metrics = %v/%v/%v, want zeros",
			report.WinRate, report.AvgReturnPct, report.MaxDrawdownPct)
	}
}

func TestSummarizeMixedLedger(t *testing.T) {
	report := &domain.BacktestReport{
		InitialCapital: 10000,
		EquityCurve:    curveOf(10000, 10450, 10300),
		Trades: []domain.Trade{
			{ReturnPct: 0.045, PnL: 450, ExitReason: domain.ExitTakeProfit},
			{ReturnPct: -0.015, PnL: -150, ExitReason: domain.ExitStopLoss},
		},
	}
	Summarize(report)

	if report.FinalCapital != 10300 {
		t.Errorf("FinalCapital = %v, want last equity value 10300", report.FinalCapital)
	}
	if report.TotalReturn != 300 {
		t.Errorf("TotalReturn = %v, want 300", report.TotalReturn)
	}
	if math.Abs(report.TotalReturnPct-0.03) > 1e-12 {
		t.Errorf("TotalReturnPct = %v, want 0.03", report.TotalReturnPct)
	}
	if report.WinRate != 0.5 {
		t.Errorf("WinRate = %v, want 0.5", report.WinRate)
	}
	if math.Abs(report.AvgReturnPct-0.015) > 1e-12 {
		t.Errorf("AvgReturnPct = %v, want 0.015", report.AvgReturnPct)
	}
	wantDD := (10300.0 - 10450.0) / 10450.0
	if math.Abs(report.MaxDrawdownPct-wantDD) > 1e-12 {
		t.Errorf("MaxDrawdownPct = %v, want %v", report.MaxDrawdownPct, wantDD)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	report := &domain.BacktestReport{
		InitialCapital: 10000,
		EquityCurve:    curveOf(10000, 10100),
		Trades:         []domain.Trade{{ReturnPct: 0.01, PnL: 100}},
	}
	Summarize(report)
	first := *report
	Summarize(report)
	if !equalReports(&first, report) {
		t.Error("Summarize is not idempotent")
	}
}

func equalReports(a, b *domain.BacktestReport) bool {
	return a.FinalCapital == b.FinalCapital &&
		a.TotalReturn == b.TotalReturn &&
		a.TotalReturnPct == b.TotalReturnPct &&
		a.WinRate == b.WinRate &&
		a.AvgReturnPct == b.AvgReturnPct &&
		a.MaxDrawdownPct == b.MaxDrawdownPct
}
