package backtest

import "altair/internal/domain"

// Summarize fills the derived metric fields of a report from its trade
// ledger and equity curve. It is a pure function of those two inputs plus
// InitialCapital; calling it twice on the same report is idempotent.
//
// All percentage fields are ratios: WinRate in [0, 1], MaxDrawdownPct <= 0.
// Runs with no trades report zero for the trade-derived metrics rather than
// a division error.
func Summarize(report *domain.BacktestReport) {
	report.FinalCapital = report.InitialCapital
	if n := len(report.EquityCurve); n > 0 {
		report.FinalCapital = report.EquityCurve[n-1].Value
	}
	report.TotalReturn = roundCents(report.FinalCapital - report.InitialCapital)
	report.TotalReturnPct = report.TotalReturn / report.InitialCapital

	report.WinRate = 0
	report.AvgReturnPct = 0
	if len(report.Trades) > 0 {
		wins := 0
		sum := 0.0
		for _, t := range report.Trades {
			if t.ReturnPct > 0 {
				wins++
			}
			sum += t.ReturnPct
		}
		report.WinRate = float64(wins) / float64(len(report.Trades))
		report.AvgReturnPct = sum / float64(len(report.Trades))
	}

	report.MaxDrawdownPct = maxDrawdown(report.EquityCurve)
}

// maxDrawdown returns the deepest peak-to-trough decline of the equity
// curve as a non-positive ratio, or 0 for a curve that never declines.
func maxDrawdown(curve []domain.EquityPoint) float64 {
	peak := 0.0
	worst := 0.0
	for _, p := range curve {
		if p.Value > peak {
			peak = p.Value
		}
		if peak > 0 {
			if dd := (p.Value - peak) / peak; dd < worst {
				worst = dd
			}
		}
	}
	return worst
}
