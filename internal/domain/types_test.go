package domain

import (
	"testing"
	"time"
)

func TestTypesExist(t *testing.T) {
	// Verify Bar can be instantiated with zero values.
	bar := Bar{}
	if bar.Symbol != "" {
		t.Error("expected empty Symbol for zero-value Bar")
	}
	if !bar.Timestamp.IsZero() {
		t.Error("expected zero Timestamp for zero-value Bar")
	}
	if bar.Open != 0 || bar.High != 0 || bar.Low != 0 || bar.Close != 0 {
		t.Error("expected zero OHLC values for zero-value Bar")
	}

	// Verify Trade can be instantiated with zero values.
	trade := Trade{}
	if trade.Quantity != 0 || trade.PnL != 0 || trade.ReturnPct != 0 {
		t.Error("expected zero Quantity/PnL/ReturnPct for zero-value Trade")
	}
	if trade.ExitReason != "" {
		t.Error("expected empty ExitReason for zero-value Trade")
	}

	// Verify enum constants are defined correctly.
	if ActionBuy != "buy" || ActionSell != "sell" || ActionHold != "hold" {
		t.Errorf("Action constants = %q/%q/%q, want buy/sell/hold", ActionBuy, ActionSell, ActionHold)
	}
	if ExitSignal != "signal" {
		t.Errorf("ExitSignal = %q, want %q", ExitSignal, "signal")
	}
	if ExitStopLoss != "stop_loss" {
		t.Errorf("ExitStopLoss = %q, want %q", ExitStopLoss, "stop_loss")
	}
	if ExitTakeProfit != "take_profit" {
		t.Errorf("ExitTakeProfit = %q, want %q", ExitTakeProfit, "take_profit")
	}
	if ExitEndOfData != "end_of_data" {
		t.Errorf("ExitEndOfData = %q, want %q", ExitEndOfData, "end_of_data")
	}

	// Verify BacktestReport zero value.
	rep := BacktestReport{}
	if !rep.CreatedAt.IsZero() || len(rep.Trades) != 0 || len(rep.EquityCurve) != 0 {
		t.Error("expected empty ledger and curve for zero-value BacktestReport")
	}

	_ = EquityPoint{Timestamp: time.Now(), Value: 10000}
}
