package strategy

import (
	"math"
	"testing"
	"time"

	"altair/internal/domain"
	"altair/internal/indicator"
)

// sample is one hand-built bar of indicator state for crossover tests.
// NaN marks a warmup (invalid) value.
type sample struct {
	close float64
	rsi   float64
	fast  float64
	slow  float64
}

func buildFrame(samples []sample) ([]domain.Bar, *indicator.Frame) {
	bars := make([]domain.Bar, len(samples))
	frame := &indicator.Frame{
		RSI:    make([]indicator.Value, len(samples)),
		FastMA: make([]indicator.Value, len(samples)),
		SlowMA: make([]indicator.Value, len(samples)),
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, s := range samples {
		bars[i] = domain.Bar{
			Symbol:    "TEST",
			Timestamp: base.AddDate(0, 0, i),
			Open:      s.close, High: s.close + 1, Low: s.close - 1, Close: s.close,
			Volume: 1000,
		}
		frame.RSI[i] = val(s.rsi)
		frame.FastMA[i] = val(s.fast)
		frame.SlowMA[i] = val(s.slow)
	}
	return bars, frame
}

func val(v float64) indicator.Value {
	if math.IsNaN(v) {
		return indicator.Value{}
	}
	return indicator.Value{Float64: v, Valid: true}
}

var nan = math.NaN()

func orProfile() Profile {
	return Profile{
		Name: "test-or", RSIOversold: 30, RSIOverbought: 70,
		FastPeriod: 2, SlowPeriod: 3, RSIPeriod: 2, Rule: RuleOR,
	}
}

func TestGenerateWarmupHolds(t *testing.T) {
	bars, frame := buildFrame([]sample{
		{close: 100, rsi: nan, fast: nan, slow: nan},
		{close: 101, rsi: nan, fast: 100.5, slow: nan},
		{close: 102, rsi: 50, fast: 101, slow: 101},
	})
	signals, err := Generate(orProfile(), bars, frame)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i, sig := range signals {
		if sig.Action != domain.ActionHold || sig.Strength != 0 {
			t.Errorf("signal[%d] = %v/%v, want hold/0 during warmup", i, sig.Action, sig.Strength)
		}
	}
	// Snapshot fields stay zero while indicators are undefined.
	if signals[1].RSI != 0 || signals[1].FastMA != 0 {
		t.Error("warmup signal carries indicator snapshot values")
	}
	if signals[2].RSI != 50 || signals[2].SlowMA != 101 {
		t.Error("defined bar should carry indicator snapshot")
	}
}

func TestGenerateORBuyOnMACrossover(t *testing.T) {
	// Fast MA crosses above slow MA with healthy RSI, close above slow MA.
	bars, frame := buildFrame([]sample{
		{close: 100, rsi: 45, fast: 99, slow: 100},
		{close: 103, rsi: 50, fast: 101, slow: 100},
	})
	signals, err := Generate(orProfile(), bars, frame)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	got := signals[1]
	if got.Action != domain.ActionBuy {
		t.Fatalf("signal[1].Action = %v, want buy", got.Action)
	}
	// One of the two OR conditions satisfied.
	if got.Strength != 0.5 {
		t.Errorf("Strength = %v, want 0.5", got.Strength)
	}
}

func TestGenerateORBuyOnRSIRecovery(t *testing.T) {
	// RSI crosses above oversold while MAs are already bullish.
	bars, frame := buildFrame([]sample{
		{close: 100, rsi: 28, fast: 101, slow: 100},
		{close: 103, rsi: 33, fast: 101.5, slow: 100},
	})
	signals, err := Generate(orProfile(), bars, frame)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if signals[1].Action != domain.ActionBuy {
		t.Fatalf("signal[1].Action = %v, want buy", signals[1].Action)
	}
}

func TestGenerateBuyRequiresCloseAboveSlowMA(t *testing.T) {
	// Same crossover as above, but the close sits below the slow MA.
	bars, frame := buildFrame([]sample{
		{close: 100, rsi: 45, fast: 99, slow: 100},
		{close: 99, rsi: 50, fast: 101, slow: 100},
	})
	signals, err := Generate(orProfile(), bars, frame)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if signals[1].Action != domain.ActionHold {
		t.Errorf("signal[1].Action = %v, want hold when close below slow MA", signals[1].Action)
	}
}

func TestGenerateANDNeedsBothConfirmations(t *testing.T) {
	p := orProfile()
	p.Rule = RuleAND
	p.RSIOversold, p.RSIOverbought = 25, 75

	// MA crossover alone: no buy under AND.
	bars, frame := buildFrame([]sample{
		{close: 100, rsi: 45, fast: 99, slow: 100},
		{close: 103, rsi: 50, fast: 101, slow: 100},
	})
	signals, err := Generate(p, bars, frame)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if signals[1].Action != domain.ActionHold {
		t.Errorf("MA crossover alone produced %v under AND rule, want hold", signals[1].Action)
	}

	// Both RSI recovery and MA crossover on the same bar: buy at full strength.
	bars, frame = buildFrame([]sample{
		{close: 100, rsi: 22, fast: 99, slow: 100},
		{close: 103, rsi: 30, fast: 101, slow: 100},
	})
	signals, err = Generate(p, bars, frame)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if signals[1].Action != domain.ActionBuy || signals[1].Strength != 1 {
		t.Errorf("signal[1] = %v/%v, want buy/1 on simultaneous confirmations",
			signals[1].Action, signals[1].Strength)
	}
}

func TestGenerateSellOnOverboughtCross(t *testing.T) {
	bars, frame := buildFrame([]sample{
		{close: 110, rsi: 68, fast: 105, slow: 100},
		{close: 111, rsi: 72, fast: 106, slow: 100},
	})
	signals, err := Generate(orProfile(), bars, frame)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if signals[1].Action != domain.ActionSell {
		t.Fatalf("signal[1].Action = %v, want sell on RSI overbought cross", signals[1].Action)
	}
	if signals[1].Strength != 0.5 {
		t.Errorf("Strength = %v, want 0.5", signals[1].Strength)
	}
}

func TestGenerateSellOnBearishCrossover(t *testing.T) {
	bars, frame := buildFrame([]sample{
		{close: 100, rsi: 55, fast: 101, slow: 100},
		{close: 98, rsi: 50, fast: 99, slow: 100},
	})
	signals, err := Generate(orProfile(), bars, frame)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if signals[1].Action != domain.ActionSell {
		t.Errorf("signal[1].Action = %v, want sell on bearish MA crossover", signals[1].Action)
	}
}

func TestGenerateSellWinsOverBuy(t *testing.T) {
	// Bearish MA crossover and RSI recovery on the same bar: sell wins.
	bars, frame := buildFrame([]sample{
		{close: 100, rsi: 28, fast: 101, slow: 100},
		{close: 103, rsi: 33, fast: 99, slow: 100},
	})
	signals, err := Generate(orProfile(), bars, frame)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if signals[1].Action != domain.ActionSell {
		t.Errorf("signal[1].Action = %v, want sell to override buy", signals[1].Action)
	}
}

func TestGenerateORPlusMomentumBuy(t *testing.T) {
	p := orProfile()
	p.Rule = RuleORPlus
	p.RSIOversold, p.RSIOverbought = 35, 65

	// No crossover anywhere: bullish MAs, close above fast MA, RSI rising
	// above the momentum floor.
	bars, frame := buildFrame([]sample{
		{close: 104, rsi: 48, fast: 103, slow: 100},
		{close: 105, rsi: 52, fast: 103.5, slow: 100},
	})
	signals, err := Generate(p, bars, frame)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	got := signals[1]
	if got.Action != domain.ActionBuy {
		t.Fatalf("signal[1].Action = %v, want momentum buy", got.Action)
	}
	// Only the momentum condition out of three is satisfied.
	if math.Abs(got.Strength-1.0/3.0) > 1e-12 {
		t.Errorf("Strength = %v, want 1/3", got.Strength)
	}
}

func TestGenerateORPlusWeaknessExit(t *testing.T) {
	p := orProfile()
	p.Rule = RuleORPlus
	p.RSIOversold, p.RSIOverbought = 35, 65

	// RSI drops below the oversold threshold: aggressive profiles bail out.
	bars, frame := buildFrame([]sample{
		{close: 100, rsi: 38, fast: 101, slow: 100},
		{close: 98, rsi: 32, fast: 100.5, slow: 100},
	})
	signals, err := Generate(p, bars, frame)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if signals[1].Action != domain.ActionSell {
		t.Errorf("signal[1].Action = %v, want weakness sell", signals[1].Action)
	}
}

func TestGenerateLengthMismatch(t *testing.T) {
	bars, frame := buildFrame([]sample{{close: 100, rsi: 50, fast: 100, slow: 100}})
	if _, err := Generate(orProfile(), bars[:0], frame); err == nil {
		t.Error("Generate accepted mismatched frame and bar lengths")
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	// Real indicator path: enough bars for small periods, no assertion on
	// specific actions, just shape and warmup behavior.
	closes := []float64{100, 101, 99, 102, 103, 101, 104, 105, 103, 106, 107, 108}
	bars := make([]domain.Bar, len(closes))
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = domain.Bar{
			Symbol: "TEST", Timestamp: base.AddDate(0, 0, i),
			Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 500,
		}
	}

	p := Profile{
		Name: "tiny", RSIOversold: 30, RSIOverbought: 70,
		FastPeriod: 3, SlowPeriod: 5, RSIPeriod: 3, Rule: RuleOR,
	}
	signals, err := Analyze(p, bars)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(signals) != len(bars) {
		t.Fatalf("got %d signals for %d bars", len(signals), len(bars))
	}
	for i := 0; i < p.WarmupBars()-1; i++ {
		if signals[i].Action != domain.ActionHold {
			t.Errorf("signal[%d] = %v inside warmup, want hold", i, signals[i].Action)
		}
	}
}
