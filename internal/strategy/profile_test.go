package strategy

import "testing"

func TestPresets(t *testing.T) {
	names := Names()
	if len(names) != 3 {
		t.Fatalf("Names() = %v, want 3 presets", names)
	}
	if names[0] != "aggressive" || names[1] != "balanced" || names[2] != "conservative" {
		t.Errorf("Names() = %v, want sorted [aggressive balanced conservative]", names)
	}

	for _, name := range names {
		p, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("preset %q fails its own validation: %v", name, err)
		}
	}

	balanced, _ := Get(DefaultProfile)
	if balanced.Rule != RuleOR || balanced.RSIOversold != 30 || balanced.RSIOverbought != 70 {
		t.Errorf("balanced preset = %+v, want OR rule with 30/70 thresholds", balanced)
	}
	if balanced.FastPeriod != 10 || balanced.SlowPeriod != 50 || balanced.RSIPeriod != 14 {
		t.Errorf("balanced periods = %d/%d/%d, want 10/50/14",
			balanced.FastPeriod, balanced.SlowPeriod, balanced.RSIPeriod)
	}

	conservative, _ := Get("conservative")
	if conservative.Rule != RuleAND || conservative.RSIOversold != 25 || conservative.RSIOverbought != 75 {
		t.Errorf("conservative preset = %+v, want AND rule with 25/75 thresholds", conservative)
	}

	aggressive, _ := Get("aggressive")
	if aggressive.Rule != RuleORPlus || aggressive.FastPeriod != 8 || aggressive.SlowPeriod != 40 {
		t.Errorf("aggressive preset = %+v, want OR_PLUS rule with 8/40 periods", aggressive)
	}
}

func TestGetUnknown(t *testing.T) {
	if _, err := Get("yolo"); err == nil {
		t.Error("Get returned nil error for unknown strategy")
	}
}

func TestProfileValidate(t *testing.T) {
	base := Profile{
		Name:          "custom",
		RSIOversold:   30,
		RSIOverbought: 70,
		FastPeriod:    5,
		SlowPeriod:    20,
		RSIPeriod:     14,
		Rule:          RuleOR,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid custom profile rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Profile)
	}{
		{"inverted thresholds", func(p *Profile) { p.RSIOversold, p.RSIOverbought = 70, 30 }},
		{"threshold out of range", func(p *Profile) { p.RSIOverbought = 100 }},
		{"zero fast period", func(p *Profile) { p.FastPeriod = 0 }},
		{"fast not below slow", func(p *Profile) { p.FastPeriod = 20 }},
		{"unknown rule", func(p *Profile) { p.Rule = "xor" }},
	}
	for _, tc := range cases {
		p := base
		tc.mutate(&p)
		if err := p.Validate(); err == nil {
			t.Errorf("%s: Validate returned nil error", tc.name)
		}
	}
}

func TestWarmupBars(t *testing.T) {
	p := Profile{SlowPeriod: 50, RSIPeriod: 14}
	if got := p.WarmupBars(); got != 50 {
		t.Errorf("WarmupBars = %d, want 50", got)
	}
	p = Profile{SlowPeriod: 10, RSIPeriod: 14}
	if got := p.WarmupBars(); got != 15 {
		t.Errorf("WarmupBars = %d, want 15", got)
	}
}
