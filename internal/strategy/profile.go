// Package strategy turns an indicator frame into per-bar trading signals
// under one of a closed set of strategy profiles. Profiles are plain
// configuration values; all rule logic lives in the signal generator so the
// three variants stay auditable side by side.
package strategy

import (
	"fmt"
	"sort"
)

// Rule selects how a profile combines its indicator conditions.
type Rule string

const (
	// RuleAND requires the RSI recovery and the MA crossover on the same bar.
	RuleAND Rule = "and"
	// RuleOR accepts either the RSI recovery or the MA crossover.
	RuleOR Rule = "or"
	// RuleORPlus adds a momentum entry on top of RuleOR and a weakness exit.
	RuleORPlus Rule = "or_plus"
)

// Profile is an immutable strategy parameter set. Use one of the named
// presets via Get, or construct a custom instance and Validate it.
type Profile struct {
	Name          string
	Description   string
	RSIOversold   float64
	RSIOverbought float64
	FastPeriod    int
	SlowPeriod    int
	RSIPeriod     int
	Rule          Rule
}

// momentumRSIFloor is the minimum RSI for the aggressive momentum entry.
const momentumRSIFloor = 40.0

// DefaultProfile is the preset used when no strategy is named.
const DefaultProfile = "balanced"

var presets = map[string]Profile{
	"conservative": {
		Name:          "conservative",
		Description:   "Fewer trades, stricter conditions, lower risk",
		RSIOversold:   25,
		RSIOverbought: 75,
		FastPeriod:    15,
		SlowPeriod:    60,
		RSIPeriod:     14,
		Rule:          RuleAND,
	},
	"balanced": {
		Name:          "balanced",
		Description:   "Moderate trades, balanced signals (default)",
		RSIOversold:   30,
		RSIOverbought: 70,
		FastPeriod:    10,
		SlowPeriod:    50,
		RSIPeriod:     14,
		Rule:          RuleOR,
	},
	"aggressive": {
		Name:          "aggressive",
		Description:   "More trades, looser conditions, higher risk",
		RSIOversold:   35,
		RSIOverbought: 65,
		FastPeriod:    8,
		SlowPeriod:    40,
		RSIPeriod:     14,
		Rule:          RuleORPlus,
	},
}

// Get returns the named preset profile.
func Get(name string) (Profile, error) {
	p, ok := presets[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown strategy %q, choose from %v", name, Names())
	}
	return p, nil
}

// Names returns the sorted preset names.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns all preset profiles sorted by name.
func List() []Profile {
	profiles := make([]Profile, 0, len(presets))
	for _, name := range Names() {
		profiles = append(profiles, presets[name])
	}
	return profiles
}

// Validate checks that a profile's parameters are internally consistent.
func (p Profile) Validate() error {
	if p.RSIOversold <= 0 || p.RSIOverbought >= 100 {
		return fmt.Errorf("RSI thresholds (%v, %v) must lie inside (0, 100)", p.RSIOversold, p.RSIOverbought)
	}
	if p.RSIOversold >= p.RSIOverbought {
		return fmt.Errorf("RSIOversold (%v) must be below RSIOverbought (%v)", p.RSIOversold, p.RSIOverbought)
	}
	if p.FastPeriod <= 0 || p.SlowPeriod <= 0 || p.RSIPeriod <= 0 {
		return fmt.Errorf("periods must be positive (fast=%d slow=%d rsi=%d)", p.FastPeriod, p.SlowPeriod, p.RSIPeriod)
	}
	if p.FastPeriod >= p.SlowPeriod {
		return fmt.Errorf("FastPeriod (%d) must be below SlowPeriod (%d)", p.FastPeriod, p.SlowPeriod)
	}
	switch p.Rule {
	case RuleAND, RuleOR, RuleORPlus:
	default:
		return fmt.Errorf("unknown combination rule %q", p.Rule)
	}
	return nil
}

// WarmupBars returns the number of leading bars that can never carry a
// Buy/Sell signal for this profile.
func (p Profile) WarmupBars() int {
	warmup := p.SlowPeriod
	if p.RSIPeriod+1 > warmup {
		warmup = p.RSIPeriod + 1
	}
	return warmup
}
