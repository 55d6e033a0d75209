// Package config loads the altair configuration from a YAML file and
// applies environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for altair.
type Config struct {
	Storage  Storage  `yaml:"storage"`
	Alpaca   Alpaca   `yaml:"alpaca"`
	Logging  Logging  `yaml:"logging"`
	Backtest Backtest `yaml:"backtest"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Alpaca holds credentials and endpoints for the Alpaca market-data API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
	DataURL   string `yaml:"data_url"`
}

// Logging configures the application logger.
type Logging struct {
	Level string `yaml:"level"`
}

// Backtest holds the default simulation parameters. Command-line flags may
// override InitialCapital and Strategy per run.
type Backtest struct {
	InitialCapital   float64 `yaml:"initial_capital"`
	RiskPerTrade     float64 `yaml:"risk_per_trade"`
	StopLossPct      float64 `yaml:"stop_loss_pct"`
	TakeProfitPct    float64 `yaml:"take_profit_pct"`
	MaxPositionValue float64 `yaml:"max_position_value"`
	Strategy         string  `yaml:"strategy"`
}

// Default returns the built-in configuration: $10k capital, 2% risk per
// trade, 2% stop, 4% target, balanced strategy.
func Default() *Config {
	return &Config{
		Storage: Storage{
			DataDir:    "data",
			SQLitePath: "data/altair.db",
		},
		Logging: Logging{Level: "info"},
		Backtest: Backtest{
			InitialCapital:   10000,
			RiskPerTrade:     0.02,
			StopLossPct:      0.02,
			TakeProfitPct:    0.04,
			MaxPositionValue: 1000,
			Strategy:         "balanced",
		},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, fills unset
// fields from Default, and then applies environment variable overrides.
// An empty path skips the file and uses defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}

	// Standard Alpaca env vars (highest priority — canonical names used by SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}

	if v := os.Getenv("RISK_PER_TRADE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Backtest.RiskPerTrade = f
		}
	}
	if v := os.Getenv("STOP_LOSS_PCT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Backtest.StopLossPct = f
		}
	}
	if v := os.Getenv("TAKE_PROFIT_PCT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Backtest.TakeProfitPct = f
		}
	}
	if v := os.Getenv("MAX_POSITION_SIZE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Backtest.MaxPositionValue = f
		}
	}
}
