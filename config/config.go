package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type LotMode string

const (
	LotModeAuto   LotMode = "auto"   // sized from risk % and stop distance
	LotModeManual LotMode = "manual" // fixed lots
)

// BotConfig holds every tunable knob of the control loop. Each numeric field
// has an enumerated valid range enforced by Validate; out-of-range
// configuration is rejected at load time before any trading starts.
type BotConfig struct {
	Symbol string `yaml:"symbol"`

	// Trading
	EnableAutoTrade bool    `yaml:"enable_auto_trade"`
	MinConfidence   float64 `yaml:"min_confidence"`    // 50..100
	MaxPositions    int     `yaml:"max_positions"`     // 1..10

	// Risk
	LotSizeMode           LotMode `yaml:"lot_mode"`
	RiskPercent           float64 `yaml:"risk_percent"`             // 0.1..5
	FixedLots             float64 `yaml:"fixed_lots"`               // 0.01..1e6
	MaxTotalLots          float64 `yaml:"max_total_lots"`           // 0.01..1e6
	MaxDailyLossPercent   float64 `yaml:"max_daily_loss_percent"`   // 1..20
	MaxSessionLossPercent float64 `yaml:"max_session_loss_percent"` // 1..30
	MaxDailyTrades        int     `yaml:"max_daily_trades"`         // 1..50

	// Trade management
	EnableBreakeven              bool    `yaml:"enable_breakeven"`
	BreakevenTriggerPercent      float64 `yaml:"be_trigger_percent"`       // 0.01..10
	BreakevenLockPercent         float64 `yaml:"be_lock_percent"`          // 0..5
	BreakevenTier2TriggerPercent float64 `yaml:"be_tier2_trigger_percent"` // 0.01..20
	BreakevenTier2LockPercent    float64 `yaml:"be_tier2_lock_percent"`    // 0.1..10
	EnableTrailing               bool    `yaml:"enable_trailing"`
	TrailStartPercent            float64 `yaml:"trail_start_percent"`    // 0.01..10
	TrailDistancePercent         float64 `yaml:"trail_distance_percent"` // 0.01..5
	ManageAllPositions           bool    `yaml:"manage_all_positions"`

	// Adaptive engines
	EnableAdaptiveEngines   bool `yaml:"enable_adaptive_engines"`
	EnableRegimeDetection   bool `yaml:"enable_regime_detection"`
	EnableCorrelationFilter bool `yaml:"enable_correlation_filter"`
	AdjustmentFrequency     int  `yaml:"adjustment_frequency"` // 5..50

	// Ops
	DataDir     string `yaml:"data_dir"`
	LogFile     string `yaml:"log_file"`
	MetricsPort int    `yaml:"metrics_port"`
}

// Default returns the configuration matching the original parameter defaults.
func Default() BotConfig {
	return BotConfig{
		Symbol:          "XAUUSD",
		EnableAutoTrade: true,
		MinConfidence:   75,
		MaxPositions:    3,

		LotSizeMode:           LotModeAuto,
		RiskPercent:           1.0,
		FixedLots:             0.01,
		MaxTotalLots:          0.1,
		MaxDailyLossPercent:   3.0,
		MaxSessionLossPercent: 5.0,
		MaxDailyTrades:        10,

		EnableBreakeven:              true,
		BreakevenTriggerPercent:      0.5,
		BreakevenLockPercent:         0.1,
		BreakevenTier2TriggerPercent: 3.0,
		BreakevenTier2LockPercent:    1.5,
		EnableTrailing:               true,
		TrailStartPercent:            0.7,
		TrailDistancePercent:         0.3,
		ManageAllPositions:           false,

		EnableAdaptiveEngines:   true,
		EnableRegimeDetection:   true,
		EnableCorrelationFilter: true,
		AdjustmentFrequency:     10,

		DataDir:     "data",
		MetricsPort: 9090,
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (BotConfig, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that all fields are within their declared bounds. It
// returns the first encountered error so the caller can surface a clear
// configuration problem before any trading starts.
func (c *BotConfig) Validate() error {
	if c.Symbol == "" {
		return errors.New("Symbol must be set")
	}
	if c.MinConfidence < 50 || c.MinConfidence > 100 {
		return fmt.Errorf("MinConfidence (%g) must be within [50,100]", c.MinConfidence)
	}
	if c.MaxPositions < 1 || c.MaxPositions > 10 {
		return fmt.Errorf("MaxPositions (%d) must be within [1,10]", c.MaxPositions)
	}
	if c.LotSizeMode != LotModeAuto && c.LotSizeMode != LotModeManual {
		return fmt.Errorf("LotSizeMode (%q) must be auto or manual", c.LotSizeMode)
	}
	if c.RiskPercent < 0.1 || c.RiskPercent > 5 {
		return fmt.Errorf("RiskPercent (%g) must be within [0.1,5]", c.RiskPercent)
	}
	if c.FixedLots < 0.01 {
		return fmt.Errorf("FixedLots (%g) must be >= 0.01", c.FixedLots)
	}
	if c.MaxTotalLots < 0.01 {
		return fmt.Errorf("MaxTotalLots (%g) must be >= 0.01", c.MaxTotalLots)
	}
	if c.MaxDailyLossPercent < 1 || c.MaxDailyLossPercent > 20 {
		return fmt.Errorf("MaxDailyLossPercent (%g) must be within [1,20]", c.MaxDailyLossPercent)
	}
	if c.MaxSessionLossPercent < 1 || c.MaxSessionLossPercent > 30 {
		return fmt.Errorf("MaxSessionLossPercent (%g) must be within [1,30]", c.MaxSessionLossPercent)
	}
	if c.MaxDailyTrades < 1 || c.MaxDailyTrades > 50 {
		return fmt.Errorf("MaxDailyTrades (%d) must be within [1,50]", c.MaxDailyTrades)
	}
	if c.BreakevenTriggerPercent < 0.01 || c.BreakevenTriggerPercent > 10 {
		return fmt.Errorf("BreakevenTriggerPercent (%g) must be within [0.01,10]", c.BreakevenTriggerPercent)
	}
	if c.BreakevenLockPercent < 0 || c.BreakevenLockPercent > 5 {
		return fmt.Errorf("BreakevenLockPercent (%g) must be within [0,5]", c.BreakevenLockPercent)
	}
	if c.BreakevenTier2TriggerPercent < 0.01 || c.BreakevenTier2TriggerPercent > 20 {
		return fmt.Errorf("BreakevenTier2TriggerPercent (%g) must be within [0.01,20]", c.BreakevenTier2TriggerPercent)
	}
	if c.BreakevenTier2LockPercent < 0.1 || c.BreakevenTier2LockPercent > 10 {
		return fmt.Errorf("BreakevenTier2LockPercent (%g) must be within [0.1,10]", c.BreakevenTier2LockPercent)
	}
	if c.TrailStartPercent < 0.01 || c.TrailStartPercent > 10 {
		return fmt.Errorf("TrailStartPercent (%g) must be within [0.01,10]", c.TrailStartPercent)
	}
	if c.TrailDistancePercent < 0.01 || c.TrailDistancePercent > 5 {
		return fmt.Errorf("TrailDistancePercent (%g) must be within [0.01,5]", c.TrailDistancePercent)
	}
	if c.AdjustmentFrequency < 5 || c.AdjustmentFrequency > 50 {
		return fmt.Errorf("AdjustmentFrequency (%d) must be within [5,50]", c.AdjustmentFrequency)
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("MetricsPort (%d) out of range", c.MetricsPort)
	}
	return nil
}
