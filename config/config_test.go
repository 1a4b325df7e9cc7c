package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bot.yaml")
	raw := []byte("symbol: EURUSD\nmin_confidence: 80\nrisk_percent: 2.5\nmax_positions: 5\n")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "EURUSD", cfg.Symbol)
	assert.Equal(t, 80.0, cfg.MinConfidence)
	assert.Equal(t, 2.5, cfg.RiskPercent)
	assert.Equal(t, 5, cfg.MaxPositions)
	// Untouched fields keep their defaults.
	assert.Equal(t, 3.0, cfg.MaxDailyLossPercent)
	assert.Equal(t, LotModeAuto, cfg.LotSizeMode)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*BotConfig)
	}{
		{"empty symbol", func(c *BotConfig) { c.Symbol = "" }},
		{"confidence too low", func(c *BotConfig) { c.MinConfidence = 40 }},
		{"confidence too high", func(c *BotConfig) { c.MinConfidence = 101 }},
		{"zero positions", func(c *BotConfig) { c.MaxPositions = 0 }},
		{"bad lot mode", func(c *BotConfig) { c.LotSizeMode = "martingale" }},
		{"risk too high", func(c *BotConfig) { c.RiskPercent = 7 }},
		{"daily loss too high", func(c *BotConfig) { c.MaxDailyLossPercent = 25 }},
		{"session loss too low", func(c *BotConfig) { c.MaxSessionLossPercent = 0.5 }},
		{"too many trades", func(c *BotConfig) { c.MaxDailyTrades = 51 }},
		{"trail distance too wide", func(c *BotConfig) { c.TrailDistancePercent = 6 }},
		{"adjustment frequency too low", func(c *BotConfig) { c.AdjustmentFrequency = 2 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("risk_percent: 50\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
