// Package regime classifies the market into one of four states from
// volatility and trend-strength readings and applies one-shot parameter
// presets when the state changes.
package regime

import (
	"github.com/evdnx/gotf/adaptive"
	"github.com/evdnx/gotf/logger"
	"github.com/evdnx/gotf/metrics"
)

type Regime int

const (
	Unknown Regime = iota
	Trending
	Ranging
	Spiking
	LowVolatility
)

func (r Regime) String() string {
	switch r {
	case Trending:
		return "trending"
	case Ranging:
		return "ranging"
	case Spiking:
		return "spiking"
	case LowVolatility:
		return "low_volatility"
	default:
		return "unknown"
	}
}

// Inputs are the readings a classification runs on. ATRRatio is current ATR
// over its long average; TrendStrength is the ADX value.
type Inputs struct {
	ATRRatio      float64
	TrendStrength float64
	BarRange      float64
	AvgBarRange   float64
}

// Params are the strategy knobs the regime presets act on. All three are
// owned by their adaptive controllers; presets nudge them through the same
// clamped setters, so regime changes and performance adaptation compose.
type Params struct {
	TunnelPeriod *adaptive.Parameter
	ATRNoise     *adaptive.Parameter
	RiskReward   *adaptive.Parameter
}

// Detector holds the current regime and re-classifies on a bar cadence.
type Detector struct {
	BarInterval int // bars between classifications

	current Regime
	params  Params
	log     logger.Logger
	bars    int
}

func NewDetector(params Params, log logger.Logger) *Detector {
	return &Detector{
		BarInterval: 20,
		current:     Unknown,
		params:      params,
		log:         log,
	}
}

func (d *Detector) Current() Regime { return d.current }

// IsBlocking reports whether new entries should be suppressed in the current
// regime. Spikes are untradable noise and low volatility rarely pays for the
// spread.
func (d *Detector) IsBlocking() bool {
	return d.current == Spiking || d.current == LowVolatility
}

// OnBar counts bars and runs a classification every BarInterval-th bar. It
// returns true when a classification ran.
func (d *Detector) OnBar(in Inputs) bool {
	d.bars++
	if d.bars%d.BarInterval != 0 {
		return false
	}
	d.Classify(in)
	return true
}

// Classify derives the regime from the inputs and applies the preset when the
// regime changed. Rules are ordered: a volatility spike overrides everything,
// then dead volatility, then trend strength. When no rule fires the previous
// regime stands.
func (d *Detector) Classify(in Inputs) Regime {
	next := d.current
	switch {
	case in.ATRRatio > 1.5 || (in.AvgBarRange > 0 && in.BarRange > 2*in.AvgBarRange):
		next = Spiking
	case in.ATRRatio < 0.5:
		next = LowVolatility
	case in.TrendStrength > 25 && in.ATRRatio < 1.3:
		next = Trending
	case in.TrendStrength < 20:
		next = Ranging
	}
	if next != d.current {
		prev := d.current
		d.current = next
		d.applyPreset(next)
		metrics.SetRegime(next.String())
		d.log.Info("regime_change",
			logger.String("from", prev.String()),
			logger.String("to", next.String()),
			logger.Float64("atr_ratio", in.ATRRatio),
			logger.Float64("trend_strength", in.TrendStrength),
		)
	}
	return d.current
}

// applyPreset shifts the shared knobs once per transition. The adaptive
// controllers keep tuning from there.
func (d *Detector) applyPreset(r Regime) {
	switch r {
	case Trending:
		// Faster trend filter, tolerate more noise risk, stretch targets.
		period := d.params.TunnelPeriod.Value() - 10
		if period < 30 {
			period = 30
		}
		d.params.TunnelPeriod.Set(period)
		d.params.ATRNoise.Scale(0.85)
		d.params.RiskReward.Add(0.1)
	case Ranging:
		// Slower filter, stricter noise gate, closer targets.
		period := d.params.TunnelPeriod.Value() + 10
		if period > 70 {
			period = 70
		}
		d.params.TunnelPeriod.Set(period)
		d.params.ATRNoise.Scale(1.20)
		d.params.RiskReward.Add(-0.1)
	case LowVolatility:
		d.params.ATRNoise.Scale(1.50)
	case Spiking:
		// Entries are blocked outright; no knob changes.
	}
}
