// Package correlation aggregates the recent movement of correlated
// instruments into a single directional bias and vetoes entries that fight a
// strong cross-market consensus.
package correlation

import (
	"time"

	"github.com/evdnx/gotf/logger"
	"github.com/evdnx/gotf/types"
)

// ChangeProvider resolves a peer symbol to its fractional price change over
// the engine's short lookback (a few hours). Implementations typically wrap a
// market data feed and cache per symbol.
type ChangeProvider interface {
	RecentChange(symbol string) (float64, error)
}

const (
	// Bias below this is no opinion.
	minThreshold = 0.03
	// Bias beyond this vetoes counter-direction entries.
	vetoThreshold = 0.05
	// Scales fractional 4-hour changes into the [-1, 1] bias range.
	scaleFactor = 20.0
)

// Engine recomputes a weighted bias on a fixed cadence and filters trade
// directions against it.
type Engine struct {
	Interval time.Duration

	edges     []Edge
	provider  ChangeProvider
	log       logger.Logger
	lastCheck time.Time
	bias      float64
}

func NewEngine(edges []Edge, provider ChangeProvider, log logger.Logger) *Engine {
	return &Engine{
		Interval: 30 * time.Minute,
		edges:    edges,
		provider: provider,
		log:      log,
	}
}

// Bias returns the last computed bias in [-1, 1]; positive is bullish.
func (e *Engine) Bias() float64 { return e.bias }

// Refresh recomputes the bias if the cadence has elapsed. Peers that fail to
// resolve are skipped; the aggregate is built from whatever resolved. It
// returns true when a recomputation ran.
func (e *Engine) Refresh(now time.Time) bool {
	if len(e.edges) == 0 {
		return false
	}
	if !e.lastCheck.IsZero() && now.Sub(e.lastCheck) < e.Interval {
		return false
	}
	e.lastCheck = now

	totalBias, totalWeight := 0.0, 0.0
	resolved := 0
	for _, edge := range e.edges {
		change, err := e.provider.RecentChange(edge.Symbol)
		if err != nil {
			continue
		}
		totalBias += change * edge.Correlation * edge.Weight * scaleFactor
		totalWeight += edge.Weight
		resolved++
	}
	if totalWeight == 0 {
		return true
	}

	bias := totalBias / totalWeight
	if bias > 1 {
		bias = 1
	}
	if bias < -1 {
		bias = -1
	}
	e.bias = bias

	if abs(bias) > 0.02 {
		direction := "bullish"
		if bias < 0 {
			direction = "bearish"
		}
		e.log.Info("correlation_bias",
			logger.Int("peers", resolved),
			logger.String("direction", direction),
			logger.Float64("bias", bias),
		)
	}
	return true
}

// Allow reports whether an entry in the given direction survives the filter.
// A weak bias has no effect; a strong bullish bias vetoes sells and a strong
// bearish bias vetoes buys.
func (e *Engine) Allow(direction types.Side) bool {
	if abs(e.bias) < minThreshold {
		return true
	}
	if e.bias > vetoThreshold && direction == types.Sell {
		e.log.Info("correlation_veto",
			logger.String("direction", string(direction)),
			logger.Float64("bias", e.bias),
		)
		return false
	}
	if e.bias < -vetoThreshold && direction == types.Buy {
		e.log.Info("correlation_veto",
			logger.String("direction", string(direction)),
			logger.Float64("bias", e.bias),
		)
		return false
	}
	return true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
