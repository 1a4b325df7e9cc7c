// Package risk holds the pre-trade safety gate and position sizing math.
package risk

import (
	"github.com/evdnx/gotf/logger"
	"github.com/evdnx/gotf/metrics"
)

// CalcVolume sizes a position from the account risk budget: the lots whose
// loss at the stop equals balance times riskPercent. Returns 0 when the stop
// distance or pip value is degenerate.
func CalcVolume(balance, riskPercent, stopPips, pipValuePerLot float64) float64 {
	if stopPips <= 0 || pipValuePerLot <= 0 {
		return 0
	}
	riskAmount := balance * riskPercent / 100
	return riskAmount / (stopPips * pipValuePerLot)
}

// Limits are the configured safety ceilings the gate enforces.
type Limits struct {
	MaxDailyLossPercent   float64 // of day-start balance
	MaxSessionLossPercent float64 // of session-start equity
	MaxDailyTrades        int
	MaxTotalLots          float64
}

// State is the account and session snapshot a check runs against.
type State struct {
	DayStartBalance     float64
	SessionStartEquity  float64
	DailyPnL            float64
	SessionPnL          float64
	DailyTrades         int
	OpenLots            float64
	FreeMargin          float64
	Balance             float64
}

// Gate evaluates the fixed-order safety checks before every execution.
type Gate struct {
	Limits Limits
	log    logger.Logger
}

func NewGate(limits Limits, log logger.Logger) *Gate {
	return &Gate{Limits: limits, log: log}
}

// Check runs the five safety checks in order and short-circuits on the first
// failure. The failing check's name is returned for reporting; an empty name
// means all checks passed.
func (g *Gate) Check(s State) (bool, string) {
	if maxLoss := s.DayStartBalance * g.Limits.MaxDailyLossPercent / 100; -s.DailyPnL > maxLoss {
		return g.block("daily_loss",
			logger.Float64("daily_pnl", s.DailyPnL),
			logger.Float64("limit", maxLoss),
		)
	}
	if maxLoss := s.SessionStartEquity * g.Limits.MaxSessionLossPercent / 100; -s.SessionPnL >= maxLoss {
		return g.block("session_loss",
			logger.Float64("session_pnl", s.SessionPnL),
			logger.Float64("limit", maxLoss),
		)
	}
	if s.DailyTrades >= g.Limits.MaxDailyTrades {
		return g.block("daily_trades",
			logger.Int("trades", s.DailyTrades),
			logger.Int("limit", g.Limits.MaxDailyTrades),
		)
	}
	if s.OpenLots >= g.Limits.MaxTotalLots {
		return g.block("total_lots",
			logger.Float64("open_lots", s.OpenLots),
			logger.Float64("limit", g.Limits.MaxTotalLots),
		)
	}
	// The margin floor adapts to small accounts: the lesser of a fixed
	// floor and 10% of balance.
	minMargin := 50.0
	if pct := s.Balance * 0.1; pct < minMargin {
		minMargin = pct
	}
	if s.FreeMargin < minMargin {
		return g.block("free_margin",
			logger.Float64("free_margin", s.FreeMargin),
			logger.Float64("minimum", minMargin),
		)
	}
	return true, ""
}

func (g *Gate) block(check string, fields ...logger.Field) (bool, string) {
	g.log.Warn("safety_check_blocked", append([]logger.Field{logger.String("check", check)}, fields...)...)
	metrics.SafetyBlocks.WithLabelValues(check).Inc()
	return false, check
}
