package adaptive

import "github.com/evdnx/gotf/logger"

// Metric keys shared between the recording sites and the controllers.
const (
	MetricPrediction = "prediction" // directional signal outcomes, magnitude = pips moved
	MetricAlignment  = "alignment"  // tagged with the alignment requirement in force
	MetricRiskReward = "risk_reward" // magnitude = realized/expected R:R ratio
	MetricSwing      = "swing"       // tagged with the strength in force, success = level held
	MetricTunnel     = "tunnel"      // magnitude = signal lag bars, failure = whipsaw
	MetricSession    = "session"     // tagged with the UTC hour bucket
)

// NewATRNoiseController tunes the ATR noise filter. Multiplicative deltas;
// bounded below at 50% of the initial threshold, unbounded above.
func NewATRNoiseController(initial float64, frequency int, log logger.Logger) *Controller {
	p := NewParameter("atr_noise_filter", initial, initial*0.5, Unbounded)
	rules := []Rule{
		{
			Name:  "noisy",
			When:  func(s Stats) bool { return s.Accuracy < 0.50 },
			Delta: Delta{Mul: 1.15},
		},
		{
			Name: "small_wins",
			When: func(s Stats) bool {
				return s.Accuracy >= 0.50 && s.Accuracy < 0.70 && s.AvgWin < s.AvgLoss*1.5
			},
			Delta: Delta{Mul: 1.08},
		},
		{
			Name: "excellent",
			When: func(s Stats) bool {
				return s.Accuracy > 0.75 && s.AvgWin > s.AvgLoss*2.0
			},
			Delta: Delta{Mul: 0.95},
		},
		// 70-75% is the stable band: no rule matches, nothing moves.
	}
	return NewController(p, MetricPrediction, 10, frequency, rules, log)
}

// NewAlignmentController tunes the minimum multi-timeframe alignment
// requirement between 3/4 and 4/4. Relaxing back to 3/4 requires both high
// accuracy and a minimum sample count at the stricter setting, which is the
// hysteresis that keeps it from flapping.
func NewAlignmentController(frequency int, log logger.Logger) *Controller {
	p := NewParameter("min_mtf_alignment", 3, 3, 4)
	rules := []Rule{
		{
			Name: "tighten",
			When: func(s Stats) bool {
				return s.CountAtCurrent > 0 && s.AccuracyAtCurrent < 0.60
			},
			Delta: Delta{Add: 1},
		},
		{
			Name: "relax",
			When: func(s Stats) bool {
				return s.CountAtCurrent > 0 && s.CountAtCurrent < 5 && s.AccuracyAtCurrent > 0.75
			},
			Delta: Delta{Add: -1},
		},
	}
	return NewController(p, MetricAlignment, frequency, frequency, rules, log)
}

// NewRiskRewardController tunes the target risk:reward ratio in [1.5, 2.5].
// Sample magnitude is realized-over-expected R:R, so AvgWin > 1.2 means
// winners overshoot the planned target by 20%.
func NewRiskRewardController(frequency int, log logger.Logger) *Controller {
	p := NewParameter("risk_reward_ratio", 2.0, 1.5, 2.5)
	rules := []Rule{
		{
			Name: "stretch",
			When: func(s Stats) bool {
				return s.Accuracy > 0.80 && s.AvgWin > 1.2
			},
			Delta: Delta{Add: 0.1},
		},
		{
			Name:  "conservative",
			When:  func(s Stats) bool { return s.Accuracy < 0.50 },
			Delta: Delta{Add: -0.3},
		},
	}
	return NewController(p, MetricRiskReward, frequency, frequency, rules, log)
}

// NewSwingStrengthController tunes the swing-level strength in [2, 10].
// Swing samples accumulate roughly twice as fast as signal outcomes, so both
// debounce thresholds are doubled. Relaxing requires a minimum number of
// distinct levels observed at the current strength.
func NewSwingStrengthController(frequency int, log logger.Logger) *Controller {
	p := NewParameter("swing_strength", 5, 2, 10)
	rules := []Rule{
		{
			Name:  "weak_levels",
			When:  func(s Stats) bool { return s.Accuracy < 0.60 },
			Delta: Delta{Add: 1},
		},
		{
			Name: "too_few_levels",
			When: func(s Stats) bool {
				return s.Accuracy > 0.80 && s.CountAtCurrent < 3
			},
			Delta: Delta{Add: -1},
		},
	}
	return NewController(p, MetricSwing, frequency*2, frequency*2, rules, log)
}

// NewTunnelPeriodController tunes the trend-filter lookback period in
// [20, 100] by ±5, driven by average signal lag (sample magnitude) and
// whipsaw rate (failure share).
func NewTunnelPeriodController(frequency int, log logger.Logger) *Controller {
	p := NewParameter("tunnel_period", 55, 20, 100)
	rules := []Rule{
		{
			Name: "laggy",
			When: func(s Stats) bool {
				return s.AvgAll > 5 && s.FailRate < 0.3
			},
			Delta: Delta{Add: -5},
		},
		{
			Name:  "whipsawed",
			When:  func(s Stats) bool { return s.FailRate > 0.4 },
			Delta: Delta{Add: 5},
		},
	}
	return NewController(p, MetricTunnel, frequency, frequency, rules, log)
}

// RSIThresholds bundles the paired overbought/oversold controllers; they
// tighten toward the midline by a full point on poor accuracy and loosen by
// half a point on sustained good accuracy.
type RSIThresholds struct {
	Overbought *Parameter
	Oversold   *Parameter
}

func NewRSIControllers(frequency int, log logger.Logger) (RSIThresholds, []*Controller) {
	ob := NewParameter("rsi_overbought", 70, 65, 75)
	os := NewParameter("rsi_oversold", 30, 25, 35)
	obRules := []Rule{
		{Name: "tighten", When: func(s Stats) bool { return s.Accuracy < 0.50 }, Delta: Delta{Add: -1}},
		{Name: "loosen", When: func(s Stats) bool { return s.Accuracy > 0.70 }, Delta: Delta{Add: 0.5}},
	}
	osRules := []Rule{
		{Name: "tighten", When: func(s Stats) bool { return s.Accuracy < 0.50 }, Delta: Delta{Add: 1}},
		{Name: "loosen", When: func(s Stats) bool { return s.Accuracy > 0.70 }, Delta: Delta{Add: -0.5}},
	}
	ctrls := []*Controller{
		NewController(ob, MetricPrediction, 10, frequency, obRules, log),
		NewController(os, MetricPrediction, 10, frequency, osRules, log),
	}
	return RSIThresholds{Overbought: ob, Oversold: os}, ctrls
}
