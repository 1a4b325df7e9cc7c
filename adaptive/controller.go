package adaptive

import (
	"fmt"

	"github.com/evdnx/gotf/ledger"
	"github.com/evdnx/gotf/logger"
)

// Stats is the windowed performance view handed to the rule table. It is
// computed once per adjustment attempt from the controller's metric.
type Stats struct {
	Validated int
	Accuracy  float64 // success share of validated samples
	AvgWin    float64 // mean |magnitude| of successes
	AvgLoss   float64 // mean |magnitude| of failures
	AvgAll    float64 // mean |magnitude| across validated samples
	FailRate  float64 // 1 - Accuracy

	// Restricted to samples tagged with the parameter's current value.
	CountAtCurrent    int
	AccuracyAtCurrent float64
}

// Delta is the adjustment a matching rule applies. Mul and Add are mutually
// exclusive; both zero means an explicit stable band (no change).
type Delta struct {
	Mul float64
	Add float64
}

// Rule pairs a performance band predicate with its delta. Rules are evaluated
// in order; the first match wins.
type Rule struct {
	Name  string
	When  func(Stats) bool
	Delta Delta
}

// Controller wraps one Parameter and adjusts it from ledger statistics.
//
// Debounce contract: nothing happens until the metric has MinSamples
// validated entries, and then again until Frequency new validated entries
// have arrived since the last adjustment (tracked via a sample-count
// watermark). Repeated invocation with an unchanged ledger is a no-op.
type Controller struct {
	Param      *Parameter
	Metric     string
	MinSamples int
	Frequency  int
	Rules      []Rule

	log       logger.Logger
	watermark int
}

func NewController(p *Parameter, metric string, minSamples, frequency int, rules []Rule, log logger.Logger) *Controller {
	return &Controller{
		Param:      p,
		Metric:     metric,
		MinSamples: minSamples,
		Frequency:  frequency,
		Rules:      rules,
		log:        log,
	}
}

// Tick evaluates the rule table if the debounce conditions are met. It
// returns true when an adjustment cycle ran (even if it landed in a stable
// band and changed nothing).
func (c *Controller) Tick(led *ledger.Ledger) bool {
	validated := led.Validated(c.Metric)
	if validated < c.MinSamples {
		return false
	}
	if validated-c.watermark < c.Frequency {
		return false
	}
	c.watermark = validated

	st := c.stats(led)
	for _, r := range c.Rules {
		if !r.When(st) {
			continue
		}
		before := c.Param.Value()
		switch {
		case r.Delta.Mul != 0:
			c.Param.Scale(r.Delta.Mul)
		case r.Delta.Add != 0:
			c.Param.Add(r.Delta.Add)
		}
		c.log.Info("adaptive_adjustment",
			logger.String("parameter", c.Param.Name),
			logger.String("band", r.Name),
			logger.Float64("accuracy", st.Accuracy),
			logger.Float64("before", before),
			logger.Float64("after", c.Param.Value()),
		)
		return true
	}
	c.log.Info("adaptive_stable",
		logger.String("parameter", c.Param.Name),
		logger.Float64("accuracy", st.Accuracy),
		logger.Float64("value", c.Param.Value()),
	)
	return true
}

func (c *Controller) stats(led *ledger.Ledger) Stats {
	st := Stats{
		Validated: led.Validated(c.Metric),
		Accuracy:  led.Accuracy(c.Metric),
		AvgWin:    led.AvgMagnitude(c.Metric, ledger.Success),
		AvgLoss:   led.AvgMagnitude(c.Metric, ledger.Failure),
	}
	st.FailRate = 1 - st.Accuracy

	if st.Validated > 0 {
		sum := 0.0
		for _, s := range led.Query(c.Metric, validated) {
			sum += abs(s.Magnitude)
		}
		st.AvgAll = sum / float64(st.Validated)
	}

	tag := fmt.Sprintf("%d", c.Param.Int())
	atCurrent := led.Query(c.Metric, func(s ledger.Sample) bool {
		return s.Outcome != ledger.Pending && s.Tag == tag
	})
	st.CountAtCurrent = len(atCurrent)
	if len(atCurrent) > 0 {
		wins := 0
		for _, s := range atCurrent {
			if s.Outcome == ledger.Success {
				wins++
			}
		}
		st.AccuracyAtCurrent = float64(wins) / float64(len(atCurrent))
	}
	return st
}

func validated(s ledger.Sample) bool { return s.Outcome != ledger.Pending }

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
