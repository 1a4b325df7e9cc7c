// Package adaptive implements the generic debounced, bounded, hysteretic
// parameter tuner and its standard instantiations. One Controller wraps one
// Parameter and a rule table; all instances share the same debounce and
// clamping machinery.
package adaptive

import (
	"math"

	"github.com/evdnx/gotf/metrics"
)

// Parameter is a bounded strategy knob. Value only ever changes through Set,
// which clamps to [Min, Max]; Max may be +Inf for unbounded-above knobs.
type Parameter struct {
	Name    string
	Initial float64
	Min     float64
	Max     float64
	value   float64
}

func NewParameter(name string, initial, min, max float64) *Parameter {
	p := &Parameter{Name: name, Initial: initial, Min: min, Max: max}
	p.Set(initial)
	return p
}

// Unbounded is the upper bound for knobs with no ceiling.
var Unbounded = math.Inf(1)

func (p *Parameter) Value() float64 { return p.value }

// Int returns the value rounded to the nearest integer, for count-like knobs.
func (p *Parameter) Int() int { return int(math.Round(p.value)) }

// Set clamps v into [Min, Max] and publishes the new value.
func (p *Parameter) Set(v float64) {
	if v < p.Min {
		v = p.Min
	}
	if v > p.Max {
		v = p.Max
	}
	p.value = v
	metrics.AdaptiveValue.WithLabelValues(p.Name).Set(v)
}

// Scale multiplies the value by f (clamped).
func (p *Parameter) Scale(f float64) { p.Set(p.value * f) }

// Add shifts the value by d (clamped).
func (p *Parameter) Add(d float64) { p.Set(p.value + d) }
