// Package quality scores a candidate trade direction from independent market
// factors. The score is advisory: it is exposed for decision layers and
// operators, it does not gate execution here.
package quality

import (
	"github.com/evdnx/gotf/metrics"
	"github.com/evdnx/gotf/types"
)

type Label string

const (
	Alpha    Label = "ALPHA"
	Strong   Label = "STRONG"
	Standard Label = "STANDARD"
	Weak     Label = "WEAK"
	Avoid    Label = "AVOID"
)

// Inputs are the market readings a score is computed from.
type Inputs struct {
	TrendScore    float64 // weighted multi-timeframe agreement, signed, in [-2, 2]
	RSI           float64
	TrendStrength float64 // ADX
	VolumeRatio   float64 // current volume over recent average
	ATRRatio      float64 // current ATR over its long average
}

// Score is the factor breakdown plus the clamped total.
type Score struct {
	Factors map[string]float64
	Total   float64
	Label   Label
}

// Evaluate starts from a neutral 50 and adds five independent factor
// contributions, each clamped to its own sub-range, then clamps the total to
// [0, 100]. The factors are order-independent.
func Evaluate(direction types.Side, in Inputs) Score {
	factors := map[string]float64{
		"trend_alignment": trendAlignment(direction, in.TrendScore),
		"momentum":        momentum(direction, in.RSI),
		"trend_strength":  trendStrength(in.TrendStrength),
		"volume":          volume(in.VolumeRatio),
		"volatility":      volatility(in.ATRRatio),
	}
	total := 50.0
	for _, c := range factors {
		total += c
	}
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	metrics.QualityScore.Set(total)
	return Score{Factors: factors, Total: total, Label: labelFor(total)}
}

// trendAlignment rewards agreement between the direction and the weighted
// multi-timeframe trend, up to +20 at full agreement. Any counter-trend
// reading is a flat -10.
func trendAlignment(direction types.Side, trendScore float64) float64 {
	signed := trendScore
	if direction == types.Sell {
		signed = -signed
	}
	if signed <= 0 {
		return -10
	}
	c := signed * 10
	if c > 20 {
		c = 20
	}
	return c
}

// momentum checks the oscillator zone relative to the direction: recovering
// out of the favorable extreme is ideal, being inside it is still worth
// something, chasing into the adverse extreme is penalized.
func momentum(direction types.Side, rsi float64) float64 {
	if direction == types.Sell {
		rsi = 100 - rsi
	}
	switch {
	case rsi >= 30 && rsi <= 50:
		return 15
	case rsi < 30:
		return 10 // in the extreme, risky but with room to run
	case rsi > 70:
		return -10
	default:
		return 0
	}
}

func trendStrength(adx float64) float64 {
	switch {
	case adx > 30:
		return 15
	case adx > 20:
		return 10
	case adx < 15:
		return -10
	default:
		return 0
	}
}

func volume(ratio float64) float64 {
	switch {
	case ratio > 1.5:
		return 10
	case ratio > 1.2:
		return 5
	case ratio < 0.7 && ratio > 0:
		return -5
	default:
		return 0
	}
}

func volatility(ratio float64) float64 {
	switch {
	case ratio >= 0.8 && ratio <= 1.3:
		return 10
	case ratio > 1.5:
		return -5
	case ratio < 0.5 && ratio > 0:
		return -10
	default:
		return 0
	}
}

func labelFor(total float64) Label {
	switch {
	case total >= 85:
		return Alpha
	case total >= 70:
		return Strong
	case total >= 55:
		return Standard
	case total >= 40:
		return Weak
	default:
		return Avoid
	}
}
