package marketdata

import (
	"math"
	"testing"

	"github.com/evdnx/gotf/types"
)

func TestSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	if got := SMA(values, 5); got != 3 {
		t.Fatalf("SMA = %g, want 3", got)
	}
	if got := SMA(values, 2); got != 4.5 {
		t.Fatalf("SMA(2) = %g, want 4.5", got)
	}
	if got := SMA(values, 6); !math.IsNaN(got) {
		t.Fatalf("SMA with short history = %g, want NaN", got)
	}
}

func TestWMAWeightsRecentValues(t *testing.T) {
	// (1*1 + 2*2 + 3*3) / 6 = 14/6
	got := WMA([]float64{1, 2, 3}, 3)
	want := 14.0 / 6.0
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("WMA = %g, want %g", got, want)
	}
}

func TestHMATracksRamp(t *testing.T) {
	// On a linear ramp the Hull average sits close to the latest value.
	values := make([]float64, 60)
	for i := range values {
		values[i] = float64(i)
	}
	got := HMA(values, 21)
	if math.IsNaN(got) {
		t.Fatalf("HMA returned NaN with ample history")
	}
	last := values[len(values)-1]
	if math.Abs(got-last) > 1.0 {
		t.Fatalf("HMA = %g, want within 1.0 of %g on a ramp", got, last)
	}
}

func constantRangeBars(n int, rng float64) []types.Bar {
	bars := make([]types.Bar, n)
	price := 100.0
	for i := range bars {
		bars[i] = types.Bar{Open: price, High: price + rng, Low: price, Close: price + rng/2}
	}
	return bars
}

func TestATRConstantRange(t *testing.T) {
	bars := constantRangeBars(40, 2.0)
	got := ATR(bars, 14)
	if math.Abs(got-2.0) > 0.2 {
		t.Fatalf("ATR = %g, want near the constant 2.0 range", got)
	}
	if !math.IsNaN(ATR(bars[:10], 14)) {
		t.Fatalf("ATR with short history must be NaN")
	}
}

func trendBars(n int, step float64) []types.Bar {
	bars := make([]types.Bar, n)
	price := 100.0
	for i := range bars {
		bars[i] = types.Bar{Open: price, High: price + step, Low: price - step/4, Close: price + step}
		price += step
	}
	return bars
}

func TestADXHighInSteadyTrend(t *testing.T) {
	got := ADX(trendBars(80, 1.0), 14)
	if math.IsNaN(got) {
		t.Fatalf("ADX returned NaN with ample history")
	}
	if got < 25 {
		t.Fatalf("ADX = %g in a one-way trend, want > 25", got)
	}
}

func TestADXLowInChop(t *testing.T) {
	bars := make([]types.Bar, 80)
	for i := range bars {
		base := 100.0
		if i%2 == 0 {
			base = 101.0
		}
		bars[i] = types.Bar{Open: base, High: base + 0.5, Low: base - 0.5, Close: base}
	}
	got := ADX(bars, 14)
	if math.IsNaN(got) || got > 25 {
		t.Fatalf("ADX = %g in chop, want a low reading", got)
	}
}
