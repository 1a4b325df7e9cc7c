// Package marketdata maintains per-timeframe bar history and indicator
// suites and condenses them into the snapshot the decision layer consumes.
package marketdata

import (
	"math"

	"github.com/evdnx/goti"
	"github.com/evdnx/gotf/logger"
	"github.com/evdnx/gotf/types"
)

const (
	maxBars    = 300
	atrPeriod  = 14
	adxPeriod  = 14
	atrAvgSpan = 50
	rangeSpan  = 20
	volumeSpan = 20
	hmaPeriod  = 21
)

// trendWeights are the per-timeframe contributions to the trend score.
var trendWeights = []struct {
	tf     types.Timeframe
	weight float64
}{
	{types.M15, 0.5},
	{types.H1, 0.75},
	{types.H4, 0.75},
}

// Snapshot is one self-consistent view of the market. Readings that lack
// history carry their Has flag false (or NaN-free zero values) so consumers
// can degrade gracefully during warmup.
type Snapshot struct {
	Price float64

	RSI    float64
	HasRSI bool

	// Weighted multi-timeframe trend agreement in [-2, 2].
	TrendScore float64

	TrendStrength float64 // ADX on H1
	ATR           float64
	ATRRatio      float64 // current ATR over its long average
	BarRange      float64
	AvgBarRange   float64
	VolumeRatio   float64

	BullishCrossover bool
	BearishCrossover bool
}

// Analyzer owns an indicator suite and a bar window per timeframe.
type Analyzer struct {
	symbol string
	suites map[types.Timeframe]*goti.IndicatorSuite
	bars   map[types.Timeframe][]types.Bar
	atrLog []float64 // ATR history for the ratio baseline
	log    logger.Logger
}

func NewAnalyzer(symbol string, log logger.Logger) (*Analyzer, error) {
	a := &Analyzer{
		symbol: symbol,
		suites: make(map[types.Timeframe]*goti.IndicatorSuite),
		bars:   make(map[types.Timeframe][]types.Bar),
		log:    log,
	}
	for _, tw := range trendWeights {
		ic := goti.DefaultConfig()
		suite, err := goti.NewIndicatorSuiteWithConfig(ic)
		if err != nil {
			return nil, err
		}
		a.suites[tw.tf] = suite
	}
	return a, nil
}

func (a *Analyzer) Symbol() string { return a.symbol }

// OnBar ingests a completed bar for the given timeframe.
func (a *Analyzer) OnBar(tf types.Timeframe, bar types.Bar) {
	window := append(a.bars[tf], bar)
	if len(window) > maxBars {
		window = window[len(window)-maxBars:]
	}
	a.bars[tf] = window

	if suite, ok := a.suites[tf]; ok {
		if err := suite.Add(bar.High, bar.Low, bar.Close, bar.Volume); err != nil {
			a.log.Warn("suite_add_error",
				logger.String("timeframe", string(tf)),
				logger.Err(err),
			)
		}
	}

	if tf == types.M15 {
		if atr := ATR(window, atrPeriod); !math.IsNaN(atr) {
			a.atrLog = append(a.atrLog, atr)
			if len(a.atrLog) > maxBars {
				a.atrLog = a.atrLog[len(a.atrLog)-maxBars:]
			}
		}
	}
}

// Bars returns the retained window for a timeframe.
func (a *Analyzer) Bars(tf types.Timeframe) []types.Bar { return a.bars[tf] }

// Warm reports whether the base timeframe has enough history for a usable
// snapshot.
func (a *Analyzer) Warm() bool {
	return len(a.bars[types.M15]) >= atrPeriod+1
}

// Snapshot condenses the current windows into one reading. The base
// timeframe for price, volatility and bar statistics is M15; trend strength
// runs on H1.
func (a *Analyzer) Snapshot() Snapshot {
	var s Snapshot
	base := a.bars[types.M15]
	if len(base) == 0 {
		return s
	}
	last := base[len(base)-1]
	s.Price = last.Close
	s.BarRange = last.Range()

	if len(base) >= rangeSpan {
		sum := 0.0
		for _, b := range base[len(base)-rangeSpan:] {
			sum += b.Range()
		}
		s.AvgBarRange = sum / rangeSpan
	}

	if len(base) >= volumeSpan {
		sum := 0.0
		for _, b := range base[len(base)-volumeSpan:] {
			sum += b.Volume
		}
		if avg := sum / volumeSpan; avg > 0 {
			s.VolumeRatio = last.Volume / avg
		}
	}

	if atr := ATR(base, atrPeriod); !math.IsNaN(atr) {
		s.ATR = atr
		if baseline := SMA(a.atrLog, minInt(atrAvgSpan, len(a.atrLog))); !math.IsNaN(baseline) && baseline > 0 {
			s.ATRRatio = atr / baseline
		}
	}

	if adx := ADX(a.bars[types.H1], adxPeriod); !math.IsNaN(adx) {
		s.TrendStrength = adx
	}

	s.TrendScore = a.trendScore(s.Price)

	if suite, ok := a.suites[types.M15]; ok {
		if rsi, err := suite.GetRSI().Calculate(); err == nil {
			s.RSI = rsi
			s.HasRSI = true
		}
		if ok, err := suite.GetHMA().IsBullishCrossover(); err == nil {
			s.BullishCrossover = ok
		}
		if ok, err := suite.GetHMA().IsBearishCrossover(); err == nil {
			s.BearishCrossover = ok
		}
	}
	return s
}

// trendScore sums the per-timeframe weights, positive when price sits above
// that timeframe's Hull average. Timeframes still warming up contribute
// nothing.
func (a *Analyzer) trendScore(price float64) float64 {
	score := 0.0
	for _, tw := range trendWeights {
		closes := closesOf(a.bars[tw.tf])
		hma := HMA(closes, hmaPeriod)
		if math.IsNaN(hma) {
			continue
		}
		if price > hma {
			score += tw.weight
		} else if price < hma {
			score -= tw.weight
		}
	}
	return score
}

func closesOf(bars []types.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
