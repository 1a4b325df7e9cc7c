package marketdata

import (
	"math"

	"github.com/evdnx/gotf/types"
)

// SMA returns the simple moving average of the last period values, or NaN
// when there is not enough data.
func SMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// WMA returns the linearly weighted moving average of the last period values.
func WMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return math.NaN()
	}
	window := values[len(values)-period:]
	sum, weightSum := 0.0, 0.0
	for i, v := range window {
		w := float64(i + 1)
		sum += v * w
		weightSum += w
	}
	return sum / weightSum
}

// HMA returns the Hull moving average: WMA(2*WMA(n/2) - WMA(n), sqrt(n)).
// Needs period + sqrt(period) values.
func HMA(values []float64, period int) float64 {
	if period <= 1 {
		return math.NaN()
	}
	half := period / 2
	sqrtP := int(math.Round(math.Sqrt(float64(period))))
	if len(values) < period+sqrtP {
		return math.NaN()
	}

	raw := make([]float64, 0, sqrtP)
	for i := len(values) - sqrtP; i < len(values); i++ {
		sub := values[:i+1]
		raw = append(raw, 2*WMA(sub, half)-WMA(sub, period))
	}
	return WMA(raw, sqrtP)
}

// trueRange is the bar's range extended over the previous close.
func trueRange(cur types.Bar, prevClose float64) float64 {
	tr := cur.High - cur.Low
	if d := math.Abs(cur.High - prevClose); d > tr {
		tr = d
	}
	if d := math.Abs(cur.Low - prevClose); d > tr {
		tr = d
	}
	return tr
}

// ATR returns the Wilder-smoothed average true range over period bars, or
// NaN with insufficient history.
func ATR(bars []types.Bar, period int) float64 {
	if period <= 0 || len(bars) < period+1 {
		return math.NaN()
	}
	// Seed with a plain average of the first period true ranges.
	atr := 0.0
	for i := 1; i <= period; i++ {
		atr += trueRange(bars[i], bars[i-1].Close)
	}
	atr /= float64(period)
	// Wilder smoothing over the remainder.
	for i := period + 1; i < len(bars); i++ {
		tr := trueRange(bars[i], bars[i-1].Close)
		atr = (atr*float64(period-1) + tr) / float64(period)
	}
	return atr
}

// ADX returns Wilder's average directional index over period bars. Needs
// 2*period+1 bars; returns NaN otherwise.
func ADX(bars []types.Bar, period int) float64 {
	if period <= 0 || len(bars) < 2*period+1 {
		return math.NaN()
	}

	var trSum, plusSum, minusSum float64
	var dxValues []float64
	var trS, plusS, minusS float64

	for i := 1; i < len(bars); i++ {
		upMove := bars[i].High - bars[i-1].High
		downMove := bars[i-1].Low - bars[i].Low
		plusDM, minusDM := 0.0, 0.0
		if upMove > downMove && upMove > 0 {
			plusDM = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM = downMove
		}
		tr := trueRange(bars[i], bars[i-1].Close)

		if i <= period {
			trSum += tr
			plusSum += plusDM
			minusSum += minusDM
			if i == period {
				trS, plusS, minusS = trSum, plusSum, minusSum
			}
		} else {
			trS = trS - trS/float64(period) + tr
			plusS = plusS - plusS/float64(period) + plusDM
			minusS = minusS - minusS/float64(period) + minusDM
		}
		if i >= period && trS > 0 {
			plusDI := 100 * plusS / trS
			minusDI := 100 * minusS / trS
			if sum := plusDI + minusDI; sum > 0 {
				dxValues = append(dxValues, 100*math.Abs(plusDI-minusDI)/sum)
			} else {
				dxValues = append(dxValues, 0)
			}
		}
	}
	if len(dxValues) < period {
		return math.NaN()
	}
	// Seed ADX with the first period DX average, then Wilder-smooth.
	adx := 0.0
	for _, dx := range dxValues[:period] {
		adx += dx
	}
	adx /= float64(period)
	for _, dx := range dxValues[period:] {
		adx = (adx*float64(period-1) + dx) / float64(period)
	}
	return adx
}
