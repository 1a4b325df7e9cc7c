package types

import "time"

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Opposite returns the closing side for a position opened on s.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Valid reports whether s is one of the two tradable directions.
func (s Side) Valid() bool { return s == Buy || s == Sell }

type Timeframe string

const (
	M1  Timeframe = "m1"
	M5  Timeframe = "m5"
	M15 Timeframe = "m15"
	M30 Timeframe = "m30"
	H1  Timeframe = "h1"
	H4  Timeframe = "h4"
)

// Bar is a single OHLCV candle.
type Bar struct {
	OpenTime time.Time `json:"time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// Range is the high-low spread of the bar.
func (b Bar) Range() float64 { return b.High - b.Low }

// Order is a market order request. Price 0 means fill at market.
type Order struct {
	Symbol  string
	Side    Side
	Volume  float64
	Price   float64
	Label   string
	Comment string
}

// TradeSignal is the externally produced signal record. Field names follow
// the JSON contract of the signal file.
type TradeSignal struct {
	Status       string  `json:"status"`
	SignalID     string  `json:"signal_id"`
	BestStrategy string  `json:"best_strategy"`
	Signal       string  `json:"signal"`
	Confidence   float64 `json:"confidence"`
	Entry        float64 `json:"entry"`
	Stop         float64 `json:"stop"`
	Target1      float64 `json:"target1"`
	Target2      float64 `json:"target2"`
	IssuedAt     string  `json:"timestamp"`
}

const signalTimeLayout = "2006-01-02 15:04:05"

// Age returns how long ago the signal was issued, or ok=false when the
// timestamp is absent or unparseable.
func (s TradeSignal) Age(now time.Time) (time.Duration, bool) {
	if s.IssuedAt == "" {
		return 0, false
	}
	t, err := time.Parse(signalTimeLayout, s.IssuedAt)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s.IssuedAt); err != nil {
			return 0, false
		}
	}
	return now.Sub(t), true
}

// HasValidLevels reports whether entry, stop and target are all set.
func (s TradeSignal) HasValidLevels() bool {
	return s.Entry > 0 && s.Stop > 0 && s.Target1 > 0
}

// Position mirrors a broker-side position. StopLoss/TakeProfit of 0 mean the
// protective level is not attached.
type Position struct {
	ID         int64
	Symbol     string
	Side       Side
	Volume     float64
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	Label      string
	Comment    string
	OpenedAt   time.Time
	NetProfit  float64
}

func (p Position) HasStop() bool   { return p.StopLoss > 0 }
func (p Position) HasTarget() bool { return p.TakeProfit > 0 }

// AccountSnapshot is a point-in-time read of the trading account.
type AccountSnapshot struct {
	Balance    float64
	Equity     float64
	FreeMargin float64
}

// SymbolInfo carries the instrument constraints needed for sizing and
// protective-level placement.
type SymbolInfo struct {
	Name       string
	PipSize    float64
	PipValue   float64
	TickSize   float64
	Digits     int
	VolumeMin  float64
	VolumeMax  float64
	VolumeStep float64
	Bid        float64
	Ask        float64
	Spread     float64
}

// NormalizeVolumeDown rounds v down to the nearest tradable step, then caps
// at VolumeMax. A sub-minimum result is returned as-is so the caller can
// detect infeasible volume.
func (s SymbolInfo) NormalizeVolumeDown(v float64) float64 {
	if s.VolumeStep > 0 {
		steps := int64(v / s.VolumeStep)
		v = float64(steps) * s.VolumeStep
	}
	if s.VolumeMax > 0 && v > s.VolumeMax {
		v = s.VolumeMax
	}
	return v
}

// ReviewAction is an externally suggested position action.
type ReviewAction string

const (
	ActionKeep             ReviewAction = "KEEP"
	ActionTightenStop      ReviewAction = "TIGHTEN_SL"
	ActionMoveTargetCloser ReviewAction = "MOVE_TP_CLOSER"
	ActionCloseNow         ReviewAction = "CLOSE_NOW"
)

// PositionReview is one suggested action for one open position.
type PositionReview struct {
	PositionID int64        `json:"position_id"`
	Action     ReviewAction `json:"action"`
	Reason     string       `json:"reason"`
}

// ReviewBatch is the envelope of the review feed.
type ReviewBatch struct {
	Reviews []PositionReview `json:"reviews"`
}
