package trade

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/evdnx/gotf/config"
	"github.com/evdnx/gotf/executor"
	"github.com/evdnx/gotf/logger"
	"github.com/evdnx/gotf/metrics"
	"github.com/evdnx/gotf/risk"
	"github.com/evdnx/gotf/types"
)

const (
	protectionAttempts = 20
	protectionPause    = 300 * time.Millisecond
	// Each rejected protection attempt widens both distances by this share
	// of the entry price.
	protectionWidenPct = 0.2
)

// ErrProtectionUnresolved flags a live position whose stop/target could not
// be attached within the retry budget. The position is NOT auto-closed; the
// condition is surfaced for a human.
var ErrProtectionUnresolved = errors.New("position open without protective levels")

// OrderExecutor sizes and places approved signals. Placement is two-phase:
// the market order carries no protective levels (atomic price-based stops
// are a common broker rejection), the levels are attached right after with a
// bounded widening retry.
type OrderExecutor struct {
	Broker executor.Broker
	Cfg    config.BotConfig
	Log    logger.Logger
	Sleep  func(time.Duration)
	Label  string
}

func NewOrderExecutor(broker executor.Broker, cfg config.BotConfig, label string, log logger.Logger) *OrderExecutor {
	return &OrderExecutor{
		Broker: broker,
		Cfg:    cfg,
		Log:    log,
		Sleep:  time.Sleep,
		Label:  label,
	}
}

// Execute places the signal. On success the returned position has its
// protective levels attached. A returned ErrProtectionUnresolved still
// carries the (unprotected) live position.
func (e *OrderExecutor) Execute(sig types.TradeSignal) (types.Position, error) {
	side := types.Side(sig.Signal)
	info, err := e.Broker.SymbolInfo(e.Cfg.Symbol)
	if err != nil {
		return types.Position{}, fmt.Errorf("symbol info: %w", err)
	}
	acct := e.Broker.Account()

	volume, err := e.size(sig, side, info, acct)
	if err != nil {
		return types.Position{}, err
	}

	pos, err := e.Broker.ExecuteMarketOrder(types.Order{
		Symbol:  e.Cfg.Symbol,
		Side:    side,
		Volume:  volume,
		Label:   e.Label,
		Comment: sig.BestStrategy,
	})
	if err != nil {
		return types.Position{}, fmt.Errorf("market order: %w", err)
	}
	metrics.OrdersSubmitted.WithLabelValues(string(side)).Inc()
	e.Log.Info("order_filled",
		logger.String("side", string(side)),
		logger.Float64("volume", volume),
		logger.Float64("entry", pos.EntryPrice),
		logger.String("strategy", sig.BestStrategy),
	)

	if err := e.attachProtection(&pos, sig); err != nil {
		return pos, err
	}
	return pos, nil
}

// size produces a broker-acceptable volume: risk-based or fixed, clamped to
// the instrument limits, normalized down to the lot step, then scaled down
// once if the margin estimate exceeds 95% of free margin.
func (e *OrderExecutor) size(sig types.TradeSignal, side types.Side, info types.SymbolInfo, acct types.AccountSnapshot) (float64, error) {
	var volume float64
	if e.Cfg.LotSizeMode == config.LotModeAuto {
		stopPips := math.Abs(sig.Entry-sig.Stop) / info.PipSize
		volume = risk.CalcVolume(acct.Balance, e.Cfg.RiskPercent, stopPips, info.PipValue)
	} else {
		volume = e.Cfg.FixedLots
	}
	if volume > info.VolumeMax {
		volume = info.VolumeMax
	}
	volume = info.NormalizeVolumeDown(volume)
	if volume < info.VolumeMin {
		return 0, fmt.Errorf("sized volume %.4f below instrument minimum %.4f", volume, info.VolumeMin)
	}

	margin, err := e.Broker.EstimatedMargin(e.Cfg.Symbol, side, volume)
	if err != nil {
		return 0, fmt.Errorf("margin estimate: %w", err)
	}
	if limit := acct.FreeMargin * 0.95; margin > limit && margin > 0 {
		scaled := info.NormalizeVolumeDown(volume * limit / margin)
		e.Log.Warn("volume_scaled_for_margin",
			logger.Float64("requested", volume),
			logger.Float64("scaled", scaled),
			logger.Float64("free_margin", acct.FreeMargin),
		)
		volume = scaled
		if volume < info.VolumeMin {
			return 0, fmt.Errorf("margin-scaled volume %.4f below instrument minimum %.4f", volume, info.VolumeMin)
		}
	}
	return volume, nil
}

// attachProtection retries the stop/target modification, widening both
// distances away from entry on every rejection.
func (e *OrderExecutor) attachProtection(pos *types.Position, sig types.TradeSignal) error {
	entry := pos.EntryPrice
	stopDist := math.Abs(sig.Entry - sig.Stop)
	targetDist := math.Abs(sig.Target1 - sig.Entry)
	widenStep := entry * protectionWidenPct / 100

	dir := 1.0
	if pos.Side == types.Sell {
		dir = -1.0
	}

	tries, err := Attempt(protectionAttempts, protectionPause, e.Sleep,
		func() error {
			return e.Broker.ModifyPosition(pos.ID, entry-dir*stopDist, entry+dir*targetDist)
		},
		func() {
			metrics.ProtectionRetries.Inc()
			stopDist += widenStep
			targetDist += widenStep
		},
	)
	if err != nil {
		metrics.UnprotectedPositions.Inc()
		e.Log.Error("protection_unresolved",
			logger.Int64("position_id", pos.ID),
			logger.Int("attempts", tries),
			logger.Err(err),
		)
		return ErrProtectionUnresolved
	}
	pos.StopLoss = entry - dir*stopDist
	pos.TakeProfit = entry + dir*targetDist
	if tries > 1 {
		e.Log.Warn("protection_attached_after_retries",
			logger.Int64("position_id", pos.ID),
			logger.Int("attempts", tries),
		)
	}
	return nil
}
