package trade

import (
	"math"
	"strings"
	"time"

	"github.com/evdnx/gotf/config"
	"github.com/evdnx/gotf/executor"
	"github.com/evdnx/gotf/logger"
	"github.com/evdnx/gotf/types"
)

const (
	modifyAttempts = 10
	// Each rejected modify widens the requested distance by this percentage
	// of itself.
	modifyWidenPct = 0.1
)

// Manager runs the per-tick position management: breakeven tiers, trailing,
// legacy adoption and externally suggested actions.
type Manager struct {
	Broker executor.Broker
	Cfg    config.BotConfig
	Log    logger.Logger
	Sleep  func(time.Duration)
	Label  string

	adopted map[int64]string // position id -> legacy tier name
}

func NewManager(broker executor.Broker, cfg config.BotConfig, label string, log logger.Logger) *Manager {
	return &Manager{
		Broker:  broker,
		Cfg:     cfg,
		Log:     log,
		Sleep:   time.Sleep,
		Label:   label,
		adopted: make(map[int64]string),
	}
}

// AdoptedTier returns the tier a position was adopted under, if any.
func (m *Manager) AdoptedTier(id int64) (string, bool) {
	tier, ok := m.adopted[id]
	return tier, ok
}

// Forget drops the adoption record of a closed position.
func (m *Manager) Forget(id int64) { delete(m.adopted, id) }

// managed returns the positions this manager is responsible for.
func (m *Manager) managed() []types.Position {
	var out []types.Position
	for _, p := range m.Broker.Positions() {
		if p.Symbol != m.Cfg.Symbol {
			continue
		}
		if !m.Cfg.ManageAllPositions && p.Label != m.Label {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SafeModify applies a stop/target change with the standard validations:
// no-op changes (within one pip of current) are skipped successfully, levels
// on the wrong side of the market are rejected and reported, broker
// rejections retry with a widened distance. Zero means "leave that level
// alone". Validity is judged against the current price rather than entry so
// a breakeven stop locked into profit still passes.
func (m *Manager) SafeModify(pos types.Position, info types.SymbolInfo, newStop, newTarget float64, context string) bool {
	stopChanged := newStop != 0 && (!pos.HasStop() || math.Abs(newStop-pos.StopLoss) > info.PipSize)
	targetChanged := newTarget != 0 && (!pos.HasTarget() || math.Abs(newTarget-pos.TakeProfit) > info.PipSize)
	if !stopChanged && !targetChanged {
		return true
	}

	price := info.Bid
	if pos.Side == types.Sell {
		price = info.Ask
	}
	if newStop != 0 {
		validSide := newStop < price
		if pos.Side == types.Sell {
			validSide = newStop > price
		}
		if !validSide {
			m.Log.Error("stop_on_wrong_side",
				logger.Int64("position_id", pos.ID),
				logger.String("side", string(pos.Side)),
				logger.Float64("price", price),
				logger.Float64("stop", newStop),
				logger.String("context", context),
			)
			return false
		}
	}
	if newTarget != 0 {
		validSide := newTarget > price
		if pos.Side == types.Sell {
			validSide = newTarget < price
		}
		if !validSide {
			m.Log.Error("target_on_wrong_side",
				logger.Int64("position_id", pos.ID),
				logger.String("side", string(pos.Side)),
				logger.Float64("price", price),
				logger.Float64("target", newTarget),
				logger.String("context", context),
			)
			return false
		}
	}

	stop, target := newStop, newTarget
	if stop == 0 {
		stop = pos.StopLoss
	}
	if target == 0 {
		target = pos.TakeProfit
	}

	tries, err := Attempt(modifyAttempts, 0, m.Sleep,
		func() error { return m.Broker.ModifyPosition(pos.ID, stop, target) },
		func() {
			// Broker rejected the distance: push the requested levels
			// further away from the current price.
			if newStop != 0 {
				dist := math.Abs(price-stop) * (1 + modifyWidenPct/100)
				if pos.Side == types.Buy {
					stop = price - dist
				} else {
					stop = price + dist
				}
			}
			if newTarget != 0 {
				dist := math.Abs(target-price) * (1 + modifyWidenPct/100)
				if pos.Side == types.Buy {
					target = price + dist
				} else {
					target = price - dist
				}
			}
		},
	)
	if err != nil {
		m.Log.Error("modify_rejected",
			logger.Int64("position_id", pos.ID),
			logger.Int("attempts", modifyAttempts),
			logger.String("context", context),
			logger.Err(err),
		)
		return false
	}
	if tries > 1 {
		m.Log.Warn("modify_succeeded_after_retries",
			logger.Int64("position_id", pos.ID),
			logger.Int("attempts", tries),
			logger.String("context", context),
		)
	}
	return true
}

// ManageTick runs breakeven and trailing over the managed positions. The
// larger breakeven tier is checked first so a fast runner locks the bigger
// gain directly. Stops only ever tighten.
func (m *Manager) ManageTick(info types.SymbolInfo) {
	for _, pos := range m.managed() {
		if pos.NetProfit < 0 {
			continue
		}
		price := info.Bid
		if pos.Side == types.Sell {
			price = info.Ask
		}
		entry := pos.EntryPrice
		if entry == 0 {
			continue
		}
		gainPct := math.Abs(price-entry) / entry * 100

		if m.Cfg.EnableBreakeven {
			switch {
			case gainPct >= m.Cfg.BreakevenTier2TriggerPercent:
				m.lockGain(pos, info, m.Cfg.BreakevenTier2LockPercent, "breakeven_tier2")
			case gainPct >= m.Cfg.BreakevenTriggerPercent:
				m.lockGain(pos, info, m.Cfg.BreakevenLockPercent, "breakeven")
			}
		}

		if m.Cfg.EnableTrailing && gainPct >= m.Cfg.TrailStartPercent {
			trailDist := price * m.Cfg.TrailDistancePercent / 100
			newStop := price - trailDist
			if pos.Side == types.Sell {
				newStop = price + trailDist
			}
			if improves(pos, newStop) {
				m.SafeModify(pos, info, newStop, 0, "trailing")
			}
		}
	}
}

// lockGain moves the stop to entry plus/minus lockPct, only if it improves.
func (m *Manager) lockGain(pos types.Position, info types.SymbolInfo, lockPct float64, context string) {
	lockDist := pos.EntryPrice * lockPct / 100
	newStop := pos.EntryPrice + lockDist
	if pos.Side == types.Sell {
		newStop = pos.EntryPrice - lockDist
	}
	if improves(pos, newStop) {
		m.SafeModify(pos, info, newStop, 0, context)
	}
}

// improves reports whether newStop strictly tightens protection.
func improves(pos types.Position, newStop float64) bool {
	if !pos.HasStop() {
		return true
	}
	if pos.Side == types.Buy {
		return newStop > pos.StopLoss
	}
	return newStop < pos.StopLoss
}

// legacyTiers classify an untagged position by holding time into a stop and
// target percentage pair.
type legacyTier struct {
	name  string
	slPct float64
	tpPct float64
}

func tierForHold(hold time.Duration) legacyTier {
	switch {
	case hold < 5*time.Minute:
		return legacyTier{"FAST_SCALP", 0.3, 0.6}
	case hold < 15*time.Minute:
		return legacyTier{"SCALP", 0.6, 1.2}
	case hold >= 30*time.Minute && hold < time.Hour:
		return legacyTier{"SWING", 3.0, 6.0}
	case hold >= time.Hour:
		return legacyTier{"INTRADAY", 1.6, 3.0}
	default:
		return legacyTier{"SCALP", 0.6, 1.2}
	}
}

func isCryptoSymbol(symbol string) bool {
	for _, tag := range []string{"BTC", "ETH", "XRP", "LTC"} {
		if strings.Contains(symbol, tag) {
			return true
		}
	}
	return false
}

// AdoptLegacy attaches protective levels to positions that carry this
// agent's label but no strategy tag. The tier percentages double on crypto
// instruments. An existing stop is only tightened, never loosened; an
// existing target is preserved. Returns the number of adopted positions.
func (m *Manager) AdoptLegacy(info types.SymbolInfo, now time.Time) int {
	adopted := 0
	for _, pos := range m.Broker.Positions() {
		if pos.Symbol != m.Cfg.Symbol || pos.Label != m.Label || pos.Comment != "" {
			continue
		}
		hold := now.Sub(pos.OpenedAt)
		tier := tierForHold(hold)
		slPct, tpPct := tier.slPct, tier.tpPct
		if isCryptoSymbol(pos.Symbol) {
			slPct *= 2
			tpPct *= 2
		}

		entry := pos.EntryPrice
		slDist := entry * slPct / 100
		tpDist := entry * tpPct / 100
		newStop := entry - slDist
		newTarget := entry + tpDist
		if pos.Side == types.Sell {
			newStop = entry + slDist
			newTarget = entry - tpDist
		}

		if pos.HasStop() && !improves(pos, newStop) {
			newStop = 0
		}
		if pos.HasTarget() {
			newTarget = 0
		}

		if m.SafeModify(pos, info, newStop, newTarget, "legacy_"+tier.name) {
			adopted++
			m.adopted[pos.ID] = tier.name
			m.Log.Info("legacy_position_adopted",
				logger.Int64("position_id", pos.ID),
				logger.String("tier", tier.name),
				logger.Float64("hold_minutes", hold.Minutes()),
			)
		}
	}
	return adopted
}

// ApplyReviews executes a batch of externally suggested actions and returns
// how many executed successfully. Unknown actions and unknown positions are
// skipped with a report.
func (m *Manager) ApplyReviews(batch types.ReviewBatch, info types.SymbolInfo) int {
	byID := make(map[int64]types.Position)
	for _, p := range m.Broker.Positions() {
		byID[p.ID] = p
	}

	executed := 0
	for _, rev := range batch.Reviews {
		pos, ok := byID[rev.PositionID]
		if !ok {
			m.Log.Warn("review_position_not_found", logger.Int64("position_id", rev.PositionID))
			continue
		}
		m.Log.Info("review_action",
			logger.Int64("position_id", rev.PositionID),
			logger.String("action", string(rev.Action)),
			logger.String("reason", rev.Reason),
		)
		switch rev.Action {
		case types.ActionKeep:
			// Nothing to do.
		case types.ActionTightenStop:
			if !pos.HasStop() {
				continue
			}
			entry := pos.EntryPrice
			newDist := math.Abs(pos.StopLoss-entry) * 0.6
			newStop := entry - newDist
			if pos.Side == types.Sell {
				newStop = entry + newDist
			}
			if m.SafeModify(pos, info, newStop, 0, "review_tighten_sl") {
				executed++
			}
		case types.ActionMoveTargetCloser:
			if !pos.HasTarget() {
				continue
			}
			entry := pos.EntryPrice
			newDist := math.Abs(pos.TakeProfit-entry) * 0.6
			newTarget := entry + newDist
			if pos.Side == types.Sell {
				newTarget = entry - newDist
			}
			if m.SafeModify(pos, info, 0, newTarget, "review_move_tp") {
				executed++
			}
		case types.ActionCloseNow:
			if err := m.Broker.ClosePosition(pos.ID); err != nil {
				m.Log.Error("review_close_failed",
					logger.Int64("position_id", pos.ID),
					logger.Err(err),
				)
				continue
			}
			executed++
		default:
			m.Log.Warn("review_unknown_action",
				logger.Int64("position_id", rev.PositionID),
				logger.String("action", string(rev.Action)),
			)
		}
	}
	return executed
}
