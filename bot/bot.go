// Package bot wires the decision components into the single-threaded tick
// loop: signal intake, safety gating, execution, position management,
// adaptation and state export.
package bot

import (
	"fmt"
	"math"
	"time"

	"github.com/evdnx/gotf/adaptive"
	"github.com/evdnx/gotf/config"
	"github.com/evdnx/gotf/correlation"
	"github.com/evdnx/gotf/executor"
	"github.com/evdnx/gotf/feed"
	"github.com/evdnx/gotf/ledger"
	"github.com/evdnx/gotf/logger"
	"github.com/evdnx/gotf/marketdata"
	"github.com/evdnx/gotf/metrics"
	"github.com/evdnx/gotf/quality"
	"github.com/evdnx/gotf/regime"
	"github.com/evdnx/gotf/risk"
	"github.com/evdnx/gotf/trade"
	"github.com/evdnx/gotf/types"
)

// Label tags every position this agent opens.
const Label = "gotf"

const (
	signalCadence = 3 * time.Second
	reviewCadence = 30 * time.Second
	legacyCadence = 30 * time.Second
	exportCadence = 10 * time.Second
	signalMaxAge  = 15 * time.Minute
)

// tracked ties an open position to its pending ledger samples so the close
// resolves them.
type tracked struct {
	predictionID int64
	sessionID    int64
	rrID         int64
	stopPips     float64
	targetPips   float64
}

// Bot owns the control loop state. All methods run on the tick goroutine;
// nothing here is safe for concurrent use.
type Bot struct {
	Cfg config.BotConfig
	Log logger.Logger

	Broker      executor.Broker
	Analyzer    *marketdata.Analyzer
	Changes     *marketdata.ChangeTracker
	Ledger      *ledger.Ledger
	Controllers []*adaptive.Controller
	RSI         adaptive.RSIThresholds
	Session     *adaptive.SessionScheduler
	Regime      *regime.Detector
	Correlation *correlation.Engine
	Gate        *risk.Gate
	Orders      *trade.OrderExecutor
	Manager     *trade.Manager
	Signals     *feed.FileSignalSource
	Reviews     *feed.FileReviewSource
	Exporter    *feed.Exporter

	Clock func() time.Time

	day                time.Time
	dayStartBalance    float64
	sessionStartEquity float64
	dailyTrades        int
	sessionStats       feed.SessionStats

	processed map[string]bool
	open      map[int64]tracked
	lastSeen  map[int64]types.Position

	lastSignalCheck time.Time
	lastReviewCheck time.Time
	lastLegacyCheck time.Time
	lastExport      time.Time
}

// New assembles a bot around an already-constructed component set.
func New(cfg config.BotConfig, broker executor.Broker, log logger.Logger) (*Bot, error) {
	analyzer, err := marketdata.NewAnalyzer(cfg.Symbol, log)
	if err != nil {
		return nil, fmt.Errorf("market data analyzer: %w", err)
	}

	led := ledger.New()
	freq := cfg.AdjustmentFrequency

	atr := adaptive.NewATRNoiseController(1.0, freq, log)
	alignment := adaptive.NewAlignmentController(freq, log)
	rr := adaptive.NewRiskRewardController(freq, log)
	swing := adaptive.NewSwingStrengthController(freq, log)
	tunnel := adaptive.NewTunnelPeriodController(freq, log)
	rsi, rsiCtrls := adaptive.NewRSIControllers(freq, log)

	controllers := []*adaptive.Controller{atr, alignment, rr, swing, tunnel}
	controllers = append(controllers, rsiCtrls...)

	changes := marketdata.NewChangeTracker()
	b := &Bot{
		Cfg:         cfg,
		Log:         log,
		Broker:      broker,
		Analyzer:    analyzer,
		Changes:     changes,
		Ledger:      led,
		Controllers: controllers,
		RSI:         rsi,
		Session:     adaptive.NewSessionScheduler(log),
		Regime: regime.NewDetector(regime.Params{
			TunnelPeriod: tunnel.Param,
			ATRNoise:     atr.Param,
			RiskReward:   rr.Param,
		}, log),
		Correlation: correlation.NewEngine(correlation.EdgesFor(cfg.Symbol), changes, log),
		Gate: risk.NewGate(risk.Limits{
			MaxDailyLossPercent:   cfg.MaxDailyLossPercent,
			MaxSessionLossPercent: cfg.MaxSessionLossPercent,
			MaxDailyTrades:        cfg.MaxDailyTrades,
			MaxTotalLots:          cfg.MaxTotalLots,
		}, log),
		Orders:    trade.NewOrderExecutor(broker, cfg, Label, log),
		Manager:   trade.NewManager(broker, cfg, Label, log),
		Signals:   feed.NewFileSignalSource(cfg.DataDir + "/quantum_signal.json"),
		Reviews:   feed.NewFileReviewSource(cfg.DataDir + "/position_reviews.json"),
		Exporter:  feed.NewExporter(cfg.DataDir + "/market_export.json"),
		Clock:     time.Now,
		processed: make(map[string]bool),
		open:      make(map[int64]tracked),
		lastSeen:  make(map[int64]types.Position),
	}

	acct := broker.Account()
	b.sessionStartEquity = acct.Equity
	b.dayStartBalance = acct.Balance
	return b, nil
}

// runUnit isolates one unit of tick work; a panic in one unit never stops
// the others.
func (b *Bot) runUnit(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.Log.Error("tick_unit_panic",
				logger.String("unit", name),
				logger.Any("panic", r),
			)
		}
	}()
	fn()
}

// OnTick drives one iteration of the control loop.
func (b *Bot) OnTick() {
	now := b.Clock()
	b.rollDay(now)

	acct := b.Broker.Account()
	metrics.EquityGauge.Set(acct.Equity)

	b.runUnit("closure_tracking", func() { b.trackClosures() })
	b.runUnit("position_management", func() { b.managePositions() })
	b.runUnit("correlation", func() { b.Correlation.Refresh(now) })
	b.runUnit("adaptation", func() { b.adapt() })

	if now.Sub(b.lastSignalCheck) >= signalCadence {
		b.lastSignalCheck = now
		b.runUnit("signal", func() { b.processSignal(now, acct) })
	}
	if now.Sub(b.lastReviewCheck) >= reviewCadence {
		b.lastReviewCheck = now
		b.runUnit("reviews", func() { b.processReviews() })
	}
	if now.Sub(b.lastLegacyCheck) >= legacyCadence {
		b.lastLegacyCheck = now
		b.runUnit("legacy", func() { b.adoptLegacy(now) })
	}
	if now.Sub(b.lastExport) >= exportCadence {
		b.lastExport = now
		b.runUnit("export", func() { b.export(now, acct) })
	}
}

// OnBar ingests a completed bar for the traded symbol and runs the
// bar-cadence regime classification off the base timeframe.
func (b *Bot) OnBar(tf types.Timeframe, bar types.Bar) {
	b.Analyzer.OnBar(tf, bar)
	b.Changes.Update(b.Cfg.Symbol, bar.Close, bar.OpenTime)
	if tf != types.M15 || !b.Cfg.EnableRegimeDetection {
		return
	}
	snap := b.Analyzer.Snapshot()
	b.Regime.OnBar(regime.Inputs{
		ATRRatio:      snap.ATRRatio,
		TrendStrength: snap.TrendStrength,
		BarRange:      snap.BarRange,
		AvgBarRange:   snap.AvgBarRange,
	})
}

// OnPeerBar feeds a correlated instrument's price into the change tracker.
func (b *Bot) OnPeerBar(symbol string, price float64, at time.Time) {
	b.Changes.Update(symbol, price, at)
}

// rollDay resets the daily counters at the first tick of a new day.
func (b *Bot) rollDay(now time.Time) {
	day := now.Truncate(24 * time.Hour)
	if b.day.Equal(day) {
		return
	}
	if !b.day.IsZero() {
		acct := b.Broker.Account()
		b.Log.Info("daily_rollover",
			logger.Int("trades", b.dailyTrades),
			logger.Float64("pnl", acct.Balance-b.dayStartBalance),
		)
		b.dayStartBalance = acct.Balance
	}
	b.day = day
	b.dailyTrades = 0
}

func (b *Bot) managePositions() {
	info, err := b.Broker.SymbolInfo(b.Cfg.Symbol)
	if err != nil {
		return
	}
	b.Manager.ManageTick(info)
}

func (b *Bot) adoptLegacy(now time.Time) {
	info, err := b.Broker.SymbolInfo(b.Cfg.Symbol)
	if err != nil {
		return
	}
	b.Manager.AdoptLegacy(info, now)
}

// adapt runs the debounced controllers and the session scheduler; each one
// decides internally whether enough new outcomes arrived.
func (b *Bot) adapt() {
	if !b.Cfg.EnableAdaptiveEngines {
		return
	}
	for _, c := range b.Controllers {
		c.Tick(b.Ledger)
	}
	b.Session.Tick(b.Ledger)
}

// trackClosures handles positions that disappeared from the broker since the
// last tick: every close of a position carrying this agent's label counts in
// the session stats, and closes of bot-executed signals additionally resolve
// their pending ledger samples.
func (b *Bot) trackClosures() {
	current := make(map[int64]types.Position)
	for _, p := range b.Broker.Positions() {
		current[p.ID] = p
	}

	for id, last := range b.lastSeen {
		if _, stillOpen := current[id]; stillOpen {
			continue
		}
		delete(b.lastSeen, id)
		t, tracked := b.open[id]
		delete(b.open, id)
		if last.Label != Label {
			continue
		}

		outcome := ledger.Failure
		if last.NetProfit >= 0 {
			outcome = ledger.Success
			b.sessionStats.Wins++
			b.sessionStats.GrossProfit += last.NetProfit
		} else {
			b.sessionStats.Losses++
			b.sessionStats.GrossLoss += -last.NetProfit
		}
		b.Manager.Forget(id)

		pips := b.pipsMoved(last)
		if tracked {
			b.Ledger.Resolve(adaptive.MetricPrediction, t.predictionID, outcome, pips)
			b.Ledger.Resolve(adaptive.MetricSession, t.sessionID, outcome, pips)
			if t.stopPips > 0 && t.targetPips > 0 {
				b.Ledger.Resolve(adaptive.MetricRiskReward, t.rrID, outcome, pips/t.stopPips)
			}
		}
		b.Log.Info("position_closed",
			logger.Int64("position_id", id),
			logger.Float64("pnl", last.NetProfit),
			logger.Float64("pips", pips),
		)
	}

	for id, p := range current {
		b.lastSeen[id] = p
	}
}

func (b *Bot) pipsMoved(p types.Position) float64 {
	info, err := b.Broker.SymbolInfo(p.Symbol)
	if err != nil || info.PipValue <= 0 || p.Volume <= 0 {
		return math.Abs(p.NetProfit)
	}
	return math.Abs(p.NetProfit / (info.PipValue * p.Volume))
}

// processSignal runs the full gate chain over the latest inbound signal.
// Every observed signal id is marked processed exactly once, whatever the
// disposition, so a later tick never re-evaluates it.
func (b *Bot) processSignal(now time.Time, acct types.AccountSnapshot) {
	sig, ok, err := b.Signals.Poll()
	if err != nil {
		b.Log.Warn("signal_poll_failed", logger.Err(err))
		return
	}
	if !ok || sig.SignalID == "" || b.processed[sig.SignalID] {
		return
	}
	b.processed[sig.SignalID] = true

	side := types.Side(sig.Signal)
	switch {
	case sig.Status != "APPROVED":
		b.dispose(sig, "rejected", "status not approved")
		return
	case !b.Cfg.EnableAutoTrade:
		b.dispose(sig, "rejected", "auto trade disabled")
		return
	case !side.Valid():
		b.dispose(sig, "rejected", "unknown direction")
		return
	case !sig.HasValidLevels():
		b.dispose(sig, "rejected", "missing price levels")
		return
	case sig.Confidence < b.Cfg.MinConfidence:
		b.dispose(sig, "low_confidence", "below minimum confidence")
		return
	}
	if age, ok := sig.Age(now); !ok || age > signalMaxAge {
		b.dispose(sig, "stale", "signal expired")
		return
	}
	if !b.Session.IsGoodTradingHour(now.UTC().Hour()) {
		b.dispose(sig, "blocked", "outside tradable hours")
		return
	}
	if b.Cfg.EnableRegimeDetection && b.Regime.IsBlocking() {
		b.dispose(sig, "blocked", "regime suppresses entries: "+b.Regime.Current().String())
		return
	}
	if b.Cfg.EnableCorrelationFilter && !b.Correlation.Allow(side) {
		b.dispose(sig, "blocked", "correlation veto")
		return
	}
	if open := len(b.Broker.Positions()); open >= b.Cfg.MaxPositions {
		b.dispose(sig, "blocked", "max positions reached")
		return
	}
	if ok, check := b.Gate.Check(b.riskState(acct)); !ok {
		// A safety block is temporary: leave the signal eligible for the
		// next poll so it can still execute once limits clear, until it
		// ages out.
		delete(b.processed, sig.SignalID)
		b.dispose(sig, "blocked", "safety check failed: "+check)
		return
	}

	// Advisory quality score, logged alongside the execution decision.
	if b.Analyzer.Warm() {
		snap := b.Analyzer.Snapshot()
		score := quality.Evaluate(side, quality.Inputs{
			TrendScore:    snap.TrendScore,
			RSI:           snap.RSI,
			TrendStrength: snap.TrendStrength,
			VolumeRatio:   snap.VolumeRatio,
			ATRRatio:      snap.ATRRatio,
		})
		b.Log.Info("signal_quality",
			logger.String("signal_id", sig.SignalID),
			logger.Float64("score", score.Total),
			logger.String("label", string(score.Label)),
		)
	}

	pos, err := b.Orders.Execute(sig)
	if err != nil && err != trade.ErrProtectionUnresolved {
		b.Log.Error("execution_failed",
			logger.String("signal_id", sig.SignalID),
			logger.Err(err),
		)
		metrics.SignalsProcessed.WithLabelValues("rejected").Inc()
		return
	}

	b.dailyTrades++
	metrics.SignalsProcessed.WithLabelValues("executed").Inc()
	b.recordOutcomeSamples(sig, pos, now)
	if err == trade.ErrProtectionUnresolved {
		b.Log.Error("position_unprotected",
			logger.Int64("position_id", pos.ID),
			logger.String("signal_id", sig.SignalID),
		)
	}
}

func (b *Bot) dispose(sig types.TradeSignal, disposition, reason string) {
	metrics.SignalsProcessed.WithLabelValues(disposition).Inc()
	b.Log.Info("signal_not_executed",
		logger.String("signal_id", sig.SignalID),
		logger.String("disposition", disposition),
		logger.String("reason", reason),
	)
}

// recordOutcomeSamples opens the pending ledger samples a future close will
// resolve.
func (b *Bot) recordOutcomeSamples(sig types.TradeSignal, pos types.Position, now time.Time) {
	info, err := b.Broker.SymbolInfo(pos.Symbol)
	if err != nil || info.PipSize <= 0 {
		return
	}
	stopPips := math.Abs(sig.Entry-sig.Stop) / info.PipSize
	targetPips := math.Abs(sig.Target1-sig.Entry) / info.PipSize

	t := tracked{
		stopPips:   stopPips,
		targetPips: targetPips,
	}
	t.predictionID = b.Ledger.Record(adaptive.MetricPrediction, ledger.Sample{
		Tag: string(pos.Side),
		At:  now,
	})
	t.sessionID = b.Ledger.Record(adaptive.MetricSession, ledger.Sample{
		Tag: fmt.Sprintf("%d", now.UTC().Hour()),
		At:  now,
	})
	t.rrID = b.Ledger.Record(adaptive.MetricRiskReward, ledger.Sample{
		Tag: fmt.Sprintf("%d", int(math.Round(targetPips/math.Max(stopPips, 1)))),
		At:  now,
	})
	b.open[pos.ID] = t
	b.lastSeen[pos.ID] = pos
}

func (b *Bot) processReviews() {
	batch, ok, err := b.Reviews.Poll()
	if err != nil {
		b.Log.Warn("review_poll_failed", logger.Err(err))
		return
	}
	if !ok || len(batch.Reviews) == 0 {
		return
	}
	info, err := b.Broker.SymbolInfo(b.Cfg.Symbol)
	if err != nil {
		return
	}
	executed := b.Manager.ApplyReviews(batch, info)
	if executed > 0 {
		if err := b.Reviews.Clear(); err != nil {
			b.Log.Warn("review_clear_failed", logger.Err(err))
		}
		b.Log.Info("reviews_executed", logger.Int("count", executed))
	}
}

func (b *Bot) riskState(acct types.AccountSnapshot) risk.State {
	openLots := 0.0
	for _, p := range b.Broker.Positions() {
		if p.Symbol == b.Cfg.Symbol {
			openLots += p.Volume
		}
	}
	return risk.State{
		DayStartBalance:    b.dayStartBalance,
		SessionStartEquity: b.sessionStartEquity,
		DailyPnL:           acct.Balance - b.dayStartBalance,
		SessionPnL:         acct.Equity - b.sessionStartEquity,
		DailyTrades:        b.dailyTrades,
		OpenLots:           openLots,
		FreeMargin:         acct.FreeMargin,
		Balance:            acct.Balance,
	}
}

func (b *Bot) export(now time.Time, acct types.AccountSnapshot) {
	var positions []types.Position
	buckets := make(map[string]int)
	for _, p := range b.Broker.Positions() {
		if p.Symbol != b.Cfg.Symbol || p.Label != Label {
			continue
		}
		positions = append(positions, p)
		bucket := p.Comment
		if tier, ok := b.Manager.AdoptedTier(p.ID); ok {
			bucket = tier
		}
		if bucket == "" {
			bucket = "UNTAGGED"
		}
		buckets[bucket]++
	}
	snap := feed.StateSnapshot{
		Symbol:       b.Cfg.Symbol,
		CurrentPrice: b.Analyzer.Snapshot().Price,
		Positions:    feed.SummarizePositions(positions),
		Buckets:      buckets,
		Balance:      acct.Balance,
		Equity:       acct.Equity,
		DailyTrades:  b.dailyTrades,
		DailyPnL:     acct.Balance - b.dayStartBalance,
		Session:      b.sessionStats,
		Regime:       b.Regime.Current().String(),
	}
	if err := b.Exporter.Write(snap, now); err != nil {
		b.Log.Warn("state_export_failed", logger.Err(err))
	}
}
