package risk

import (
	"testing"

	"github.com/evdnx/gotf/testutils"
)

func defaultLimits() Limits {
	return Limits{
		MaxDailyLossPercent:   3.0,
		MaxSessionLossPercent: 5.0,
		MaxDailyTrades:        10,
		MaxTotalLots:          0.5,
	}
}

func healthyState() State {
	return State{
		DayStartBalance:    10000,
		SessionStartEquity: 10000,
		DailyPnL:           50,
		SessionPnL:         50,
		DailyTrades:        2,
		OpenLots:           0.1,
		FreeMargin:         8000,
		Balance:            10000,
	}
}

func TestCalcVolume(t *testing.T) {
	// 1% of 10000 = 100 risked; 50 pip stop at $10/pip/lot = 0.2 lots.
	if got := CalcVolume(10000, 1.0, 50, 10); got != 0.2 {
		t.Fatalf("volume = %g, want 0.2", got)
	}
	if got := CalcVolume(10000, 1.0, 0, 10); got != 0 {
		t.Fatalf("degenerate stop distance must size to 0, got %g", got)
	}
	if got := CalcVolume(10000, 1.0, 50, 0); got != 0 {
		t.Fatalf("degenerate pip value must size to 0, got %g", got)
	}
}

func TestHealthyStatePasses(t *testing.T) {
	g := NewGate(defaultLimits(), testutils.NewMockLogger())
	ok, check := g.Check(healthyState())
	if !ok {
		t.Fatalf("healthy state blocked by %q", check)
	}
}

func TestDailyLossBlocks(t *testing.T) {
	g := NewGate(defaultLimits(), testutils.NewMockLogger())
	s := healthyState()
	s.DailyPnL = -350 // 3.5% of the 10000 day-start balance
	ok, check := g.Check(s)
	if ok || check != "daily_loss" {
		t.Fatalf("ok=%v check=%q, want daily_loss block", ok, check)
	}
}

func TestDailyLossBoundaryIsExclusive(t *testing.T) {
	g := NewGate(defaultLimits(), testutils.NewMockLogger())
	s := healthyState()
	s.DailyPnL = -300 // exactly at the 3% limit
	if ok, check := g.Check(s); !ok {
		t.Fatalf("loss exactly at the daily limit blocked by %q", check)
	}
}

func TestSessionLossBoundaryIsInclusive(t *testing.T) {
	g := NewGate(defaultLimits(), testutils.NewMockLogger())
	s := healthyState()
	s.SessionPnL = -500 // exactly at the 5% limit
	ok, check := g.Check(s)
	if ok || check != "session_loss" {
		t.Fatalf("ok=%v check=%q, want session_loss block", ok, check)
	}
}

func TestTradeCountBlocks(t *testing.T) {
	g := NewGate(defaultLimits(), testutils.NewMockLogger())
	s := healthyState()
	s.DailyTrades = 10
	ok, check := g.Check(s)
	if ok || check != "daily_trades" {
		t.Fatalf("ok=%v check=%q, want daily_trades block", ok, check)
	}
}

func TestOpenLotsBlock(t *testing.T) {
	g := NewGate(defaultLimits(), testutils.NewMockLogger())
	s := healthyState()
	s.OpenLots = 0.5
	ok, check := g.Check(s)
	if ok || check != "total_lots" {
		t.Fatalf("ok=%v check=%q, want total_lots block", ok, check)
	}
}

func TestMarginFloorScalesWithSmallAccounts(t *testing.T) {
	g := NewGate(defaultLimits(), testutils.NewMockLogger())

	s := healthyState()
	s.FreeMargin = 40
	ok, check := g.Check(s)
	if ok || check != "free_margin" {
		t.Fatalf("ok=%v check=%q, want free_margin block at $40", ok, check)
	}

	// A $300 account needs only $30 free, not the $50 floor.
	s = healthyState()
	s.Balance = 300
	s.DayStartBalance = 300
	s.SessionStartEquity = 300
	s.DailyPnL = 0
	s.SessionPnL = 0
	s.OpenLots = 0.01
	s.FreeMargin = 40
	if ok, check := g.Check(s); !ok {
		t.Fatalf("small account with $40 free margin blocked by %q", check)
	}
}

func TestChecksShortCircuitInOrder(t *testing.T) {
	log := testutils.NewMockLogger()
	g := NewGate(defaultLimits(), log)
	s := healthyState()
	s.DailyPnL = -400
	s.DailyTrades = 50 // would also block, but daily loss is checked first
	_, check := g.Check(s)
	if check != "daily_loss" {
		t.Fatalf("check = %q, want the first failing check", check)
	}
	if log.LastMessage() != "safety_check_blocked" {
		t.Fatalf("blocked check not logged: %q", log.LastMessage())
	}
}
