package executor

import (
	"testing"

	"github.com/evdnx/gotf/types"
)

func testInfo() types.SymbolInfo {
	return types.SymbolInfo{
		Name:       "EURUSD",
		PipSize:    0.0001,
		PipValue:   10,
		TickSize:   0.00001,
		Digits:     5,
		VolumeMin:  0.01,
		VolumeMax:  100,
		VolumeStep: 0.01,
		Bid:        1.1000,
		Ask:        1.1002,
		Spread:     0.0002,
	}
}

func TestMarketOrderFillsAtQuote(t *testing.T) {
	b := NewPaperBroker(10000, 100, testInfo())
	buy, err := b.ExecuteMarketOrder(types.Order{Symbol: "EURUSD", Side: types.Buy, Volume: 0.1})
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if buy.EntryPrice != 1.1002 {
		t.Fatalf("buy filled at %g, want ask 1.1002", buy.EntryPrice)
	}
	sell, err := b.ExecuteMarketOrder(types.Order{Symbol: "EURUSD", Side: types.Sell, Volume: 0.1})
	if err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if sell.EntryPrice != 1.1000 {
		t.Fatalf("sell filled at %g, want bid 1.1000", sell.EntryPrice)
	}
}

func TestRejectsSubMinimumVolume(t *testing.T) {
	b := NewPaperBroker(10000, 100, testInfo())
	if _, err := b.ExecuteMarketOrder(types.Order{Symbol: "EURUSD", Side: types.Buy, Volume: 0.001}); err == nil {
		t.Fatalf("expected a rejection for sub-minimum volume")
	}
}

func TestCloseRealizesProfit(t *testing.T) {
	b := NewPaperBroker(10000, 100, testInfo())
	pos, err := b.ExecuteMarketOrder(types.Order{Symbol: "EURUSD", Side: types.Buy, Volume: 0.1})
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	b.SetQuote(1.1052, 1.1054) // +50 pips on the bid
	if err := b.ClosePosition(pos.ID); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	acct := b.Account()
	if acct.Balance != 10050 {
		t.Fatalf("balance = %g, want 10050 after a 50 pip win on 0.1 lots", acct.Balance)
	}
	if len(b.Positions()) != 0 {
		t.Fatalf("position still open after close")
	}
}

func TestSellCloseExitsAtAsk(t *testing.T) {
	b := NewPaperBroker(10000, 100, testInfo())
	pos, err := b.ExecuteMarketOrder(types.Order{Symbol: "EURUSD", Side: types.Sell, Volume: 0.1})
	if err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	// A short exits through a buy, so the ask is the closing quote.
	b.SetQuote(1.0948, 1.0950) // 50 pips below the 1.1000 entry
	if err := b.ClosePosition(pos.ID); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if acct := b.Account(); acct.Balance != 10050 {
		t.Fatalf("balance = %g, want 10050 after a 50 pip win on 0.1 lots", acct.Balance)
	}
}

func TestModifyPosition(t *testing.T) {
	b := NewPaperBroker(10000, 100, testInfo())
	pos, _ := b.ExecuteMarketOrder(types.Order{Symbol: "EURUSD", Side: types.Buy, Volume: 0.1})
	if err := b.ModifyPosition(pos.ID, 1.0950, 1.1100); err != nil {
		t.Fatalf("modify failed: %v", err)
	}
	got := b.Positions()[0]
	if got.StopLoss != 1.0950 || got.TakeProfit != 1.1100 {
		t.Fatalf("levels = %g/%g, want 1.0950/1.1100", got.StopLoss, got.TakeProfit)
	}
	if err := b.ModifyPosition(999, 1, 2); err == nil {
		t.Fatalf("modifying an unknown position must fail")
	}
}

func TestFreeMarginReflectsOpenPositions(t *testing.T) {
	b := NewPaperBroker(10000, 100, testInfo())
	before := b.Account()
	b.ExecuteMarketOrder(types.Order{Symbol: "EURUSD", Side: types.Buy, Volume: 0.1})
	after := b.Account()
	if after.FreeMargin >= before.FreeMargin {
		t.Fatalf("free margin did not drop: %g -> %g", before.FreeMargin, after.FreeMargin)
	}
	est, err := b.EstimatedMargin("EURUSD", types.Buy, 0.1)
	if err != nil || est <= 0 {
		t.Fatalf("EstimatedMargin = %g, %v", est, err)
	}
}
