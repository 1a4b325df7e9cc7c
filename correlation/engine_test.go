package correlation

import (
	"errors"
	"testing"
	"time"

	"github.com/evdnx/gotf/testutils"
	"github.com/evdnx/gotf/types"
)

// stubProvider returns scripted changes per symbol; absent symbols fail.
type stubProvider struct {
	changes map[string]float64
}

func (p *stubProvider) RecentChange(symbol string) (float64, error) {
	c, ok := p.changes[symbol]
	if !ok {
		return 0, errors.New("symbol unavailable")
	}
	return c, nil
}

func TestEdgesForKnownFamilies(t *testing.T) {
	if got := len(EdgesFor("XAUUSD")); got != 5 {
		t.Fatalf("gold edges = %d, want 5", got)
	}
	if got := len(EdgesFor("EURUSD")); got != 4 {
		t.Fatalf("eurusd edges = %d, want 4", got)
	}
	if got := len(EdgesFor("BTCUSD")); got != 2 {
		t.Fatalf("btc edges = %d, want 2", got)
	}
	// Unknown dollar instruments fall back to a single EURUSD edge.
	if got := len(EdgesFor("MXNUSD")); got != 1 {
		t.Fatalf("fallback edges = %d, want 1", got)
	}
	if got := EdgesFor("ZZZZZZ"); got != nil {
		t.Fatalf("unknown symbol edges = %v, want none", got)
	}
}

func TestRefreshAggregatesWeightedChanges(t *testing.T) {
	edges := []Edge{
		{"EURUSD", 0.80, 1.0},
		{"USDJPY", -0.70, 0.8},
	}
	provider := &stubProvider{changes: map[string]float64{
		"EURUSD": 0.01,  // +1% in 4h
		"USDJPY": -0.01, // -1%
	}}
	e := NewEngine(edges, provider, testutils.NewMockLogger())
	if !e.Refresh(time.Now()) {
		t.Fatalf("expected a recomputation")
	}
	// (0.01*0.8*1.0*20 + -0.01*-0.7*0.8*20) / 1.8
	want := (0.16 + 0.112) / 1.8
	if got := e.Bias(); got < want-1e-9 || got > want+1e-9 {
		t.Fatalf("bias = %g, want %g", got, want)
	}
}

func TestRefreshThrottles(t *testing.T) {
	provider := &stubProvider{changes: map[string]float64{"EURUSD": 0.01}}
	e := NewEngine([]Edge{{"EURUSD", 0.8, 1.0}}, provider, testutils.NewMockLogger())
	now := time.Now()
	if !e.Refresh(now) {
		t.Fatalf("first refresh must run")
	}
	if e.Refresh(now.Add(29 * time.Minute)) {
		t.Fatalf("refreshed inside the cadence window")
	}
	if !e.Refresh(now.Add(31 * time.Minute)) {
		t.Fatalf("expected a refresh after the cadence elapsed")
	}
}

func TestRefreshSkipsFailedPeers(t *testing.T) {
	edges := []Edge{
		{"EURUSD", 0.80, 1.0},
		{"GHOST", 0.90, 2.0}, // provider cannot resolve this one
	}
	provider := &stubProvider{changes: map[string]float64{"EURUSD": 0.01}}
	e := NewEngine(edges, provider, testutils.NewMockLogger())
	e.Refresh(time.Now())
	want := 0.01 * 0.80 * 1.0 * 20 / 1.0
	if got := e.Bias(); got < want-1e-9 || got > want+1e-9 {
		t.Fatalf("bias = %g, want %g from the resolvable peer only", got, want)
	}
}

func TestBiasClampedToUnitRange(t *testing.T) {
	provider := &stubProvider{changes: map[string]float64{"EURUSD": 0.5}}
	e := NewEngine([]Edge{{"EURUSD", 1.0, 1.0}}, provider, testutils.NewMockLogger())
	e.Refresh(time.Now())
	if got := e.Bias(); got != 1.0 {
		t.Fatalf("bias = %g, want clamped 1.0", got)
	}
}

func TestAllowVetoRules(t *testing.T) {
	e := NewEngine(nil, nil, testutils.NewMockLogger())

	e.bias = 0.02 // below the opinion threshold
	if !e.Allow(types.Buy) || !e.Allow(types.Sell) {
		t.Fatalf("weak bias must not veto")
	}

	e.bias = 0.10 // strongly bullish
	if !e.Allow(types.Buy) {
		t.Fatalf("bullish bias vetoed a buy")
	}
	if e.Allow(types.Sell) {
		t.Fatalf("bullish bias failed to veto a sell")
	}

	e.bias = -0.10 // strongly bearish
	if e.Allow(types.Buy) {
		t.Fatalf("bearish bias failed to veto a buy")
	}
	if !e.Allow(types.Sell) {
		t.Fatalf("bearish bias vetoed a sell")
	}

	// Opinion without conviction: between the two thresholds nothing is vetoed.
	e.bias = 0.04
	if !e.Allow(types.Sell) {
		t.Fatalf("sub-veto bias blocked a sell")
	}
}
