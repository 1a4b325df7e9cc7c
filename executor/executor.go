package executor

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/evdnx/gotf/types"
)

// Broker is the trading venue surface the bot drives. Implementations wrap a
// live broker API or, for development, the in-memory paper broker below.
type Broker interface {
	ExecuteMarketOrder(o types.Order) (types.Position, error)
	ModifyPosition(id int64, stopLoss, takeProfit float64) error
	ClosePosition(id int64) error
	// Portfolio and instrument state
	Positions() []types.Position
	Account() types.AccountSnapshot
	SymbolInfo(symbol string) (types.SymbolInfo, error)
	EstimatedMargin(symbol string, side types.Side, volume float64) (float64, error)
}

// Very simple paper broker – perfect fills at bid/ask, no slippage
type PaperBroker struct {
	mu       sync.Mutex
	balance  float64
	leverage float64
	info     types.SymbolInfo
	nextID   int64
	open     map[int64]*types.Position
}

func NewPaperBroker(startBalance, leverage float64, info types.SymbolInfo) *PaperBroker {
	if leverage <= 0 {
		leverage = 100
	}
	return &PaperBroker{
		balance:  startBalance,
		leverage: leverage,
		info:     info,
		open:     make(map[int64]*types.Position),
	}
}

// SetQuote moves the paper market; running P&L follows the new bid/ask.
func (p *PaperBroker) SetQuote(bid, ask float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.info.Bid = bid
	p.info.Ask = ask
	p.info.Spread = ask - bid
	for _, pos := range p.open {
		pos.NetProfit = p.unrealized(pos)
	}
}

func (p *PaperBroker) ExecuteMarketOrder(o types.Order) (types.Position, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if o.Volume < p.info.VolumeMin {
		return types.Position{}, fmt.Errorf("volume %.4f below instrument minimum %.4f", o.Volume, p.info.VolumeMin)
	}
	price := p.fillPrice(o.Side)
	p.nextID++
	pos := &types.Position{
		ID:         p.nextID,
		Symbol:     o.Symbol,
		Side:       o.Side,
		Volume:     o.Volume,
		EntryPrice: price,
		Label:      o.Label,
		Comment:    o.Comment,
		OpenedAt:   time.Now(),
	}
	p.open[pos.ID] = pos
	log.Printf("[PAPER] %s %s %.4f @ %.5f (bal: %.2f)", o.Side, o.Symbol, o.Volume, price, p.balance)
	return *pos, nil
}

func (p *PaperBroker) ModifyPosition(id int64, stopLoss, takeProfit float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	pos, ok := p.open[id]
	if !ok {
		return fmt.Errorf("position %d not found", id)
	}
	pos.StopLoss = stopLoss
	pos.TakeProfit = takeProfit
	return nil
}

func (p *PaperBroker) ClosePosition(id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	pos, ok := p.open[id]
	if !ok {
		return fmt.Errorf("position %d not found", id)
	}
	pnl := p.unrealized(pos)
	p.balance += pnl
	delete(p.open, id)
	log.Printf("[PAPER] close #%d %s %.4f pnl %.2f (bal: %.2f)", id, pos.Symbol, pos.Volume, pnl, p.balance)
	return nil
}

func (p *PaperBroker) Positions() []types.Position {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.Position, 0, len(p.open))
	for _, pos := range p.open {
		cp := *pos
		cp.NetProfit = p.unrealized(pos)
		out = append(out, cp)
	}
	return out
}

func (p *PaperBroker) Account() types.AccountSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	equity := p.balance
	used := 0.0
	for _, pos := range p.open {
		equity += p.unrealized(pos)
		used += p.margin(pos.Volume)
	}
	return types.AccountSnapshot{
		Balance:    p.balance,
		Equity:     equity,
		FreeMargin: equity - used,
	}
}

func (p *PaperBroker) SymbolInfo(symbol string) (types.SymbolInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if symbol != p.info.Name {
		return types.SymbolInfo{}, fmt.Errorf("unknown symbol %q", symbol)
	}
	return p.info, nil
}

func (p *PaperBroker) EstimatedMargin(symbol string, side types.Side, volume float64) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if symbol != p.info.Name {
		return 0, fmt.Errorf("unknown symbol %q", symbol)
	}
	return p.margin(volume), nil
}

// margin assumes a standard 100k contract per lot.
func (p *PaperBroker) margin(volume float64) float64 {
	mid := (p.info.Bid + p.info.Ask) / 2
	return volume * 100000 * mid / p.leverage
}

// fillPrice is the quote a market order on side would fill at.
func (p *PaperBroker) fillPrice(side types.Side) float64 {
	if side == types.Sell {
		return p.info.Bid
	}
	return p.info.Ask
}

func (p *PaperBroker) unrealized(pos *types.Position) float64 {
	// A position exits through a market order on the opposite side.
	exit := p.fillPrice(pos.Side.Opposite())
	diff := exit - pos.EntryPrice
	if pos.Side == types.Sell {
		diff = -diff
	}
	if p.info.PipSize <= 0 {
		return 0
	}
	pips := diff / p.info.PipSize
	return pips * p.info.PipValue * pos.Volume
}
