package testutils

import (
	"errors"
	"sync"
	"time"

	"github.com/evdnx/gotf/types"
)

// Modify captures one ModifyPosition invocation for assertions.
type Modify struct {
	ID     int64
	Stop   float64
	Target float64
}

// MockBroker implements the Broker interface in-memory. Failures are
// scriptable: FailNextOrders / FailNextModifies make the next N calls of the
// respective kind return an error before succeeding, which is how the retry
// paths are exercised.
type MockBroker struct {
	mu sync.RWMutex

	Info   types.SymbolInfo
	Acct   types.AccountSnapshot
	Margin float64 // returned by EstimatedMargin per lot
	nextID int64
	open   map[int64]*types.Position
	orders []types.Order
	mods   []Modify
	closed []int64

	FailNextOrders   int
	FailNextModifies int
	FailNextCloses   int
}

func NewMockBroker(info types.SymbolInfo, acct types.AccountSnapshot) *MockBroker {
	return &MockBroker{
		Info: info,
		Acct: acct,
		open: make(map[int64]*types.Position),
	}
}

var errScripted = errors.New("scripted broker failure")

func (m *MockBroker) ExecuteMarketOrder(o types.Order) (types.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNextOrders > 0 {
		m.FailNextOrders--
		return types.Position{}, errScripted
	}
	m.orders = append(m.orders, o)
	m.nextID++
	price := m.Info.Ask
	if o.Side == types.Sell {
		price = m.Info.Bid
	}
	p := &types.Position{
		ID:         m.nextID,
		Symbol:     o.Symbol,
		Side:       o.Side,
		Volume:     o.Volume,
		EntryPrice: price,
		Label:      o.Label,
		Comment:    o.Comment,
		OpenedAt:   time.Now(),
	}
	m.open[p.ID] = p
	return *p, nil
}

func (m *MockBroker) ModifyPosition(id int64, stop, target float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNextModifies > 0 {
		m.FailNextModifies--
		return errScripted
	}
	p, ok := m.open[id]
	if !ok {
		return errors.New("position not found")
	}
	m.mods = append(m.mods, Modify{ID: id, Stop: stop, Target: target})
	p.StopLoss = stop
	p.TakeProfit = target
	return nil
}

func (m *MockBroker) ClosePosition(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNextCloses > 0 {
		m.FailNextCloses--
		return errScripted
	}
	if _, ok := m.open[id]; !ok {
		return errors.New("position not found")
	}
	delete(m.open, id)
	m.closed = append(m.closed, id)
	return nil
}

func (m *MockBroker) Positions() []types.Position {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Position, 0, len(m.open))
	for _, p := range m.open {
		out = append(out, *p)
	}
	return out
}

func (m *MockBroker) Account() types.AccountSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Acct
}

func (m *MockBroker) SymbolInfo(symbol string) (types.SymbolInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if symbol != m.Info.Name {
		return types.SymbolInfo{}, errors.New("unknown symbol")
	}
	return m.Info, nil
}

func (m *MockBroker) EstimatedMargin(symbol string, side types.Side, volume float64) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Margin * volume, nil
}

// AddPosition seeds an open position directly, for management tests.
func (m *MockBroker) AddPosition(p types.Position) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == 0 {
		m.nextID++
		p.ID = m.nextID
	} else if p.ID > m.nextID {
		m.nextID = p.ID
	}
	cp := p
	m.open[p.ID] = &cp
	return p.ID
}

// Orders returns a copy of all executed market orders.
func (m *MockBroker) Orders() []types.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Order, len(m.orders))
	copy(out, m.orders)
	return out
}

// Modifies returns a copy of all successful modify calls in order.
func (m *MockBroker) Modifies() []Modify {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Modify, len(m.mods))
	copy(out, m.mods)
	return out
}

// Closed returns the ids of closed positions in close order.
func (m *MockBroker) Closed() []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]int64, len(m.closed))
	copy(out, m.closed)
	return out
}
