package engine

import (
	"sync"
	"time"
)

// Market owns one OrderBook per outcome. All submit/cancel activity for a
// market is serialized on mu; operations on different markets run in
// parallel since books are never shared across markets.
type Market struct {
	ID        string
	CreatedAt int64 // unix millis
	Yes       *OrderBook
	No        *OrderBook

	mu sync.RWMutex
}

func NewMarket(id string) *Market {
	return &Market{
		ID:        id,
		CreatedAt: time.Now().UnixMilli(),
		Yes:       NewOrderBook(id, OutcomeYes),
		No:        NewOrderBook(id, OutcomeNo),
	}
}

func (m *Market) Book(outcome Outcome) *OrderBook {
	if outcome == OutcomeYes {
		return m.Yes
	}
	return m.No
}

// MarketSummary is the display-only shape produced by ListMarkets; it is
// never consulted by the matching path.
type MarketSummary struct {
	ID        string
	CreatedAt int64
	YesOrders int
	NoOrders  int
}

func (m *Market) Summary() MarketSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MarketSummary{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		YesOrders: m.Yes.OrderCount(),
		NoOrders:  m.No.OrderCount(),
	}
}
