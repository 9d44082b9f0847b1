package engine

// OrderBook pairs the bid and ask sides for one outcome (YES or NO) of one
// market. It is mutated only by the engine while holding the market lock.
type OrderBook struct {
	MarketID string
	Outcome  Outcome
	Bids     *BookSide
	Asks     *BookSide
}

func NewOrderBook(marketID string, outcome Outcome) *OrderBook {
	return &OrderBook{
		MarketID: marketID,
		Outcome:  outcome,
		Bids:     NewBookSide(SideBuy),
		Asks:     NewBookSide(SideSell),
	}
}

// SideFor returns the side an order of the given direction rests on.
func (ob *OrderBook) SideFor(side Side) *BookSide {
	if side == SideBuy {
		return ob.Bids
	}
	return ob.Asks
}

// OppositeFor returns the side an aggressor of the given direction
// matches against.
func (ob *OrderBook) OppositeFor(side Side) *BookSide {
	if side == SideBuy {
		return ob.Asks
	}
	return ob.Bids
}

func (ob *OrderBook) BestBid() (int64, bool) {
	return ob.Bids.BestPrice()
}

func (ob *OrderBook) BestAsk() (int64, bool) {
	return ob.Asks.BestPrice()
}

func (ob *OrderBook) OrderCount() int {
	return ob.Bids.OrderCount() + ob.Asks.OrderCount()
}

// DepthLevel aggregates one price level for display.
type DepthLevel struct {
	Price         int64
	TotalQuantity int64
	OrderCount    int
}

// Depth snapshots up to maxLevels per side: bids descending, asks
// ascending. maxLevels <= 0 means all levels.
func (ob *OrderBook) Depth(maxLevels int) (bids []DepthLevel, asks []DepthLevel) {
	collect := func(side *BookSide) []DepthLevel {
		out := make([]DepthLevel, 0, side.Levels())
		side.Ascend(func(level *PriceLevel) bool {
			if maxLevels > 0 && len(out) >= maxLevels {
				return false
			}
			out = append(out, DepthLevel{
				Price:         level.Price,
				TotalQuantity: level.TotalQuantity(),
				OrderCount:    level.Len(),
			})
			return true
		})
		return out
	}
	return collect(ob.Bids), collect(ob.Asks)
}
