package engine

import (
	"iter"
	"sort"
	"strconv"
)

// Read-only operations. Each takes the market read lock so it observes a
// consistent snapshot relative to the matching loop; none of them mutate
// book state. To keep lock ordering (market lock before engine.mu), the
// owner index is copied out of engine.mu before any market lock is taken.

// Depth returns aggregated levels for both sides of one outcome's book:
// bids descending, asks ascending. maxLevels <= 0 returns all levels.
func (e *Engine) Depth(marketID string, outcome Outcome, maxLevels int) (bids, asks []DepthLevel, err error) {
	if outcome != OutcomeYes && outcome != OutcomeNo {
		return nil, nil, &ValidationError{Field: "outcome", Message: "must be YES or NO"}
	}
	market, err := e.registry.Get(marketID)
	if err != nil {
		return nil, nil, err
	}

	market.mu.RLock()
	defer market.mu.RUnlock()

	bids, asks = market.Book(outcome).Depth(maxLevels)
	return bids, asks, nil
}

// GetOrder returns a snapshot of a resting order.
func (e *Engine) GetOrder(orderID uint64) (Order, error) {
	e.mu.RLock()
	order, exists := e.orders[orderID]
	e.mu.RUnlock()
	if !exists {
		return Order{}, &NotFoundError{Resource: "order", ID: strconv.FormatUint(orderID, 10)}
	}

	market, err := e.registry.Get(order.MarketID)
	if err != nil {
		return Order{}, err
	}

	market.mu.RLock()
	defer market.mu.RUnlock()
	return order.Snapshot(), nil
}

// OrdersByOwner returns snapshots of all currently-resting orders for the
// owner across markets, oldest first.
func (e *Engine) OrdersByOwner(owner string) []Order {
	e.mu.RLock()
	byMarket := make(map[string][]*Order)
	for _, order := range e.byOwner[owner] {
		byMarket[order.MarketID] = append(byMarket[order.MarketID], order)
	}
	e.mu.RUnlock()

	out := make([]Order, 0, len(byMarket))
	for marketID, orders := range byMarket {
		market, err := e.registry.Get(marketID)
		if err != nil {
			continue
		}
		market.mu.RLock()
		for _, order := range orders {
			// edge case: the order may have filled or been cancelled
			// between the index copy and the market lock
			if order.Status == StatusActive || order.Status == StatusPartialFill {
				out = append(out, order.Snapshot())
			}
		}
		market.mu.RUnlock()
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TradeFilter narrows RecentTrades; zero values mean "any".
type TradeFilter struct {
	MarketID string
	Outcome  Outcome
}

// RecentTrades returns up to limit trades, newest first.
func (e *Engine) RecentTrades(filter TradeFilter, limit int) []*Trade {
	if limit <= 0 {
		limit = 100
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*Trade, 0, limit)
	for i := len(e.trades) - 1; i >= 0 && len(out) < limit; i-- {
		trade := e.trades[i]
		if filter.MarketID != "" && trade.MarketID != filter.MarketID {
			continue
		}
		if filter.Outcome != "" && trade.Outcome != filter.Outcome {
			continue
		}
		out = append(out, trade)
	}
	return out
}

// TradeCount reports the total number of trades emitted so far.
func (e *Engine) TradeCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.trades)
}

// ActiveOrderCount reports the number of orders currently resting across
// all markets.
func (e *Engine) ActiveOrderCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.orders)
}

// Quote is the top of book for one outcome. HasBid/HasAsk distinguish an
// empty side from a zero price.
type Quote struct {
	Bid    int64
	HasBid bool
	Ask    int64
	HasAsk bool
}

func (e *Engine) BestBidAsk(marketID string, outcome Outcome) (Quote, error) {
	if outcome != OutcomeYes && outcome != OutcomeNo {
		return Quote{}, &ValidationError{Field: "outcome", Message: "must be YES or NO"}
	}
	market, err := e.registry.Get(marketID)
	if err != nil {
		return Quote{}, err
	}

	market.mu.RLock()
	defer market.mu.RUnlock()

	book := market.Book(outcome)
	var q Quote
	q.Bid, q.HasBid = book.BestBid()
	q.Ask, q.HasAsk = book.BestAsk()
	return q, nil
}

// ArbitrageReport is a pure read-side computation over the YES and NO
// books: the complementary best bids summing below the guaranteed payout
// of 1.0 signals a riskless opportunity on the YES/NO pair.
type ArbitrageReport struct {
	MarketID    string
	YesBid      int64
	HasYesBid   bool
	NoBid       int64
	HasNoBid    bool
	Opportunity bool
	Profit      int64 // fixed-point per share pair, 0 when no opportunity
}

func (e *Engine) CheckArbitrage(marketID string) (ArbitrageReport, error) {
	market, err := e.registry.Get(marketID)
	if err != nil {
		return ArbitrageReport{}, err
	}

	market.mu.RLock()
	defer market.mu.RUnlock()

	report := ArbitrageReport{MarketID: marketID}
	report.YesBid, report.HasYesBid = market.Yes.BestBid()
	report.NoBid, report.HasNoBid = market.No.BestBid()

	if report.HasYesBid && report.HasNoBid && report.YesBid+report.NoBid < PriceScale {
		report.Opportunity = true
		report.Profit = PriceScale - (report.YesBid + report.NoBid)
	}
	return report, nil
}

// Markets yields display summaries lazily in market id order; never used
// by the matching path.
func (e *Engine) Markets() iter.Seq[MarketSummary] {
	return e.registry.Markets()
}

// ListMarkets collects Markets into a slice.
func (e *Engine) ListMarkets() []MarketSummary {
	return e.registry.List()
}
