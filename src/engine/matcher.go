package engine

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// TradePublisher receives every emitted trade while the owning market's
// lock is still held, so a market's trades arrive in commit order.
// Implementations must never block the caller.
type TradePublisher interface {
	PublishTrades(trades []*Trade)
}

// Engine is the sole mutator of market state. It owns the registry, the
// authoritative order store, the owner index and the trade log; no caller
// touches an OrderBook directly.
//
// Locking: per-market mutex serializes submit/cancel for that market;
// engine.mu guards the order store, owner index and trade log. Lock order
// is always market lock first, then engine.mu.
type Engine struct {
	registry          *Registry
	autoCreateMarkets bool
	publisher         TradePublisher

	orderSeq atomic.Uint64
	tradeSeq atomic.Uint64

	mu      sync.RWMutex
	orders  map[uint64]*Order            // resting orders only
	byOwner map[string]map[uint64]*Order // owner -> resting orders
	trades  []*Trade                     // commit order, oldest first
}

func NewEngine() *Engine {
	return &Engine{
		registry:          NewRegistry(),
		autoCreateMarkets: true,
		orders:            make(map[uint64]*Order),
		byOwner:           make(map[string]map[uint64]*Order),
	}
}

// SetAutoCreateMarkets controls whether SubmitOrder creates unknown
// markets on demand or fails with a market NotFoundError.
func (e *Engine) SetAutoCreateMarkets(enabled bool) {
	e.autoCreateMarkets = enabled
}

func (e *Engine) SetTradePublisher(p TradePublisher) {
	e.publisher = p
}

type SubmitRequest struct {
	MarketID string
	Outcome  Outcome
	Side     Side
	Price    int64 // fixed-point, [0, PriceScale]
	Quantity int64
	Owner    string
}

type SubmitResult struct {
	OrderID           uint64
	Status            OrderStatus
	FilledQuantity    int64
	RemainingQuantity int64
	Trades            []*Trade // execution order
}

// SubmitOrder validates, matches the incoming order against the opposite
// side under price-time priority, rests any remainder, and returns the
// trades generated in execution order.
func (e *Engine) SubmitOrder(req SubmitRequest) (*SubmitResult, error) {
	if err := validateSubmitRequest(&req); err != nil {
		return nil, err
	}

	var market *Market
	if e.autoCreateMarkets {
		market, _ = e.registry.GetOrCreate(req.MarketID)
	} else {
		var err error
		market, err = e.registry.Get(req.MarketID)
		if err != nil {
			return nil, err
		}
	}

	order := &Order{
		ID:        e.orderSeq.Add(1),
		MarketID:  req.MarketID,
		Outcome:   req.Outcome,
		Side:      req.Side,
		Price:     req.Price,
		Quantity:  req.Quantity,
		Owner:     req.Owner,
		Status:    StatusActive,
		Timestamp: time.Now().UnixMilli(),
	}

	market.mu.Lock()
	book := market.Book(req.Outcome)
	trades, matchErr := e.matchLimit(book, order)
	if matchErr == nil && order.RemainingQuantity() > 0 {
		book.SideFor(order.Side).Insert(order)
		e.track(order)
	}

	// Trades already emitted have actually happened: publish them even
	// when the loop aborted on an invariant violation. Publishing before
	// the lock drops keeps the feed in per-market commit order.
	if e.publisher != nil && len(trades) > 0 {
		e.publisher.PublishTrades(trades)
	}

	// A rested remainder is reachable by concurrent matchers the moment
	// the lock drops, so the result fields must be captured first.
	status := order.Status
	filled := order.FilledQuantity
	remaining := order.RemainingQuantity()
	market.mu.Unlock()

	if matchErr != nil {
		return nil, matchErr
	}

	return &SubmitResult{
		OrderID:           order.ID,
		Status:            status,
		FilledQuantity:    filled,
		RemainingQuantity: remaining,
		Trades:            trades,
	}, nil
}

// matchLimit runs the continuous double auction loop. Caller holds the
// market lock. The trade price is always the resting order's price: price
// improvement accrues to the aggressor, never to the maker.
func (e *Engine) matchLimit(book *OrderBook, taker *Order) ([]*Trade, error) {
	opposite := book.OppositeFor(taker.Side)
	var trades []*Trade

	for taker.RemainingQuantity() > 0 {
		level := opposite.BestLevel()
		if level == nil || !crosses(taker, level.Price) {
			break
		}

		resting := level.PeekFront()
		if resting == nil {
			return trades, &InvariantViolationError{
				MarketID: book.MarketID,
				Outcome:  book.Outcome,
				Detail:   fmt.Sprintf("empty price level %d still indexed on %s side", level.Price, opposite.Side),
			}
		}
		if resting.RemainingQuantity() <= 0 {
			return trades, &InvariantViolationError{
				MarketID: book.MarketID,
				Outcome:  book.Outcome,
				Detail:   fmt.Sprintf("order %d resting at %d with no remaining quantity", resting.ID, level.Price),
			}
		}

		quantity := taker.RemainingQuantity()
		if restingRemaining := resting.RemainingQuantity(); quantity > restingRemaining {
			quantity = restingRemaining
		}

		trade := e.emitTrade(book, taker, resting, level.Price, quantity)
		trades = append(trades, trade)

		taker.fill(quantity)
		resting.fill(quantity)

		if resting.IsFilled() {
			level.PopFront()
			e.untrack(resting)
		}
		if level.Len() == 0 {
			opposite.DeleteLevel(level.Price)
		}
	}

	return trades, nil
}

// crosses reports whether the taker's limit allows a trade at the resting
// price. The boundary is inclusive: equal prices always match.
func crosses(taker *Order, restingPrice int64) bool {
	if taker.Side == SideBuy {
		return restingPrice <= taker.Price
	}
	return restingPrice >= taker.Price
}

func (e *Engine) emitTrade(book *OrderBook, taker, resting *Order, price, quantity int64) *Trade {
	trade := &Trade{
		ID:        e.tradeSeq.Add(1),
		MarketID:  book.MarketID,
		Outcome:   book.Outcome,
		Price:     price,
		Quantity:  quantity,
		Timestamp: time.Now().UnixMilli(),
	}
	if taker.Side == SideBuy {
		trade.BuyOrderID = taker.ID
		trade.Buyer = taker.Owner
		trade.SellOrderID = resting.ID
		trade.Seller = resting.Owner
	} else {
		trade.BuyOrderID = resting.ID
		trade.Buyer = resting.Owner
		trade.SellOrderID = taker.ID
		trade.Seller = taker.Owner
	}

	e.mu.Lock()
	e.trades = append(e.trades, trade)
	e.mu.Unlock()

	return trade
}

// CancelOrder removes a resting order from its price level and marks it
// cancelled. Already-filled, already-cancelled and unknown ids report
// NotFound and perform no mutation.
func (e *Engine) CancelOrder(orderID uint64) error {
	e.mu.RLock()
	order, exists := e.orders[orderID]
	e.mu.RUnlock()
	if !exists {
		return &NotFoundError{Resource: "order", ID: strconv.FormatUint(orderID, 10)}
	}

	market, err := e.registry.Get(order.MarketID)
	if err != nil {
		return err
	}

	market.mu.Lock()
	defer market.mu.Unlock()

	// edge case: the order may have filled between lookup and lock
	e.mu.RLock()
	_, stillResting := e.orders[orderID]
	e.mu.RUnlock()
	if !stillResting {
		return &NotFoundError{Resource: "order", ID: strconv.FormatUint(orderID, 10)}
	}

	book := market.Book(order.Outcome)
	if !book.SideFor(order.Side).RemoveOrder(order.ID, order.Price) {
		return &InvariantViolationError{
			MarketID: order.MarketID,
			Outcome:  order.Outcome,
			Detail:   fmt.Sprintf("tracked order %d missing from %s level %d", order.ID, order.Side, order.Price),
		}
	}

	order.Status = StatusCancelled
	e.untrack(order)
	return nil
}

// CreateMarket is idempotent; it reports whether a new market was created.
func (e *Engine) CreateMarket(marketID string) (bool, error) {
	if marketID == "" {
		return false, &ValidationError{Field: "marketId", Message: "must not be empty"}
	}
	_, created := e.registry.GetOrCreate(marketID)
	return created, nil
}

func (e *Engine) track(order *Order) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.orders[order.ID] = order
	owned, exists := e.byOwner[order.Owner]
	if !exists {
		owned = make(map[uint64]*Order)
		e.byOwner[order.Owner] = owned
	}
	owned[order.ID] = order
}

func (e *Engine) untrack(order *Order) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.orders, order.ID)
	if owned, exists := e.byOwner[order.Owner]; exists {
		delete(owned, order.ID)
		if len(owned) == 0 {
			delete(e.byOwner, order.Owner)
		}
	}
}

func validateSubmitRequest(req *SubmitRequest) error {
	if req.MarketID == "" {
		return &ValidationError{Field: "marketId", Message: "must not be empty"}
	}
	if req.Owner == "" {
		return &ValidationError{Field: "owner", Message: "must not be empty"}
	}
	if req.Outcome != OutcomeYes && req.Outcome != OutcomeNo {
		return &ValidationError{Field: "outcome", Message: "must be YES or NO"}
	}
	if req.Side != SideBuy && req.Side != SideSell {
		return &ValidationError{Field: "side", Message: "must be BUY or SELL"}
	}
	if req.Price < MinPrice || req.Price > MaxPrice {
		return &ValidationError{Field: "price", Message: "must be within [0.0, 1.0]"}
	}
	if req.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "must be positive"}
	}
	return nil
}
