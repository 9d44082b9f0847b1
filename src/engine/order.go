package engine

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type Outcome string

const (
	OutcomeYes Outcome = "YES"
	OutcomeNo  Outcome = "NO"
)

type OrderStatus string

const (
	StatusActive      OrderStatus = "ACTIVE"
	StatusPartialFill OrderStatus = "PARTIAL_FILL"
	StatusFilled      OrderStatus = "FILLED"
	StatusCancelled   OrderStatus = "CANCELLED"
)

// Prices are fixed-point integers with 6 decimal digits: the binary-market
// price domain [0.0, 1.0] maps to [0, PriceScale]. The engine never compares
// floating-point prices; conversion happens at the API edge.
const (
	PriceScale int64 = 1_000_000
	MinPrice   int64 = 0
	MaxPrice   int64 = PriceScale
)

// Order is the canonical mutable copy held by the book. Only FilledQuantity
// and Status change after creation, and only under the owning market's lock.
type Order struct {
	ID             uint64
	MarketID       string
	Outcome        Outcome
	Side           Side
	Price          int64 // fixed-point, [0, PriceScale]
	Quantity       int64 // whole shares
	FilledQuantity int64
	Owner          string
	Status         OrderStatus
	Timestamp      int64 // unix millis, audit only; time priority is by ID
}

func (o *Order) RemainingQuantity() int64 {
	return o.Quantity - o.FilledQuantity
}

func (o *Order) IsFilled() bool {
	return o.FilledQuantity >= o.Quantity
}

func (o *Order) fill(quantity int64) {
	o.FilledQuantity += quantity
	if o.FilledQuantity >= o.Quantity {
		o.Status = StatusFilled
	} else {
		o.Status = StatusPartialFill
	}
}

// Snapshot returns a copy safe to hand outside the market lock.
func (o *Order) Snapshot() Order {
	return *o
}

// Trade is produced exactly once per match event and never mutated.
// Price is always the resting order's price.
type Trade struct {
	ID          uint64
	MarketID    string
	Outcome     Outcome
	BuyOrderID  uint64
	SellOrderID uint64
	Buyer       string
	Seller      string
	Price       int64
	Quantity    int64
	Timestamp   int64
}
