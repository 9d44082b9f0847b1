package engine

// PriceLevel holds the live orders resting at one exact price in arrival
// order. Every order in the slice shares the level's price and side.
type PriceLevel struct {
	Price  int64
	Orders []*Order // fifo ordering for time priority
}

func NewPriceLevel(price int64) *PriceLevel {
	return &PriceLevel{
		Price:  price,
		Orders: make([]*Order, 0, 4),
	}
}

func (pl *PriceLevel) Append(order *Order) {
	pl.Orders = append(pl.Orders, order)
}

// PeekFront returns the oldest live order, or nil if the level is empty.
func (pl *PriceLevel) PeekFront() *Order {
	if len(pl.Orders) == 0 {
		return nil
	}
	return pl.Orders[0]
}

// PopFront removes and returns the oldest order; used when it fully fills.
func (pl *PriceLevel) PopFront() *Order {
	if len(pl.Orders) == 0 {
		return nil
	}
	front := pl.Orders[0]
	pl.Orders = pl.Orders[1:]
	return front
}

// Remove splices out the order with the given id. Cancellation path; O(k)
// over the orders at this price.
func (pl *PriceLevel) Remove(orderID uint64) bool {
	for i, o := range pl.Orders {
		if o.ID == orderID {
			pl.Orders = append(pl.Orders[:i], pl.Orders[i+1:]...)
			return true
		}
	}
	return false
}

func (pl *PriceLevel) Len() int {
	return len(pl.Orders)
}

func (pl *PriceLevel) TotalQuantity() int64 {
	var total int64
	for _, o := range pl.Orders {
		total += o.RemainingQuantity()
	}
	return total
}
