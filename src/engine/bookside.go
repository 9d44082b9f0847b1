package engine

import "github.com/google/btree"

// BookSide is the price index for one side of one outcome's book. The tree
// orders levels by priority: bids descending, asks ascending, so Min() is
// always the best level for either side.
type BookSide struct {
	Side   Side
	levels *btree.BTreeG[*PriceLevel]
}

func NewBookSide(side Side) *BookSide {
	less := func(a, b *PriceLevel) bool { return a.Price < b.Price }
	if side == SideBuy {
		less = func(a, b *PriceLevel) bool { return a.Price > b.Price }
	}
	return &BookSide{
		Side:   side,
		levels: btree.NewG(32, less),
	}
}

// Insert routes the order to the level for its price, creating the level
// if absent.
func (bs *BookSide) Insert(order *Order) {
	level, ok := bs.levels.Get(&PriceLevel{Price: order.Price})
	if !ok {
		level = NewPriceLevel(order.Price)
		bs.levels.ReplaceOrInsert(level)
	}
	level.Append(order)
}

// BestLevel returns the highest-priority level, or nil if the side is empty.
func (bs *BookSide) BestLevel() *PriceLevel {
	level, ok := bs.levels.Min()
	if !ok {
		return nil
	}
	return level
}

// BestPrice reports the extremal price key. An empty side has no best
// price; the second return is false, never a sentinel.
func (bs *BookSide) BestPrice() (int64, bool) {
	level, ok := bs.levels.Min()
	if !ok {
		return 0, false
	}
	return level.Price, true
}

func (bs *BookSide) Level(price int64) *PriceLevel {
	level, ok := bs.levels.Get(&PriceLevel{Price: price})
	if !ok {
		return nil
	}
	return level
}

// RemoveOrder delegates to the level at the given price and prunes the
// level if it becomes empty.
func (bs *BookSide) RemoveOrder(orderID uint64, price int64) bool {
	level, ok := bs.levels.Get(&PriceLevel{Price: price})
	if !ok {
		return false
	}
	removed := level.Remove(orderID)
	if removed && level.Len() == 0 {
		bs.levels.Delete(level)
	}
	return removed
}

func (bs *BookSide) DeleteLevel(price int64) {
	bs.levels.Delete(&PriceLevel{Price: price})
}

// Ascend walks levels in priority order (best first).
func (bs *BookSide) Ascend(fn func(*PriceLevel) bool) {
	bs.levels.Ascend(func(level *PriceLevel) bool {
		return fn(level)
	})
}

func (bs *BookSide) Levels() int {
	return bs.levels.Len()
}

func (bs *BookSide) OrderCount() int {
	count := 0
	bs.levels.Ascend(func(level *PriceLevel) bool {
		count += level.Len()
		return true
	})
	return count
}

func (bs *BookSide) TotalQuantity() int64 {
	var total int64
	bs.levels.Ascend(func(level *PriceLevel) bool {
		total += level.TotalQuantity()
		return true
	})
	return total
}
