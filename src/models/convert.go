package models

import (
	"math"

	"clob-engine/src/engine"
)

// ToFixedPrice converts a boundary decimal in [0, 1] to the engine's
// fixed-point representation, rounding to 6 decimal digits. Returns false
// for NaN, infinities and out-of-domain values.
func ToFixedPrice(decimal float64) (int64, bool) {
	if math.IsNaN(decimal) || math.IsInf(decimal, 0) {
		return 0, false
	}
	if decimal < 0 || decimal > 1 {
		return 0, false
	}
	return int64(math.Round(decimal * float64(engine.PriceScale))), true
}

// ToDecimalPrice converts a fixed-point price back to the boundary decimal.
func ToDecimalPrice(price int64) float64 {
	return float64(price) / float64(engine.PriceScale)
}

func NewTradeInfo(t *engine.Trade) TradeInfo {
	return TradeInfo{
		TradeID:     t.ID,
		MarketID:    t.MarketID,
		Outcome:     string(t.Outcome),
		BuyOrderID:  t.BuyOrderID,
		SellOrderID: t.SellOrderID,
		Buyer:       t.Buyer,
		Seller:      t.Seller,
		Price:       ToDecimalPrice(t.Price),
		Quantity:    t.Quantity,
		Timestamp:   t.Timestamp,
	}
}

func NewOrderInfo(o engine.Order) OrderInfo {
	return OrderInfo{
		OrderID:           o.ID,
		MarketID:          o.MarketID,
		Outcome:           string(o.Outcome),
		Side:              string(o.Side),
		Price:             ToDecimalPrice(o.Price),
		Quantity:          o.Quantity,
		FilledQuantity:    o.FilledQuantity,
		RemainingQuantity: o.RemainingQuantity(),
		Owner:             o.Owner,
		Status:            string(o.Status),
		Timestamp:         o.Timestamp,
	}
}

func NewPriceLevelInfos(levels []engine.DepthLevel) []PriceLevelInfo {
	out := make([]PriceLevelInfo, 0, len(levels))
	for _, level := range levels {
		out = append(out, PriceLevelInfo{
			Price:      ToDecimalPrice(level.Price),
			TotalQty:   level.TotalQuantity,
			OrderCount: level.OrderCount,
		})
	}
	return out
}
