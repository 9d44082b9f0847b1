package models

// API request/response shapes. Prices cross the boundary as decimals in
// [0, 1]; the fixed-point conversion in convert.go happens here at the
// edge so the engine never sees a float.

type SubmitOrderRequest struct {
	MarketID string  `json:"market_id"`
	Outcome  string  `json:"outcome"` // YES or NO
	Side     string  `json:"side"`    // BUY or SELL
	Price    float64 `json:"price"`   // decimal in [0, 1]
	Quantity int64   `json:"quantity"`
	Owner    string  `json:"owner"`
}

type SubmitOrderResponse struct {
	OrderID           uint64      `json:"order_id"`
	Status            string      `json:"status"`
	Message           string      `json:"message,omitempty"`
	FilledQuantity    int64       `json:"filled_quantity"`
	RemainingQuantity int64       `json:"remaining_quantity"`
	Trades            []TradeInfo `json:"trades"`
}

type TradeInfo struct {
	TradeID     uint64  `json:"trade_id"`
	MarketID    string  `json:"market_id"`
	Outcome     string  `json:"outcome"`
	BuyOrderID  uint64  `json:"buy_order_id"`
	SellOrderID uint64  `json:"sell_order_id"`
	Buyer       string  `json:"buyer"`
	Seller      string  `json:"seller"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
	Timestamp   int64   `json:"timestamp"` // unix millis
}

type CancelOrderResponse struct {
	OrderID uint64 `json:"order_id"`
	Status  string `json:"status"`
}

type OrderInfo struct {
	OrderID           uint64  `json:"order_id"`
	MarketID          string  `json:"market_id"`
	Outcome           string  `json:"outcome"`
	Side              string  `json:"side"`
	Price             float64 `json:"price"`
	Quantity          int64   `json:"quantity"`
	FilledQuantity    int64   `json:"filled_quantity"`
	RemainingQuantity int64   `json:"remaining_quantity"`
	Owner             string  `json:"owner"`
	Status            string  `json:"status"`
	Timestamp         int64   `json:"timestamp"`
}

type PriceLevelInfo struct {
	Price      float64 `json:"price"`
	TotalQty   int64   `json:"total_qty"`
	OrderCount int     `json:"order_count"`
}

type OrderBookResponse struct {
	MarketID  string           `json:"market_id"`
	Outcome   string           `json:"outcome"`
	Timestamp int64            `json:"timestamp"`
	Bids      []PriceLevelInfo `json:"bids"` // sorted descending (highest first)
	Asks      []PriceLevelInfo `json:"asks"` // sorted ascending (lowest first)
}

type CreateMarketRequest struct {
	MarketID string `json:"market_id"`
}

type CreateMarketResponse struct {
	MarketID string `json:"market_id"`
	Created  bool   `json:"created"`
}

type MarketInfo struct {
	MarketID  string `json:"market_id"`
	CreatedAt int64  `json:"created_at"`
	YesOrders int    `json:"yes_orders"`
	NoOrders  int    `json:"no_orders"`
}

type ArbitrageResponse struct {
	MarketID    string   `json:"market_id"`
	YesBid      *float64 `json:"yes_bid"` // null when the side is empty
	NoBid       *float64 `json:"no_bid"`
	Opportunity bool     `json:"opportunity"`
	Profit      float64  `json:"profit"` // per YES/NO share pair
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Markets       int    `json:"markets"`
	ActiveOrders  int    `json:"active_orders"`
	TradesTotal   int    `json:"trades_total"`
}

type MetricsResponse struct {
	OrdersReceived         int64   `json:"orders_received"`
	OrdersMatched          int64   `json:"orders_matched"`
	OrdersCancelled        int64   `json:"orders_cancelled"`
	OrdersInBook           int64   `json:"orders_in_book"`
	TradesExecuted         int64   `json:"trades_executed"`
	LatencyP50Ms           float64 `json:"latency_p50_ms"`
	LatencyP99Ms           float64 `json:"latency_p99_ms"`
	ThroughputOrdersPerSec float64 `json:"throughput_orders_per_sec"`
}
