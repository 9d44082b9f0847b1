package handlers

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"clob-engine/src/engine"
	"clob-engine/src/models"
)

func (h *Handler) SubmitOrder(c *fiber.Ctx) error {
	var req models.SubmitOrderRequest

	if err := c.BodyParser(&req); err != nil {
		log.Warn().
			Err(err).
			Str("ip", c.IP()).
			Str("path", c.Path()).
			Msg("Invalid request: malformed JSON")
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid request: malformed JSON",
		})
	}

	price, ok := models.ToFixedPrice(req.Price)
	if !ok {
		log.Warn().
			Float64("price", req.Price).
			Str("market_id", req.MarketID).
			Str("ip", c.IP()).
			Msg("Invalid order request: price out of domain")
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid price: must be a decimal within [0.0, 1.0]",
		})
	}

	atomic.AddInt64(&h.ordersReceived, 1)
	start := time.Now()

	result, err := h.Engine.SubmitOrder(engine.SubmitRequest{
		MarketID: req.MarketID,
		Outcome:  engine.Outcome(req.Outcome),
		Side:     engine.Side(req.Side),
		Price:    price,
		Quantity: req.Quantity,
		Owner:    req.Owner,
	})

	h.recordLatency(time.Since(start))

	if err != nil {
		log.Warn().
			Err(err).
			Str("market_id", req.MarketID).
			Str("outcome", req.Outcome).
			Str("side", req.Side).
			Str("owner", req.Owner).
			Str("ip", c.IP()).
			Msg("Order rejected")
		return respondError(c, err)
	}

	trades := make([]models.TradeInfo, 0, len(result.Trades))
	for _, trade := range result.Trades {
		trades = append(trades, models.NewTradeInfo(trade))
	}

	if len(trades) > 0 {
		atomic.AddInt64(&h.ordersMatched, 1)
		atomic.AddInt64(&h.tradesExecuted, int64(len(trades)))
	}

	response := models.SubmitOrderResponse{
		OrderID:           result.OrderID,
		Status:            string(result.Status),
		FilledQuantity:    result.FilledQuantity,
		RemainingQuantity: result.RemainingQuantity,
		Trades:            trades,
	}

	log.Info().
		Uint64("order_id", result.OrderID).
		Str("market_id", req.MarketID).
		Str("outcome", req.Outcome).
		Str("side", req.Side).
		Str("status", string(result.Status)).
		Int64("filled_quantity", result.FilledQuantity).
		Int64("remaining_quantity", result.RemainingQuantity).
		Int("trades_count", len(trades)).
		Msg("Order processed")

	switch result.Status {
	case engine.StatusActive:
		response.Message = "Order added to book"
		return c.Status(fiber.StatusCreated).JSON(response)
	case engine.StatusPartialFill:
		return c.Status(fiber.StatusAccepted).JSON(response)
	default:
		return c.Status(fiber.StatusOK).JSON(response)
	}
}

func (h *Handler) CancelOrder(c *fiber.Ctx) error {
	orderID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid order id: must be a positive integer",
		})
	}

	if err := h.Engine.CancelOrder(orderID); err != nil {
		log.Warn().
			Uint64("order_id", orderID).
			Err(err).
			Str("ip", c.IP()).
			Msg("Cancel order failed")
		return respondError(c, err)
	}

	atomic.AddInt64(&h.ordersCancelled, 1)

	log.Info().
		Uint64("order_id", orderID).
		Str("ip", c.IP()).
		Msg("Order cancelled")

	return c.Status(fiber.StatusOK).JSON(models.CancelOrderResponse{
		OrderID: orderID,
		Status:  string(engine.StatusCancelled),
	})
}

func (h *Handler) GetOrderStatus(c *fiber.Ctx) error {
	orderID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid order id: must be a positive integer",
		})
	}

	order, err := h.Engine.GetOrder(orderID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(models.NewOrderInfo(order))
}

func (h *Handler) GetUserOrders(c *fiber.Ctx) error {
	owner := c.Params("user")

	orders := h.Engine.OrdersByOwner(owner)
	out := make([]models.OrderInfo, 0, len(orders))
	for _, order := range orders {
		out = append(out, models.NewOrderInfo(order))
	}

	return c.Status(fiber.StatusOK).JSON(out)
}
