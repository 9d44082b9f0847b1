package handlers

import (
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"

	"clob-engine/src/models"
)

func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(models.HealthResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.StartTime).Seconds()),
		Markets:       len(h.Engine.ListMarkets()),
		ActiveOrders:  h.Engine.ActiveOrderCount(),
		TradesTotal:   h.Engine.TradeCount(),
	})
}

func (h *Handler) Metrics(c *fiber.Ctx) error {
	p50, p99 := h.latencyPercentiles()

	var throughput float64
	if uptime := time.Since(h.StartTime).Seconds(); uptime > 0 {
		throughput = float64(atomic.LoadInt64(&h.ordersReceived)) / uptime
	}

	return c.Status(fiber.StatusOK).JSON(models.MetricsResponse{
		OrdersReceived:         atomic.LoadInt64(&h.ordersReceived),
		OrdersMatched:          atomic.LoadInt64(&h.ordersMatched),
		OrdersCancelled:        atomic.LoadInt64(&h.ordersCancelled),
		OrdersInBook:           int64(h.Engine.ActiveOrderCount()),
		TradesExecuted:         atomic.LoadInt64(&h.tradesExecuted),
		LatencyP50Ms:           p50,
		LatencyP99Ms:           p99,
		ThroughputOrdersPerSec: throughput,
	})
}
