package routes

import (
	"github.com/gofiber/fiber/v2"

	"clob-engine/src/config"
	"clob-engine/src/handlers"
	"clob-engine/src/middleware"
)

func SetupRoutes(app *fiber.App, h *handlers.Handler, cfg config.Config) {
	app.Use(middleware.DefaultServiceAvailability().Middleware())
	app.Use(middleware.RequestLogger())

	api := app.Group("/api/v1")

	if !cfg.RateLimit.Disabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
		api.Use(rateLimiter.Middleware())
	}

	api.Post("/orders", h.SubmitOrder)
	api.Delete("/orders/:id", h.CancelOrder)
	api.Get("/orders/:id", h.GetOrderStatus)
	api.Get("/users/:user/orders", h.GetUserOrders)
	api.Get("/trades", h.GetTrades)

	api.Post("/markets", h.CreateMarket)
	api.Get("/markets", h.ListMarkets)
	api.Get("/markets/:id/orderbook", h.GetOrderBook)
	api.Get("/markets/:id/arbitrage", h.GetArbitrage)

	app.Use("/ws/trades", h.TradeStreamUpgrade)
	app.Get("/ws/trades", h.TradeStream())

	app.Get("/health", h.HealthCheck)
	app.Get("/metrics", h.Metrics)
}
