package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"clob-engine/src/config"
	"clob-engine/src/engine"
	"clob-engine/src/feed"
	"clob-engine/src/handlers"
	"clob-engine/src/logger"
	"clob-engine/src/routes"
)

func main() {
	logger.Init()
	defer logger.Close()

	cfg := config.Load()

	log.Info().Msg("Initializing binary-outcome CLOB engine")

	eng := engine.NewEngine()
	eng.SetAutoCreateMarkets(cfg.OrderBook.AutoCreateMarkets)

	broadcaster := feed.NewBroadcaster(256)
	eng.SetTradePublisher(broadcaster)
	defer broadcaster.Close()

	feedCtx, stopFeed := context.WithCancel(context.Background())
	defer stopFeed()

	if cfg.Kafka.Enabled {
		publisher := feed.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer publisher.Close()
		go publisher.Run(feedCtx, broadcaster)
		log.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("Kafka trade publishing enabled")
	}

	h := handlers.New(eng, broadcaster, cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Error().
				Str("path", c.Path()).
				Str("method", c.Method()).
				Int("status", code).
				Str("error", err.Error()).
				Msg("Request error")

			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	routes.SetupRoutes(app, h, cfg)

	serverError := make(chan error, 1)

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			// edge case: ignore shutdown errors, only report real errors
			if err.Error() != "server is shutting down" {
				serverError <- err
			}
		}
	}()

	select {
	case err := <-serverError:
		log.Fatal().
			Err(err).
			Str("port", cfg.Server.Port).
			Str("hint", "Port may be already in use. Try: PORT=3000 go run main.go").
			Msg("Server failed to start")
	default:
		log.Info().
			Str("port", cfg.Server.Port).
			Msg("CLOB engine started")

		log.Info().
			Strs("endpoints", []string{
				"POST   /api/v1/orders",
				"DELETE /api/v1/orders/:id",
				"GET    /api/v1/orders/:id",
				"GET    /api/v1/users/:user/orders",
				"GET    /api/v1/trades",
				"POST   /api/v1/markets",
				"GET    /api/v1/markets",
				"GET    /api/v1/markets/:id/orderbook",
				"GET    /api/v1/markets/:id/arbitrage",
				"GET    /ws/trades",
				"GET    /health",
				"GET    /metrics",
			}).
			Msg("API endpoints registered")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	log.Info().Msg("Received shutdown signal, shutting down...")

	stopFeed()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		// edge case: timeout during shutdown is acceptable
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().
				Dur("timeout", cfg.Server.ShutdownTimeout).
				Msg("Timeout exceeded, shutting down...")
		} else {
			log.Error().
				Err(err).
				Msg("Error during shutdown")
		}
	} else {
		log.Info().Msg("Shutdown complete")
	}
}
