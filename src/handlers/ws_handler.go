package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"clob-engine/src/models"
)

// TradeStreamUpgrade gates the websocket route behind a proper upgrade
// request.
func (h *Handler) TradeStreamUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// TradeStream pushes every emitted trade to the client as JSON, optionally
// filtered by market_id. A client that stops draining its broadcaster
// buffer misses trades rather than stalling the matching path.
func (h *Handler) TradeStream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		marketID := conn.Query("market_id")

		subID, trades := h.Feed.Subscribe()
		defer h.Feed.Unsubscribe(subID)

		log.Info().
			Uint64("subscriber_id", subID).
			Str("market_id", marketID).
			Msg("Trade stream client connected")

		// Reads are discarded; the read loop only detects disconnects.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		defer log.Info().
			Uint64("subscriber_id", subID).
			Msg("Trade stream client disconnected")

		for {
			select {
			case <-done:
				return
			case trade, ok := <-trades:
				if !ok {
					return
				}
				if marketID != "" && trade.MarketID != marketID {
					continue
				}
				if err := conn.WriteJSON(models.NewTradeInfo(trade)); err != nil {
					return
				}
			}
		}
	})
}
