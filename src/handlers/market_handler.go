package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"clob-engine/src/engine"
	"clob-engine/src/models"
)

func (h *Handler) CreateMarket(c *fiber.Ctx) error {
	var req models.CreateMarketRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid request: malformed JSON",
		})
	}

	created, err := h.Engine.CreateMarket(req.MarketID)
	if err != nil {
		return respondError(c, err)
	}

	if created {
		log.Info().Str("market_id", req.MarketID).Msg("Market created")
	}

	return c.Status(fiber.StatusOK).JSON(models.CreateMarketResponse{
		MarketID: req.MarketID,
		Created:  created,
	})
}

func (h *Handler) ListMarkets(c *fiber.Ctx) error {
	summaries := h.Engine.ListMarkets()

	out := make([]models.MarketInfo, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, models.MarketInfo{
			MarketID:  s.ID,
			CreatedAt: s.CreatedAt,
			YesOrders: s.YesOrders,
			NoOrders:  s.NoOrders,
		})
	}

	return c.Status(fiber.StatusOK).JSON(out)
}

func (h *Handler) GetOrderBook(c *fiber.Ctx) error {
	marketID := c.Params("id")
	outcome := engine.Outcome(c.Query("outcome", string(engine.OutcomeYes)))

	depth := h.Cfg.OrderBook.DefaultDepth
	if v := c.Query("depth"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			depth = parsed
		}
	}
	// edge case: enforce maximum depth limit
	if depth > h.Cfg.OrderBook.MaxDepth {
		depth = h.Cfg.OrderBook.MaxDepth
	}

	bids, asks, err := h.Engine.Depth(marketID, outcome, depth)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(models.OrderBookResponse{
		MarketID:  marketID,
		Outcome:   string(outcome),
		Timestamp: time.Now().UnixMilli(),
		Bids:      models.NewPriceLevelInfos(bids),
		Asks:      models.NewPriceLevelInfos(asks),
	})
}

func (h *Handler) GetTrades(c *fiber.Ctx) error {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	trades := h.Engine.RecentTrades(engine.TradeFilter{
		MarketID: c.Query("market_id"),
		Outcome:  engine.Outcome(c.Query("outcome")),
	}, limit)

	out := make([]models.TradeInfo, 0, len(trades))
	for _, trade := range trades {
		out = append(out, models.NewTradeInfo(trade))
	}

	return c.Status(fiber.StatusOK).JSON(out)
}

func (h *Handler) GetArbitrage(c *fiber.Ctx) error {
	report, err := h.Engine.CheckArbitrage(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	response := models.ArbitrageResponse{
		MarketID:    report.MarketID,
		Opportunity: report.Opportunity,
		Profit:      models.ToDecimalPrice(report.Profit),
	}
	if report.HasYesBid {
		yesBid := models.ToDecimalPrice(report.YesBid)
		response.YesBid = &yesBid
	}
	if report.HasNoBid {
		noBid := models.ToDecimalPrice(report.NoBid)
		response.NoBid = &noBid
	}

	return c.Status(fiber.StatusOK).JSON(response)
}
