package handlers

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"clob-engine/src/config"
	"clob-engine/src/engine"
	"clob-engine/src/feed"
	"clob-engine/src/models"
)

type Handler struct {
	Engine    *engine.Engine
	Feed      *feed.Broadcaster
	Cfg       config.Config
	StartTime time.Time

	ordersReceived  int64
	ordersMatched   int64
	ordersCancelled int64
	tradesExecuted  int64

	latencies    []time.Duration
	latenciesMu  sync.RWMutex
	maxLatencies int
}

func New(eng *engine.Engine, broadcaster *feed.Broadcaster, cfg config.Config) *Handler {
	return &Handler{
		Engine:       eng,
		Feed:         broadcaster,
		Cfg:          cfg,
		StartTime:    time.Now(),
		latencies:    make([]time.Duration, 0, 10000),
		maxLatencies: 10000,
	}
}

// respondError maps the engine's error taxonomy onto HTTP statuses:
// validation 400, not-found 404, invariant violations 500.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	var validationErr *engine.ValidationError
	var notFoundErr *engine.NotFoundError
	switch {
	case errors.As(err, &validationErr):
		status = fiber.StatusBadRequest
	case errors.As(err, &notFoundErr):
		status = fiber.StatusNotFound
	default:
		log.Error().
			Err(err).
			Str("path", c.Path()).
			Str("method", c.Method()).
			Msg("Engine invariant violation")
	}

	return c.Status(status).JSON(models.ErrorResponse{Error: err.Error()})
}

func (h *Handler) recordLatency(latency time.Duration) {
	h.latenciesMu.Lock()
	defer h.latenciesMu.Unlock()

	h.latencies = append(h.latencies, latency)
	if len(h.latencies) > h.maxLatencies {
		h.latencies = h.latencies[len(h.latencies)-h.maxLatencies:]
	}
}

func (h *Handler) latencyPercentiles() (p50, p99 float64) {
	h.latenciesMu.RLock()
	defer h.latenciesMu.RUnlock()

	if len(h.latencies) == 0 {
		return 0, 0
	}

	sorted := make([]time.Duration, len(h.latencies))
	copy(sorted, h.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	at := func(q float64) float64 {
		idx := int(float64(len(sorted)) * q)
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		return float64(sorted[idx].Nanoseconds()) / 1e6
	}
	return at(0.50), at(0.99)
}
