package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"

	"clob-engine/src/config"
	"clob-engine/src/engine"
	"clob-engine/src/feed"
	"clob-engine/src/handlers"
	"clob-engine/src/logger"
	"clob-engine/src/models"
	"clob-engine/src/routes"
)

// setupTestServer creates a test Fiber app with routes. Rate limiting is
// disabled and logging minimized so tests exercise the engine, not the
// middleware.
func setupTestServer() *fiber.App {
	os.Setenv("LOG_LEVEL", "warn")
	os.Setenv("REQUEST_LOGGING_DISABLED", "1")
	defer func() {
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("REQUEST_LOGGING_DISABLED")
	}()

	logger.Init()

	cfg := config.Default()
	cfg.RateLimit.Disabled = true

	eng := engine.NewEngine()
	eng.SetAutoCreateMarkets(cfg.OrderBook.AutoCreateMarkets)

	broadcaster := feed.NewBroadcaster(64)
	eng.SetTradePublisher(broadcaster)

	h := handlers.New(eng, broadcaster, cfg)

	app := fiber.New()
	routes.SetupRoutes(app, h, cfg)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestSubmitOrderAPI(t *testing.T) {
	app := setupTestServer()

	resp := doJSON(t, app, http.MethodPost, "/api/v1/orders", models.SubmitOrderRequest{
		MarketID: "weather-rain-tomorrow",
		Outcome:  "YES",
		Side:     "BUY",
		Price:    0.60,
		Quantity: 10,
		Owner:    "alice",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201 for a resting order, got: %d", resp.StatusCode)
	}

	var first models.SubmitOrderResponse
	decode(t, resp, &first)
	if first.Status != "ACTIVE" || len(first.Trades) != 0 {
		t.Errorf("Expected resting ACTIVE order, got: %+v", first)
	}

	resp = doJSON(t, app, http.MethodPost, "/api/v1/orders", models.SubmitOrderRequest{
		MarketID: "weather-rain-tomorrow",
		Outcome:  "YES",
		Side:     "SELL",
		Price:    0.55,
		Quantity: 10,
		Owner:    "bob",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 for a fully filled order, got: %d", resp.StatusCode)
	}

	var second models.SubmitOrderResponse
	decode(t, resp, &second)
	if second.Status != "FILLED" || len(second.Trades) != 1 {
		t.Fatalf("Expected FILLED with 1 trade, got: %+v", second)
	}
	// trade executes at the resting bid's price
	if second.Trades[0].Price != 0.60 {
		t.Errorf("Expected trade at 0.60, got: %v", second.Trades[0].Price)
	}
	if second.Trades[0].Buyer != "alice" || second.Trades[0].Seller != "bob" {
		t.Errorf("Expected alice/bob, got: %s/%s", second.Trades[0].Buyer, second.Trades[0].Seller)
	}
}

func TestSubmitOrderValidationAPI(t *testing.T) {
	app := setupTestServer()

	cases := []models.SubmitOrderRequest{
		{MarketID: "m", Outcome: "YES", Side: "BUY", Price: 1.5, Quantity: 10, Owner: "a"},
		{MarketID: "m", Outcome: "YES", Side: "BUY", Price: -0.2, Quantity: 10, Owner: "a"},
		{MarketID: "m", Outcome: "MAYBE", Side: "BUY", Price: 0.5, Quantity: 10, Owner: "a"},
		{MarketID: "m", Outcome: "YES", Side: "HOLD", Price: 0.5, Quantity: 10, Owner: "a"},
		{MarketID: "m", Outcome: "YES", Side: "BUY", Price: 0.5, Quantity: 0, Owner: "a"},
		{MarketID: "", Outcome: "YES", Side: "BUY", Price: 0.5, Quantity: 10, Owner: "a"},
	}

	for i, req := range cases {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/orders", req)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Case %d: expected 400, got: %d", i, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestCancelOrderAPI(t *testing.T) {
	app := setupTestServer()

	resp := doJSON(t, app, http.MethodPost, "/api/v1/orders", models.SubmitOrderRequest{
		MarketID: "m1", Outcome: "NO", Side: "SELL", Price: 0.7, Quantity: 5, Owner: "carol",
	})
	var placed models.SubmitOrderResponse
	decode(t, resp, &placed)

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/orders/%d", placed.OrderID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 on cancel, got: %d", resp.StatusCode)
	}
	var cancelled models.CancelOrderResponse
	decode(t, resp, &cancelled)
	if cancelled.Status != "CANCELLED" {
		t.Errorf("Expected CANCELLED, got: %s", cancelled.Status)
	}

	// edge case: idempotence — the second cancel is a 404, not an error
	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/orders/%d", placed.OrderID), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 on repeat cancel, got: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, "/api/v1/orders/not-a-number", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for a malformed id, got: %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestOrderBookDepthAPI(t *testing.T) {
	app := setupTestServer()

	for _, req := range []models.SubmitOrderRequest{
		{MarketID: "m1", Outcome: "YES", Side: "BUY", Price: 0.55, Quantity: 10, Owner: "a"},
		{MarketID: "m1", Outcome: "YES", Side: "BUY", Price: 0.60, Quantity: 5, Owner: "b"},
		{MarketID: "m1", Outcome: "YES", Side: "SELL", Price: 0.70, Quantity: 8, Owner: "c"},
	} {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/orders", req)
		resp.Body.Close()
	}

	resp := doJSON(t, app, http.MethodGet, "/api/v1/markets/m1/orderbook?outcome=YES", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got: %d", resp.StatusCode)
	}

	var book models.OrderBookResponse
	decode(t, resp, &book)

	if len(book.Bids) != 2 || len(book.Asks) != 1 {
		t.Fatalf("Expected 2 bid levels and 1 ask level, got: %d/%d", len(book.Bids), len(book.Asks))
	}
	// bids descending
	if book.Bids[0].Price != 0.60 || book.Bids[1].Price != 0.55 {
		t.Errorf("Bids must be sorted descending, got: %+v", book.Bids)
	}
	if book.Asks[0].Price != 0.70 || book.Asks[0].TotalQty != 8 {
		t.Errorf("Expected ask 8@0.70, got: %+v", book.Asks)
	}

	resp = doJSON(t, app, http.MethodGet, "/api/v1/markets/nope/orderbook?outcome=YES", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown market, got: %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestMarketsAPI(t *testing.T) {
	app := setupTestServer()

	resp := doJSON(t, app, http.MethodPost, "/api/v1/markets", models.CreateMarketRequest{MarketID: "m-new"})
	var created models.CreateMarketResponse
	decode(t, resp, &created)
	if !created.Created {
		t.Error("First create should report created=true")
	}

	resp = doJSON(t, app, http.MethodPost, "/api/v1/markets", models.CreateMarketRequest{MarketID: "m-new"})
	decode(t, resp, &created)
	if created.Created {
		t.Error("Repeat create must be idempotent")
	}

	resp = doJSON(t, app, http.MethodPost, "/api/v1/markets", models.CreateMarketRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for an empty market id, got: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/markets", nil)
	var markets []models.MarketInfo
	decode(t, resp, &markets)
	if len(markets) != 1 || markets[0].MarketID != "m-new" {
		t.Errorf("Expected one market m-new, got: %+v", markets)
	}
}

func TestArbitrageAPI(t *testing.T) {
	app := setupTestServer()

	for _, req := range []models.SubmitOrderRequest{
		{MarketID: "m1", Outcome: "YES", Side: "BUY", Price: 0.55, Quantity: 10, Owner: "a"},
		{MarketID: "m1", Outcome: "NO", Side: "BUY", Price: 0.40, Quantity: 10, Owner: "b"},
	} {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/orders", req)
		resp.Body.Close()
	}

	resp := doJSON(t, app, http.MethodGet, "/api/v1/markets/m1/arbitrage", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got: %d", resp.StatusCode)
	}

	var report models.ArbitrageResponse
	decode(t, resp, &report)
	if !report.Opportunity {
		t.Fatal("Expected an arbitrage opportunity")
	}
	if report.Profit != 0.05 {
		t.Errorf("Expected profit 0.05, got: %v", report.Profit)
	}
	if report.YesBid == nil || *report.YesBid != 0.55 || report.NoBid == nil || *report.NoBid != 0.40 {
		t.Errorf("Expected bids 0.55/0.40, got: %+v", report)
	}
}

func TestUserOrdersAPI(t *testing.T) {
	app := setupTestServer()

	for _, req := range []models.SubmitOrderRequest{
		{MarketID: "m1", Outcome: "YES", Side: "BUY", Price: 0.5, Quantity: 10, Owner: "alice"},
		{MarketID: "m2", Outcome: "NO", Side: "SELL", Price: 0.8, Quantity: 3, Owner: "alice"},
		{MarketID: "m1", Outcome: "YES", Side: "BUY", Price: 0.4, Quantity: 1, Owner: "bob"},
	} {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/orders", req)
		resp.Body.Close()
	}

	resp := doJSON(t, app, http.MethodGet, "/api/v1/users/alice/orders", nil)
	var orders []models.OrderInfo
	decode(t, resp, &orders)
	if len(orders) != 2 {
		t.Fatalf("Expected 2 orders for alice, got: %d", len(orders))
	}
	for _, o := range orders {
		if o.Owner != "alice" {
			t.Errorf("Expected only alice's orders, got: %+v", o)
		}
	}
}

func TestTradesAPI(t *testing.T) {
	app := setupTestServer()

	for _, req := range []models.SubmitOrderRequest{
		{MarketID: "m1", Outcome: "YES", Side: "BUY", Price: 0.6, Quantity: 5, Owner: "a"},
		{MarketID: "m1", Outcome: "YES", Side: "SELL", Price: 0.6, Quantity: 5, Owner: "b"},
		{MarketID: "m2", Outcome: "NO", Side: "BUY", Price: 0.3, Quantity: 2, Owner: "c"},
		{MarketID: "m2", Outcome: "NO", Side: "SELL", Price: 0.3, Quantity: 2, Owner: "d"},
	} {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/orders", req)
		resp.Body.Close()
	}

	resp := doJSON(t, app, http.MethodGet, "/api/v1/trades", nil)
	var trades []models.TradeInfo
	decode(t, resp, &trades)
	if len(trades) != 2 {
		t.Fatalf("Expected 2 trades, got: %d", len(trades))
	}
	// newest first
	if trades[0].MarketID != "m2" {
		t.Errorf("Expected the m2 trade first, got: %+v", trades[0])
	}

	resp = doJSON(t, app, http.MethodGet, "/api/v1/trades?market_id=m1&limit=10", nil)
	decode(t, resp, &trades)
	if len(trades) != 1 || trades[0].MarketID != "m1" {
		t.Errorf("Market filter failed: %+v", trades)
	}
}

func TestHealthAPI(t *testing.T) {
	app := setupTestServer()

	resp := doJSON(t, app, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got: %d", resp.StatusCode)
	}
	var health models.HealthResponse
	decode(t, resp, &health)
	if health.Status != "healthy" {
		t.Errorf("Expected healthy, got: %s", health.Status)
	}
}

// Concurrent submissions through the HTTP layer must not race.
func TestConcurrentOrderSubmissionAPI(t *testing.T) {
	app := setupTestServer()

	const goroutines = 20
	const ordersPerGoroutine = 10

	var wg sync.WaitGroup
	failures := make(chan error, goroutines*ordersPerGoroutine)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < ordersPerGoroutine; i++ {
				side := "BUY"
				if (g+i)%2 == 0 {
					side = "SELL"
				}
				payload, _ := json.Marshal(models.SubmitOrderRequest{
					MarketID: "busy",
					Outcome:  "YES",
					Side:     side,
					Price:    0.5,
					Quantity: 1,
					Owner:    fmt.Sprintf("trader-%d", g),
				})
				req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(payload))
				req.Header.Set("Content-Type", "application/json")
				resp, err := app.Test(req, -1)
				if err != nil {
					failures <- err
					return
				}
				resp.Body.Close()
				if resp.StatusCode >= http.StatusInternalServerError {
					failures <- fmt.Errorf("unexpected status %d", resp.StatusCode)
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(failures)

	for err := range failures {
		t.Errorf("Concurrent submission failed: %v", err)
	}
}
