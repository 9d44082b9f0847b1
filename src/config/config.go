package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Server struct {
	Port            string
	ShutdownTimeout time.Duration
}

type RateLimit struct {
	Disabled    bool
	MaxRequests int
	Window      time.Duration
}

type OrderBook struct {
	DefaultDepth int
	MaxDepth     int
	// AutoCreateMarkets lets order submission create unknown markets on
	// demand instead of rejecting with a not-found error.
	AutoCreateMarkets bool
}

type Kafka struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type Config struct {
	Server    Server
	RateLimit RateLimit
	OrderBook OrderBook
	Kafka     Kafka
}

func Default() Config {
	return Config{
		Server: Server{
			Port:            "8080",
			ShutdownTimeout: 10 * time.Second,
		},
		RateLimit: RateLimit{
			MaxRequests: 100,
			Window:      time.Second,
		},
		OrderBook: OrderBook{
			DefaultDepth:      10,
			MaxDepth:          1000,
			AutoCreateMarkets: true,
		},
		Kafka: Kafka{
			Topic: "clob.trades",
		},
	}
}

// Load reads configuration from a .env file (if present) and environment
// variables. Priority: ENV > .env file > defaults.
func Load() Config {
	_ = godotenv.Load()

	cfg := Default()

	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			cfg.Server.ShutdownTimeout = parsed
		}
	}

	cfg.RateLimit.Disabled = os.Getenv("RATE_LIMIT_DISABLED") == "1"
	if v := os.Getenv("RATE_LIMIT_MAX"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.RateLimit.MaxRequests = parsed
		}
	}
	if v := os.Getenv("RATE_LIMIT_WINDOW"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			cfg.RateLimit.Window = parsed
		}
	}

	if v := os.Getenv("ORDERBOOK_DEFAULT_DEPTH"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.OrderBook.DefaultDepth = parsed
		}
	}
	if v := os.Getenv("ORDERBOOK_MAX_DEPTH"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.OrderBook.MaxDepth = parsed
		}
	}
	if v := os.Getenv("AUTO_CREATE_MARKETS"); v != "" {
		cfg.OrderBook.AutoCreateMarkets = v != "0"
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Enabled = true
		for _, broker := range strings.Split(v, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, broker)
			}
		}
	}
	if v := os.Getenv("KAFKA_TRADES_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}

	return cfg
}
