package feed

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"clob-engine/src/engine"
)

// KafkaPublisher drains a broadcaster subscription and writes each trade
// to a Kafka topic, keyed by market id so one market's trades land on one
// partition. Delivery is best-effort since a saturated subscription drops
// trades; trade ids are the authoritative sequence for consumers that
// need a total order. Optional: the engine runs fine without a broker.
type KafkaPublisher struct {
	writer *kafka.Writer
}

type tradeMessage struct {
	ID          uint64  `json:"id"`
	MarketID    string  `json:"market_id"`
	Outcome     string  `json:"outcome"`
	BuyOrderID  uint64  `json:"buy_order_id"`
	SellOrderID uint64  `json:"sell_order_id"`
	Buyer       string  `json:"buyer"`
	Seller      string  `json:"seller"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
	Timestamp   int64   `json:"timestamp"`
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
		},
	}
}

// Run consumes trades from the broadcaster until ctx is cancelled or the
// subscription closes. Broker errors are logged and the trade is dropped;
// the book is the source of truth, the stream is best-effort.
func (p *KafkaPublisher) Run(ctx context.Context, b *Broadcaster) {
	id, trades := b.Subscribe()
	defer b.Unsubscribe(id)

	log.Info().Str("topic", p.writer.Topic).Msg("Kafka trade publisher started")

	for {
		select {
		case <-ctx.Done():
			return
		case trade, ok := <-trades:
			if !ok {
				return
			}
			if err := p.publish(ctx, trade); err != nil {
				log.Error().
					Err(err).
					Uint64("trade_id", trade.ID).
					Str("market_id", trade.MarketID).
					Msg("Failed to publish trade to Kafka")
			}
		}
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, trade *engine.Trade) error {
	payload, err := json.Marshal(tradeMessage{
		ID:          trade.ID,
		MarketID:    trade.MarketID,
		Outcome:     string(trade.Outcome),
		BuyOrderID:  trade.BuyOrderID,
		SellOrderID: trade.SellOrderID,
		Buyer:       trade.Buyer,
		Seller:      trade.Seller,
		Price:       float64(trade.Price) / float64(engine.PriceScale),
		Quantity:    trade.Quantity,
		Timestamp:   trade.Timestamp,
	})
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(trade.MarketID),
		Value: payload,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
