package feed

import (
	"sync"

	"github.com/rs/zerolog/log"

	"clob-engine/src/engine"
)

// Broadcaster fans emitted trades out to in-process subscribers (websocket
// clients, the Kafka publisher). Publishing never blocks the matching
// path: a subscriber whose buffer is full misses the trade.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[uint64]chan *engine.Trade
	nextID      uint64
	bufferSize  int
	closed      bool
}

func NewBroadcaster(bufferSize int) *Broadcaster {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Broadcaster{
		subscribers: make(map[uint64]chan *engine.Trade),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a new trade stream. The channel is closed by
// Unsubscribe or Close.
func (b *Broadcaster) Subscribe() (uint64, <-chan *engine.Trade) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	ch := make(chan *engine.Trade, b.bufferSize)
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subscribers[id] = ch
	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, exists := b.subscribers[id]; exists {
		delete(b.subscribers, id)
		close(ch)
	}
}

// PublishTrades implements engine.TradePublisher.
func (b *Broadcaster) PublishTrades(trades []*engine.Trade) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, trade := range trades {
		for id, ch := range b.subscribers {
			select {
			case ch <- trade:
			default:
				// edge case: slow subscriber, drop rather than stall matching
				log.Warn().
					Uint64("subscriber_id", id).
					Uint64("trade_id", trade.ID).
					Msg("Trade feed subscriber buffer full, dropping trade")
			}
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close shuts every subscriber channel; further publishes are no-ops.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}
