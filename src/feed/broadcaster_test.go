package feed

import (
	"testing"
	"time"

	"clob-engine/src/engine"
)

func testTrade(id uint64) *engine.Trade {
	return &engine.Trade{
		ID:       id,
		MarketID: "m1",
		Outcome:  engine.OutcomeYes,
		Price:    600_000,
		Quantity: 5,
	}
}

func TestBroadcasterFanOut(t *testing.T) {
	b := NewBroadcaster(8)
	defer b.Close()

	id1, ch1 := b.Subscribe()
	_, ch2 := b.Subscribe()

	if b.SubscriberCount() != 2 {
		t.Fatalf("Expected 2 subscribers, got: %d", b.SubscriberCount())
	}

	b.PublishTrades([]*engine.Trade{testTrade(1), testTrade(2)})

	for _, ch := range []<-chan *engine.Trade{ch1, ch2} {
		for want := uint64(1); want <= 2; want++ {
			select {
			case trade := <-ch:
				if trade.ID != want {
					t.Errorf("Expected trade %d, got: %d", want, trade.ID)
				}
			case <-time.After(time.Second):
				t.Fatal("Timed out waiting for trade")
			}
		}
	}

	b.Unsubscribe(id1)
	if b.SubscriberCount() != 1 {
		t.Errorf("Expected 1 subscriber after unsubscribe, got: %d", b.SubscriberCount())
	}
	if _, open := <-ch1; open {
		t.Error("Unsubscribed channel must be closed")
	}
}

func TestBroadcasterDropsWhenFull(t *testing.T) {
	b := NewBroadcaster(1)
	defer b.Close()

	_, ch := b.Subscribe()

	// second publish must not block even though nobody is draining
	done := make(chan struct{})
	go func() {
		b.PublishTrades([]*engine.Trade{testTrade(1)})
		b.PublishTrades([]*engine.Trade{testTrade(2)})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PublishTrades blocked on a full subscriber")
	}

	trade := <-ch
	if trade.ID != 1 {
		t.Errorf("Expected the buffered trade 1, got: %d", trade.ID)
	}
	select {
	case extra := <-ch:
		t.Errorf("Overflow trade should have been dropped, got: %d", extra.ID)
	default:
	}
}

func TestBroadcasterCloseIsTerminal(t *testing.T) {
	b := NewBroadcaster(4)
	_, ch := b.Subscribe()

	b.Close()

	if _, open := <-ch; open {
		t.Error("Close must close subscriber channels")
	}

	// publish after close is a no-op, and late subscribers get a closed channel
	b.PublishTrades([]*engine.Trade{testTrade(1)})
	_, late := b.Subscribe()
	if _, open := <-late; open {
		t.Error("Subscribe after Close must return a closed channel")
	}
}
