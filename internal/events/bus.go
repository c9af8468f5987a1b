package events

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Publisher is the side of the bus that components depend on.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// anyType keys catch-all subscriptions.
const anyType = ""

// Bus fans events out to subscribers and the optional EventLog.
// Delivery never blocks: a full subscriber channel drops the event.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]chan Event // event type, or anyType
	closed bool

	log    *EventLog // nil disables persistence
	logger *slog.Logger
}

// NewBus creates a bus. A nil EventLog keeps events in memory only.
func NewBus(log *EventLog, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{subs: make(map[string][]chan Event), log: log, logger: logger}
}

// Publish persists e, then hands it to typed and catch-all subscribers.
// Persistence failures are logged, not returned. Publishing on a closed
// bus does nothing.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	if b.isClosed() {
		return nil
	}

	if b.log != nil {
		if _, err := b.log.Append(e); err != nil {
			b.logger.Error("failed to persist event", "type", e.EventType(), "error", err)
		}
	}

	// Sends happen under the read lock so Close cannot close a channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}
	for _, ch := range slices.Concat(b.subs[e.EventType()], b.subs[anyType]) {
		select {
		case ch <- e:
		default:
			b.logger.Warn("subscriber channel full, dropping event",
				"type", e.EventType(),
				"entity_type", e.EntityType(),
				"entity_id", e.EntityID())
		}
	}
	return nil
}

func (b *Bus) isClosed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}

// Subscribe returns a channel for events of one type.
// Subscribing to a closed bus returns a closed channel.
func (b *Bus) Subscribe(eventType string, bufferSize int) <-chan Event {
	return b.add(eventType, bufferSize)
}

// SubscribeAll returns a channel that receives every event.
func (b *Bus) SubscribeAll(bufferSize int) <-chan Event {
	return b.add(anyType, bufferSize)
}

func (b *Bus) add(key string, bufferSize int) <-chan Event {
	ch := make(chan Event, bufferSize)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[key] = append(b.subs[key], ch)
	return ch
}

// Unsubscribe removes and closes a subscription. Unknown channels are ignored.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key, list := range b.subs {
		i := slices.IndexFunc(list, func(c chan Event) bool { return c == ch })
		if i < 0 {
			continue
		}
		close(list[i])
		b.subs[key] = slices.Delete(list, i, i+1)
		return
	}
}

// Close closes every subscriber channel. It is safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for _, list := range b.subs {
		for _, ch := range list {
			close(ch)
		}
	}
	clear(b.subs)
	return nil
}
