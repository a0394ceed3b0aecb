package engine

import (
	"sync"
	"time"

	"github.com/lcalzada-xor/wsniff/internal/core/domain"
	"github.com/lcalzada-xor/wsniff/internal/telemetry"
)

// DefaultSubscriberBuffer is used when Subscribe is given a non-positive size.
const DefaultSubscriberBuffer = 256

// Bus fans engine events out to subscribers. Each subscriber has its own
// buffered channel; Publish never blocks and drops events for subscribers
// whose buffer is full. Delivery order equals publish order.
type Bus struct {
	mu     sync.Mutex
	subs   map[uint64]chan domain.Event
	nextID uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]chan domain.Event)}
}

// Subscribe registers a subscriber. The returned function unsubscribes and
// closes the channel; it is safe to call more than once.
func (b *Bus) Subscribe(buffer int) (<-chan domain.Event, func()) {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	ch := make(chan domain.Event, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers ev to every subscriber.
func (b *Bus) Publish(ev domain.Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			telemetry.EventsDropped.Inc()
		}
	}
}

// Len returns the number of active subscribers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
