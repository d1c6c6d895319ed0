package events

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Bus fans change events out to subscribers. Publishing never blocks: a
// subscriber that falls behind loses events rather than stalling the
// store's write tick.
type Bus struct {
	logger hclog.Logger

	mu   sync.Mutex
	subs []chan Event
}

func NewBus(logger hclog.Logger) *Bus {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Bus{logger: logger.Named("events")}
}

// Subscribe registers a subscriber with the given channel capacity.
func (b *Bus) Subscribe(capacity int) <-chan Event {
	ch := make(chan Event, capacity)

	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()

	return ch
}

// Publish delivers e to every subscriber with room in its channel.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	subs := b.subs
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- e:
		default:
			b.logger.Warn("dropping change event for slow subscriber", "event", fmt.Sprintf("%T", e))
		}
	}
}
