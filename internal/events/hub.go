package events

import (
	"context"
	"log"
	"sync"
	"time"
)

const defaultBuffer = 16

// Hub fans events out to in-process subscribers such as SSE streams.
// A subscriber that falls behind loses events rather than blocking publishers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	buffer int
}

// NewHub creates a Hub whose subscribers buffer up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{subs: make(map[chan Event]struct{}), buffer: buffer}
}

// Publish delivers evt to every current subscriber.
func (h *Hub) Publish(_ context.Context, evt Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.broadcast(evt)
	return nil
}

// Subscribe registers a new subscriber and announces the new audience size.
// The returned cancel func unsubscribes and closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.broadcast(h.countEvent())
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			close(ch)
			h.broadcast(h.countEvent())
			h.mu.Unlock()
		})
	}
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) countEvent() Event {
	return Event{Type: UsersCount, Count: len(h.subs), At: time.Now().UTC()}
}

// broadcast must be called with h.mu held.
func (h *Hub) broadcast(evt Event) {
	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
			log.Printf("events: dropping %s for slow subscriber", evt.Type)
		}
	}
}
