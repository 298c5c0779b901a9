package backend

import (
	"sync"

	"github.com/nospi-app/nospi/internal/client/models"
)

const subscriberBuffer = 16

type subscriber struct {
	ch   chan models.AuthEvent
	done chan struct{}
	once sync.Once
}

// Hub fans session events out to subscribers. Publish calls are serialized,
// so every subscriber observes events in publication order.
type Hub struct {
	mu    sync.Mutex
	pubMu sync.Mutex
	subs  map[int]*subscriber
	next  int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]*subscriber)}
}

// Subscribe registers a new listener. The returned func releases it; calling
// it more than once has no further effect. The channel is closed on release.
func (h *Hub) Subscribe() (<-chan models.AuthEvent, func()) {
	s := &subscriber{
		ch:   make(chan models.AuthEvent, subscriberBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = s
	h.mu.Unlock()

	unsubscribe := func() {
		s.once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()

			close(s.done)

			// no publisher can be sending once pubMu is held
			h.pubMu.Lock()
			close(s.ch)
			h.pubMu.Unlock()
		})
	}

	return s.ch, unsubscribe
}

// Publish delivers ev to every current subscriber, blocking on a full
// subscriber until it reads or unsubscribes.
func (h *Hub) Publish(ev models.AuthEvent) {
	h.pubMu.Lock()
	defer h.pubMu.Unlock()

	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		select {
		case s.ch <- ev:
		case <-s.done:
		}
	}
}

// Len reports the number of active subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
