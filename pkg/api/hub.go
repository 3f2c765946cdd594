package api

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/mfreeman451/zserve/pkg/models"
)

const defaultSubscriberBuffer = 64

type subscriber struct {
	ch   chan *models.AccessRecord
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// Hub fans completed requests out to event stream subscribers. Publishing
// never blocks: a subscriber whose buffer is full is disconnected.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*subscriber]struct{}
	bufferSize int
	evicted    atomic.Uint64
	closed     bool
}

// NewHub creates a hub with the given per-subscriber buffer size.
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = defaultSubscriberBuffer
	}

	return &Hub{
		clients:    make(map[*subscriber]struct{}),
		bufferSize: bufferSize,
	}
}

// Subscribe registers a subscriber. The returned channel is closed when the
// subscriber is evicted, the hub closes, or cancel is called.
func (h *Hub) Subscribe() (<-chan *models.AccessRecord, func()) {
	sub := &subscriber{ch: make(chan *models.AccessRecord, h.bufferSize)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.close()

		return sub.ch, func() {}
	}

	h.clients[sub] = struct{}{}
	h.mu.Unlock()

	return sub.ch, func() { h.remove(sub) }
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	delete(h.clients, sub)
	h.mu.Unlock()

	sub.close()
}

// Record implements httpx.AccessSink.
func (h *Hub) Record(rec *models.AccessRecord) {
	h.Publish(rec)
}

// Publish delivers rec to every subscriber with room in its buffer.
func (h *Hub) Publish(rec *models.AccessRecord) {
	var slow []*subscriber

	h.mu.RLock()
	for sub := range h.clients {
		select {
		case sub.ch <- rec:
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range slow {
		h.evicted.Add(1)
		log.Printf("Event subscriber too slow, disconnecting")
		h.remove(sub)
	}
}

// Clients returns the number of subscribers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// Evicted returns how many subscribers were dropped for falling behind.
func (h *Hub) Evicted() uint64 {
	return h.evicted.Load()
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true

	for sub := range h.clients {
		delete(h.clients, sub)
		sub.close()
	}
}
