// Package watch is the change-notification hub behind the live internship
// listings: every successful posting mutation notifies the hub, and each
// subscriber re-queries and pushes a fresh snapshot downstream.
//
// Notifications are coalesced, not queued. A subscriber that is still
// processing one change simply sees a single pending signal for everything
// that happened meanwhile. Only the latest state matters, because every
// signal triggers a full re-read.
package watch

import "sync"

// Hub fans change signals out to subscribers.
type Hub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan struct{}]struct{})}
}

// Notify signals every subscriber that something changed. Never blocks:
// a subscriber with a signal already pending is skipped (coalescing).
func (h *Hub) Notify() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns its signal channel.
// The channel has capacity 1, the coalescing slot.
func (h *Hub) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe releases a subscriber. Safe to call more than once.
func (h *Hub) Unsubscribe(ch chan struct{}) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// Len returns the current subscriber count.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
