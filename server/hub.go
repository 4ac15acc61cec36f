package main

import (
	"sync"

	"botmarket/match"
)

type subscriber struct {
	ch chan match.TickSummary
}

// summaryHub fans tick summaries out to live websocket subscribers.
// Sends never block; a subscriber that falls behind misses summaries.
type summaryHub struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

func newSummaryHub() *summaryHub {
	return &summaryHub{subs: make(map[*subscriber]struct{})}
}

func (h *summaryHub) subscribe(buffer int) *subscriber {
	sub := &subscriber{ch: make(chan match.TickSummary, buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *summaryHub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
	close(sub.ch)
}

func (h *summaryHub) broadcast(summary match.TickSummary) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- summary:
		default:
		}
	}
}
