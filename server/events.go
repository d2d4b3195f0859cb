package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Event is pushed to both parties of a connection request.
type Event struct {
	Type    string  `json:"type"`
	Request Request `json:"request"`
}

const (
	EventRequestCreated   = "request.created"
	EventRequestWithdrawn = "request.withdrawn"
	EventRequestAccepted  = "request.accepted"
)

type EventBus struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewEventBus() *EventBus { return &EventBus{subs: make(map[string]map[chan []byte]struct{})} }

func (b *EventBus) Subscribe(userID string) (ch chan []byte, cancel func()) {
	ch = make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[chan []byte]struct{})
	}
	b.subs[userID][ch] = struct{}{}
	b.mu.Unlock()
	return ch, func() {
		b.mu.Lock()
		if subs, ok := b.subs[userID]; ok {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(b.subs, userID)
			}
		}
		b.mu.Unlock()
		close(ch)
	}
}

// Publish delivers ev to every stream of the sender and the recipient.
func (b *EventBus) Publish(ev Event) {
	data, _ := json.Marshal(ev)
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, uid := range []string{ev.Request.From, ev.Request.To} {
		for ch := range b.subs[uid] {
			select {
			case ch <- data:
			default: // drop if slow
			}
		}
	}
}

// ServeSSE streams the events of one user until the client goes away.
func (b *EventBus) ServeSSE(w http.ResponseWriter, r *http.Request, userID string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	// streams outlive the server write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	ch, cancel := b.Subscribe(userID)
	defer cancel()

	_, _ = w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(25 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			// heartbeat comment to keep connection alive through proxies
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(msg)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}
