package api

import (
	"fmt"
	"net/http"
	"sync"

	"demoshelf/internal/observability/metrics"
)

// EventHub fans a generic reload signal out to every connected push-channel
// client. It is the single subscriber of the filesystem watcher: the payload
// carries no event detail, only an instruction to re-fetch state.
type EventHub struct {
	mu       sync.Mutex
	clients  map[chan struct{}]struct{}
	recorder *metrics.Recorder
}

// NewEventHub constructs an empty hub.
func NewEventHub(recorder *metrics.Recorder) *EventHub {
	if recorder == nil {
		recorder = metrics.Default()
	}
	return &EventHub{
		clients:  make(map[chan struct{}]struct{}),
		recorder: recorder,
	}
}

// Subscribe registers a new push-channel client and returns its signal
// channel.
func (hub *EventHub) Subscribe() chan struct{} {
	ch := make(chan struct{}, 4)
	hub.mu.Lock()
	hub.clients[ch] = struct{}{}
	hub.mu.Unlock()
	hub.recorder.PushClientConnected()
	return ch
}

// Unsubscribe removes a client from the hub; unknown channels are ignored.
func (hub *EventHub) Unsubscribe(ch chan struct{}) {
	hub.mu.Lock()
	_, known := hub.clients[ch]
	delete(hub.clients, ch)
	hub.mu.Unlock()
	if known {
		hub.recorder.PushClientDisconnected()
	}
}

// Broadcast signals every connected client. Sends are non-blocking: a client
// whose buffer is full already has a reload pending.
func (hub *EventHub) Broadcast() {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	for ch := range hub.clients {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// ClientCount reports the number of connected clients, for tests.
func (hub *EventHub) ClientCount() int {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	return len(hub.clients)
}

// Relay forwards watcher signals into the hub until the channel closes or
// stop is signalled.
func (hub *EventHub) Relay(signals <-chan struct{}, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case _, ok := <-signals:
			if !ok {
				return
			}
			hub.Broadcast()
		}
	}
}

// Events serves the persistent push channel. It acknowledges the connection,
// then emits a reload event per broadcast until the client disconnects.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "GET")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ch := h.Hub.Subscribe()
	defer h.Hub.Unsubscribe(ch)

	fmt.Fprint(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			if _, err := fmt.Fprint(w, "event: reload\ndata: {}\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
