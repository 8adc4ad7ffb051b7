package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestEventHubFanOut(t *testing.T) {
	hub := NewEventHub(nil)

	first := hub.Subscribe()
	second := hub.Subscribe()
	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("clients = %d, want 2", got)
	}

	hub.Broadcast()
	for i, ch := range []chan struct{}{first, second} {
		select {
		case <-ch:
		default:
			t.Fatalf("client %d received no signal", i)
		}
	}

	hub.Unsubscribe(first)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("clients after unsubscribe = %d, want 1", got)
	}
	// Unsubscribing an unknown channel is harmless.
	hub.Unsubscribe(first)

	hub.Broadcast()
	select {
	case <-second:
	default:
		t.Fatal("remaining client received no signal")
	}
}

func TestEventHubBroadcastNeverBlocks(t *testing.T) {
	hub := NewEventHub(nil)
	ch := hub.Subscribe()

	// More broadcasts than the channel buffer holds.
	for i := 0; i < 20; i++ {
		hub.Broadcast()
	}

	drained := 0
	for {
		select {
		case <-ch:
			drained++
			continue
		default:
		}
		break
	}
	if drained == 0 || drained > cap(ch) {
		t.Fatalf("drained = %d, want between 1 and %d", drained, cap(ch))
	}
}

func TestEventHubRelay(t *testing.T) {
	hub := NewEventHub(nil)
	client := hub.Subscribe()

	signals := make(chan struct{}, 1)
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		hub.Relay(signals, stop)
		close(done)
	}()

	signals <- struct{}{}
	select {
	case <-client:
	case <-time.After(time.Second):
		t.Fatal("relay never forwarded the signal")
	}

	close(stop)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay never stopped")
	}
}

// flushRecorder is a concurrency-safe ResponseWriter that implements
// http.Flusher so the push-channel handler accepts it.
type flushRecorder struct {
	mu     sync.Mutex
	header http.Header
	status int
	buf    bytes.Buffer
}

func newFlushRecorder() *flushRecorder {
	return &flushRecorder{header: make(http.Header)}
}

func (f *flushRecorder) Header() http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.header
}

func (f *flushRecorder) WriteHeader(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status == 0 {
		f.status = status
	}
}

func (f *flushRecorder) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.Write(p)
}

func (f *flushRecorder) Flush() {}

func (f *flushRecorder) snapshot() (int, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.buf.String()
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestEventsHandler(t *testing.T) {
	handler := newTestHandler(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest("GET", "/events", nil).WithContext(ctx)
	rec := newFlushRecorder()

	done := make(chan struct{})
	go func() {
		handler.Events(rec, req)
		close(done)
	}()

	waitFor(t, "subscription", func() bool { return handler.Hub.ClientCount() == 1 })

	status, body := rec.snapshot()
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if !strings.Contains(body, "event: connected") {
		t.Fatalf("body = %q, want connected event", body)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("Content-Type = %q, want text/event-stream", got)
	}

	handler.Hub.Broadcast()
	waitFor(t, "reload event", func() bool {
		_, body := rec.snapshot()
		return strings.Contains(body, "event: reload")
	})

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never returned after disconnect")
	}
	if got := handler.Hub.ClientCount(); got != 0 {
		t.Fatalf("clients after disconnect = %d, want 0", got)
	}
}

func TestEventsRequiresFlusher(t *testing.T) {
	handler := newTestHandler(t)
	rec := &plainRecorder{header: make(http.Header)}
	handler.Events(rec, httptest.NewRequest("GET", "/events", nil))
	if rec.status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.status)
	}
}

// plainRecorder deliberately lacks http.Flusher.
type plainRecorder struct {
	header http.Header
	status int
	buf    bytes.Buffer
}

func (p *plainRecorder) Header() http.Header { return p.header }

func (p *plainRecorder) WriteHeader(status int) {
	if p.status == 0 {
		p.status = status
	}
}

func (p *plainRecorder) Write(b []byte) (int, error) {
	if p.status == 0 {
		p.status = http.StatusOK
	}
	return p.buf.Write(b)
}
