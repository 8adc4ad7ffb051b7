// Package metrics aggregates in-memory counters and gauges for the demoshelf
// server and renders them in Prometheus text exposition format.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type requestLabel struct {
	method string
	path   string
	status string
}

// Recorder aggregates HTTP request counters, library mutation events,
// streaming throughput, and the live push-client gauge. It coordinates
// concurrent writers via a RWMutex while exposing thread-safe gauges.
type Recorder struct {
	mu              sync.RWMutex
	requestCount    map[requestLabel]uint64
	requestDuration map[requestLabel]time.Duration
	libraryEvents   map[string]uint64
	libraryWarnings uint64
	streamedBytes   atomic.Int64
	pushClients     atomic.Int64
}

var defaultRecorder = New()

// New constructs an empty Recorder with initialized backing maps so callers
// can immediately record metrics without additional setup.
func New() *Recorder {
	return &Recorder{
		requestCount:    make(map[requestLabel]uint64),
		requestDuration: make(map[requestLabel]time.Duration),
		libraryEvents:   make(map[string]uint64),
	}
}

// Default returns the singleton Recorder shared across packages that do not
// require a custom instrumentation pipeline.
func Default() *Recorder {
	return defaultRecorder
}

// ObserveRequest accumulates request count and cumulative duration by HTTP
// method, normalized path, and status code.
func (r *Recorder) ObserveRequest(method, path string, status int, duration time.Duration) {
	label := requestLabel{
		method: strings.ToUpper(method),
		path:   normalizePath(path),
		status: fmt.Sprintf("%d", status),
	}
	r.mu.Lock()
	r.requestCount[label]++
	r.requestDuration[label] += duration
	r.mu.Unlock()
}

// ObserveLibraryEvent records a registry mutation keyed by event name
// (e.g. "project_created", "demo_uploaded").
func (r *Recorder) ObserveLibraryEvent(event string) {
	normalized := strings.ToLower(strings.TrimSpace(event))
	if normalized == "" {
		normalized = "unknown"
	}
	r.mu.Lock()
	r.libraryEvents[normalized]++
	r.mu.Unlock()
}

// ObserveLibraryWarning records a non-fatal registry failure, such as a
// project directory that could not be read during a listing.
func (r *Recorder) ObserveLibraryWarning() {
	r.mu.Lock()
	r.libraryWarnings++
	r.mu.Unlock()
}

// AddStreamedBytes accumulates bytes written by the range streamer.
func (r *Recorder) AddStreamedBytes(n int64) {
	if n > 0 {
		r.streamedBytes.Add(n)
	}
}

// PushClientConnected increments the live push-client gauge.
func (r *Recorder) PushClientConnected() {
	r.pushClients.Add(1)
}

// PushClientDisconnected decrements the live push-client gauge, guarding
// against negative counts when concurrent updates race.
func (r *Recorder) PushClientDisconnected() {
	for {
		current := r.pushClients.Load()
		if current <= 0 {
			return
		}
		if r.pushClients.CompareAndSwap(current, current-1) {
			return
		}
	}
}

// PushClients exposes the current number of connected push channels.
func (r *Recorder) PushClients() int64 {
	return r.pushClients.Load()
}

// LibraryEventCounts returns a copy of the mutation counters for tests and
// reporting.
func (r *Recorder) LibraryEventCounts() map[string]uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := make(map[string]uint64, len(r.libraryEvents))
	for k, v := range r.libraryEvents {
		events[k] = v
	}
	return events
}

// Reset clears all counters and gauges on the recorder. It is intended for
// test setups.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requestCount = make(map[requestLabel]uint64)
	r.requestDuration = make(map[requestLabel]time.Duration)
	r.libraryEvents = make(map[string]uint64)
	r.libraryWarnings = 0
	r.streamedBytes.Store(0)
	r.pushClients.Store(0)
}

// Handler exposes the Recorder as an http.Handler that writes Prometheus
// text exposition data with the appropriate content type.
func (r *Recorder) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		r.Write(w)
	})
}

// Write renders the Recorder's metrics in Prometheus text format, sorting
// label sets to provide stable output for scrapes and tests.
func (r *Recorder) Write(w io.Writer) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	requestLabels := r.sortedRequestLabels()
	libraryEvents := r.sortedLibraryEvents()

	fmt.Fprintln(w, "# HELP demoshelf_http_requests_total Total number of HTTP requests processed by the server")
	fmt.Fprintln(w, "# TYPE demoshelf_http_requests_total counter")
	for _, label := range requestLabels {
		fmt.Fprintf(w, "demoshelf_http_requests_total{method=%q,path=%q,status=%q} %d\n", label.method, label.path, label.status, r.requestCount[label])
	}

	fmt.Fprintln(w, "# HELP demoshelf_http_request_duration_seconds_sum Cumulative duration of HTTP requests in seconds")
	fmt.Fprintln(w, "# TYPE demoshelf_http_request_duration_seconds_sum counter")
	for _, label := range requestLabels {
		fmt.Fprintf(w, "demoshelf_http_request_duration_seconds_sum{method=%q,path=%q,status=%q} %f\n", label.method, label.path, label.status, r.requestDuration[label].Seconds())
	}

	fmt.Fprintln(w, "# HELP demoshelf_library_events_total Registry mutations by event type")
	fmt.Fprintln(w, "# TYPE demoshelf_library_events_total counter")
	for _, event := range libraryEvents {
		fmt.Fprintf(w, "demoshelf_library_events_total{event=%q} %d\n", event, r.libraryEvents[event])
	}

	fmt.Fprintln(w, "# HELP demoshelf_library_warnings_total Non-fatal registry failures skipped during listings")
	fmt.Fprintln(w, "# TYPE demoshelf_library_warnings_total counter")
	fmt.Fprintf(w, "demoshelf_library_warnings_total %d\n", r.libraryWarnings)

	fmt.Fprintln(w, "# HELP demoshelf_streamed_bytes_total Bytes written by the audio file streamer")
	fmt.Fprintln(w, "# TYPE demoshelf_streamed_bytes_total counter")
	fmt.Fprintf(w, "demoshelf_streamed_bytes_total %d\n", r.streamedBytes.Load())

	fmt.Fprintln(w, "# HELP demoshelf_push_clients Current number of connected push channels")
	fmt.Fprintln(w, "# TYPE demoshelf_push_clients gauge")
	fmt.Fprintf(w, "demoshelf_push_clients %d\n", r.pushClients.Load())
}

func (r *Recorder) sortedRequestLabels() []requestLabel {
	labels := make([]requestLabel, 0, len(r.requestCount))
	for label := range r.requestCount {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if labels[i].path != labels[j].path {
			return labels[i].path < labels[j].path
		}
		if labels[i].method != labels[j].method {
			return labels[i].method < labels[j].method
		}
		return labels[i].status < labels[j].status
	})
	return labels
}

func (r *Recorder) sortedLibraryEvents() []string {
	events := make([]string, 0, len(r.libraryEvents))
	for event := range r.libraryEvents {
		events = append(events, event)
	}
	sort.Strings(events)
	return events
}

// normalizePath collapses per-resource path segments so the label set stays
// bounded regardless of project and file names.
func normalizePath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == "/" {
		return "/"
	}
	segments := strings.Split(strings.Trim(trimmed, "/"), "/")
	switch segments[0] {
	case "music":
		return "/music/:project/:file"
	case "project":
		return "/project/:name"
	case "api":
		if len(segments) >= 2 && segments[1] == "projects" {
			switch len(segments) {
			case 2:
				return "/api/projects"
			case 3:
				return "/api/projects/:name"
			case 4:
				return "/api/projects/:name/" + segments[3]
			default:
				return "/api/projects/:name/demos/:file"
			}
		}
	}
	return "/" + strings.Join(segments, "/")
}
