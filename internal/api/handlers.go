// Package api implements the HTTP handlers for the demoshelf server: the
// auth endpoints, the project/demo mutation API, the range-aware audio
// streamer, the live-reload push channel, and the HTML pages.
package api

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"demoshelf/internal/auth"
	"demoshelf/internal/library"
	"demoshelf/internal/netguard"
	"demoshelf/internal/observability/metrics"
)

var (
	// ErrSetupRequired indicates no credential record exists yet.
	ErrSetupRequired = errors.New("setup required")
	// ErrUnauthenticated indicates the request carries no valid session.
	ErrUnauthenticated = errors.New("authentication required")
)

// Handler bundles the services the HTTP endpoints operate on.
type Handler struct {
	Library     *library.Library
	Credentials *auth.CredentialStore
	Sessions    *auth.SessionManager
	Guard       netguard.Classifier
	Hub         *EventHub
	Logger      *slog.Logger
	Metrics     *metrics.Recorder
	Templates   *template.Template

	SessionCookiePolicy SessionCookiePolicy
}

// NewHandler constructs a Handler, defaulting the logger, metrics recorder,
// and event hub when not supplied.
func NewHandler(lib *library.Library, credentials *auth.CredentialStore, sessions *auth.SessionManager) *Handler {
	return &Handler{
		Library:     lib,
		Credentials: credentials,
		Sessions:    sessions,
		Hub:         NewEventHub(metrics.Default()),
		Logger:      slog.Default(),
		Metrics:     metrics.Default(),
	}
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *Handler) metrics() *metrics.Recorder {
	if h.Metrics != nil {
		return h.Metrics
	}
	return metrics.Default()
}

// AuthenticateRequest validates the session token on the request. It returns
// ErrSetupRequired when no credential record exists and ErrUnauthenticated
// when the token is missing or unknown.
func (h *Handler) AuthenticateRequest(r *http.Request) error {
	if !h.Credentials.Configured() {
		return ErrSetupRequired
	}
	token := ExtractToken(r)
	if token == "" {
		return ErrUnauthenticated
	}
	ok, err := h.Sessions.Validate(token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthenticated
	}
	return nil
}

// Health reports process liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
}
