package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"demoshelf/internal/auth"
	"demoshelf/internal/library"
	"demoshelf/internal/observability/metrics"
	"demoshelf/web"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := metrics.New()
	lib, err := library.New(library.Config{
		Root:    t.TempDir(),
		Logger:  logger,
		Metrics: recorder,
	})
	if err != nil {
		t.Fatalf("library.New: %v", err)
	}
	credentials, err := auth.NewCredentialStore(filepath.Join(t.TempDir(), "credentials.json"))
	if err != nil {
		t.Fatalf("auth.NewCredentialStore: %v", err)
	}
	handler := NewHandler(lib, credentials, auth.NewSessionManager())
	handler.Logger = logger
	handler.Metrics = recorder
	handler.Hub = NewEventHub(recorder)
	templates, err := web.Templates()
	if err != nil {
		t.Fatalf("web.Templates: %v", err)
	}
	handler.Templates = templates
	return handler
}

func jsonBody(t *testing.T, payload interface{}) io.Reader {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func setupAndLogin(t *testing.T, handler *Handler) string {
	t.Helper()
	if err := handler.Credentials.Setup("correct horse battery"); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	token, err := handler.Sessions.Create()
	if err != nil {
		t.Fatalf("Create session: %v", err)
	}
	return token
}

func TestHealth(t *testing.T) {
	handler := newTestHandler(t)
	rec := httptest.NewRecorder()
	handler.Health(rec, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestAuthenticateRequest(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("POST", "/api/projects", nil)
	if err := handler.AuthenticateRequest(req); err != ErrSetupRequired {
		t.Fatalf("unconfigured = %v, want ErrSetupRequired", err)
	}

	token := setupAndLogin(t, handler)

	if err := handler.AuthenticateRequest(req); err != ErrUnauthenticated {
		t.Fatalf("no token = %v, want ErrUnauthenticated", err)
	}

	req.Header.Set("Authorization", "Bearer bogus")
	if err := handler.AuthenticateRequest(req); err != ErrUnauthenticated {
		t.Fatalf("bad token = %v, want ErrUnauthenticated", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if err := handler.AuthenticateRequest(req); err != nil {
		t.Fatalf("valid token = %v, want nil", err)
	}

	cookieReq := httptest.NewRequest("POST", "/api/projects", nil)
	cookieReq.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	if err := handler.AuthenticateRequest(cookieReq); err != nil {
		t.Fatalf("valid cookie = %v, want nil", err)
	}
}

func TestExtractTokenPrefersCookie(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")
	if got := ExtractToken(req); got != "from-cookie" {
		t.Fatalf("token = %q, want %q", got, "from-cookie")
	}

	headerOnly := httptest.NewRequest("GET", "/", nil)
	headerOnly.Header.Set("Authorization", "bearer from-header")
	if got := ExtractToken(headerOnly); got != "from-header" {
		t.Fatalf("token = %q, want %q", got, "from-header")
	}

	if got := ExtractToken(httptest.NewRequest("GET", "/", nil)); got != "" {
		t.Fatalf("token = %q, want empty", got)
	}
}
