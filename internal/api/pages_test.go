package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func seedProjectWithDemo(t *testing.T, handler *Handler, project, file string, modified time.Time) {
	t.Helper()
	if _, _, err := handler.Library.SaveDemo(project, file, strings.NewReader("RIFF")); err != nil {
		t.Fatalf("SaveDemo: %v", err)
	}
	path := filepath.Join(handler.Library.Root(), project, file)
	if err := os.Chtimes(path, modified, modified); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

func TestHomeEmptyState(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.Home(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No projects yet") {
		t.Fatalf("body = %q, want empty state", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Fatalf("Content-Type = %q, want text/html", got)
	}
}

func TestHomeRedirectsToFreshestProject(t *testing.T) {
	handler := newTestHandler(t)
	seedProjectWithDemo(t, handler, "stale", "a.wav", time.Now().Add(-time.Hour))
	seedProjectWithDemo(t, handler, "fresh one", "b.wav", time.Now())

	rec := httptest.NewRecorder()
	handler.Home(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/project/fresh%20one" {
		t.Fatalf("Location = %q, want escaped project path", got)
	}
}

func TestHomeUnknownPath(t *testing.T) {
	handler := newTestHandler(t)
	rec := httptest.NewRecorder()
	handler.Home(rec, httptest.NewRequest("GET", "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestProjectPage(t *testing.T) {
	handler := newTestHandler(t)
	if _, err := handler.Library.CreateProject("mix", "late night takes"); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	seedProjectWithDemo(t, handler, "mix", "final.wav", time.Now())

	rec := httptest.NewRecorder()
	handler.ProjectPage(rec, httptest.NewRequest("GET", "/project/mix", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"late night takes", "final", "/music/mix/final.wav"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func TestProjectPageErrors(t *testing.T) {
	handler := newTestHandler(t)

	cases := []struct {
		name string
		path string
		want int
	}{
		{name: "missing project", path: "/project/ghost", want: http.StatusNotFound},
		{name: "empty name", path: "/project/", want: http.StatusNotFound},
		{name: "nested path", path: "/project/a/b", want: http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ProjectPage(rec, httptest.NewRequest("GET", tc.path, nil))
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/project/x", nil)
	req.URL.Path = "/project/.."
	handler.ProjectPage(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("traversal status = %d, want 400", rec.Code)
	}
}
