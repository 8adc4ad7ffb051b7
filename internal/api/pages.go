package api

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"demoshelf/internal/library"
)

type projectPageData struct {
	ProjectName string
	Note        library.Note
	Demos       []library.Demo
	Projects    []library.Project
}

// Home redirects to the most-recently-updated project, or renders the empty
// state when no projects exist.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, r, "GET, HEAD")
		return
	}
	freshest, ok, err := h.Library.FreshestProject(r.Context())
	if err != nil {
		h.logger().Error("project listing failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if ok {
		http.Redirect(w, r, "/project/"+url.PathEscape(freshest.Name), http.StatusFound)
		return
	}
	h.renderPage(w, "index.html.tmpl", projectPageData{})
}

// ProjectPage renders the detail page for one project.
func (h *Handler) ProjectPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, r, "GET, HEAD")
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/project/")
	if name == "" || strings.Contains(name, "/") {
		http.NotFound(w, r)
		return
	}
	demos, err := h.Library.ListDemos(name)
	if err != nil {
		switch {
		case errors.Is(err, library.ErrNotFound):
			http.NotFound(w, r)
		case errors.Is(err, library.ErrInvalidPath):
			http.Error(w, library.ErrInvalidPath.Error(), http.StatusBadRequest)
		default:
			h.logger().Error("demo listing failed", "project", name, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	projects, err := h.Library.ListProjects(r.Context())
	if err != nil {
		h.logger().Error("project listing failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	note, err := h.Library.ProjectNote(name)
	if err != nil {
		h.logger().Warn("project note unreadable", "project", name, "error", err)
	}
	h.renderPage(w, "project.html.tmpl", projectPageData{
		ProjectName: name,
		Note:        note,
		Demos:       demos,
		Projects:    projects,
	})
}

// renderPage executes a template into a buffer first so a late failure
// cannot leave a half-written page behind a 200 status.
func (h *Handler) renderPage(w http.ResponseWriter, name string, data interface{}) {
	if h.Templates == nil {
		http.Error(w, "templates unavailable", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := h.Templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger().Error("template render failed", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
