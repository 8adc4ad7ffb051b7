package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type createProjectRequest struct {
	Name string `json:"name"`
	Note string `json:"note"`
}

type renameRequest struct {
	Name string `json:"name"`
}

type uploadResponse struct {
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"sizeBytes"`
}

// Projects handles the project collection: GET lists, POST creates.
func (h *Handler) Projects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		projects, err := h.Library.ListProjects(r.Context())
		if err != nil {
			h.writeLibraryError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, projects)
	case http.MethodPost:
		var req createProjectRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		project, err := h.Library.CreateProject(req.Name, req.Note)
		if err != nil {
			h.writeLibraryError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, project)
	default:
		methodNotAllowed(w, r, "GET, POST")
	}
}

// ProjectByName routes /api/projects/{name}, /api/projects/{name}/upload,
// and /api/projects/{name}/demos/{file}.
func (h *Handler) ProjectByName(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.TrimPrefix(r.URL.Path, "/api/projects/")
	if trimmed == "" {
		writeError(w, http.StatusNotFound, fmt.Errorf("project name missing"))
		return
	}
	parts := strings.Split(trimmed, "/")
	name := parts[0]

	switch len(parts) {
	case 1:
		h.projectResource(w, r, name)
	case 2:
		if parts[1] == "upload" {
			h.uploadDemo(w, r, name)
			return
		}
		if parts[1] == "demos" {
			h.listDemos(w, r, name)
			return
		}
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown project resource"))
	case 3:
		if parts[1] == "demos" {
			h.demoResource(w, r, name, parts[2])
			return
		}
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown project resource"))
	default:
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown project resource"))
	}
}

func (h *Handler) projectResource(w http.ResponseWriter, r *http.Request, name string) {
	switch r.Method {
	case http.MethodPut:
		var req renameRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		project, err := h.Library.RenameProject(name, req.Name)
		if err != nil {
			h.writeLibraryError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, project)
	case http.MethodDelete:
		if err := h.Library.DeleteProject(name); err != nil {
			h.writeLibraryError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, "PUT, DELETE")
	}
}

func (h *Handler) listDemos(w http.ResponseWriter, r *http.Request, name string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "GET")
		return
	}
	demos, err := h.Library.ListDemos(name)
	if err != nil {
		h.writeLibraryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, demos)
}

func (h *Handler) demoResource(w http.ResponseWriter, r *http.Request, project, file string) {
	switch r.Method {
	case http.MethodPut:
		var req renameRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		renamed, err := h.Library.RenameDemo(project, file, req.Name)
		if err != nil {
			h.writeLibraryError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"filename": renamed})
	case http.MethodDelete:
		if err := h.Library.DeleteDemo(project, file); err != nil {
			h.writeLibraryError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, "PUT, DELETE")
	}
}

// uploadDemo streams the multipart file field into the project directory
// without buffering the whole upload in memory.
func (h *Handler) uploadDemo(w http.ResponseWriter, r *http.Request, project string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, "POST")
		return
	}
	reader, err := r.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid multipart payload"))
		return
	}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("read multipart data: %w", err))
			return
		}
		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}
		stored, written, err := h.Library.SaveDemo(project, part.FileName(), part)
		_ = part.Close()
		if err != nil {
			h.writeLibraryError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, uploadResponse{Filename: stored, SizeBytes: written})
		return
	}
	writeError(w, http.StatusBadRequest, fmt.Errorf("file field is required"))
}
