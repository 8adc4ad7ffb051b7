package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"demoshelf/internal/auth"
	"demoshelf/internal/library"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// WriteError is an exported helper for returning JSON API errors.
func WriteError(w http.ResponseWriter, status int, err error) {
	writeError(w, status, err)
}

func decodeJSON(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

// writeLibraryError maps registry sentinel errors onto the HTTP taxonomy.
// Anything unrecognized is an internal error isolated to this response.
func (h *Handler) writeLibraryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrInvalidPath):
		writeError(w, http.StatusBadRequest, library.ErrInvalidPath)
	case errors.Is(err, library.ErrNotFound):
		writeError(w, http.StatusNotFound, library.ErrNotFound)
	case errors.Is(err, library.ErrAlreadyExists):
		writeError(w, http.StatusConflict, library.ErrAlreadyExists)
	case errors.Is(err, library.ErrNameRequired),
		errors.Is(err, library.ErrHasDemos),
		errors.Is(err, library.ErrUnsupportedType):
		writeError(w, http.StatusBadRequest, err)
	default:
		h.logger().Error("registry operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Errorf("internal error"))
	}
}

// writeAuthError maps credential and session errors onto the HTTP taxonomy.
func (h *Handler) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrMissingPassword):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, auth.ErrAlreadyConfigured):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, auth.ErrNotConfigured):
		writeError(w, http.StatusUnauthorized, ErrSetupRequired)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err)
	default:
		h.logger().Error("auth operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Errorf("internal error"))
	}
}
