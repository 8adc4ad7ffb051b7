package api

import (
	"net/http"
)

type passwordRequest struct {
	Password string `json:"password"`
}

type statusResponse struct {
	Configured    bool `json:"configured"`
	Authenticated bool `json:"authenticated"`
}

// AuthStatus reports whether credentials are configured and whether the
// request carries a valid session.
func (h *Handler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "GET")
		return
	}
	authenticated := false
	if token := ExtractToken(r); token != "" {
		ok, err := h.Sessions.Validate(token)
		if err != nil {
			h.writeAuthError(w, err)
			return
		}
		authenticated = ok
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Configured:    h.Credentials.Configured(),
		Authenticated: authenticated,
	})
}

// AuthSetup creates the single credential record and logs the caller in.
func (h *Handler) AuthSetup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, "POST")
		return
	}
	var req passwordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Credentials.Setup(req.Password); err != nil {
		h.writeAuthError(w, err)
		return
	}
	token, err := h.Sessions.Create()
	if err != nil {
		h.writeAuthError(w, err)
		return
	}
	h.setSessionCookie(w, r, token)
	writeJSON(w, http.StatusCreated, statusResponse{Configured: true, Authenticated: true})
}

// AuthLogin verifies the shared password and issues a new session token.
func (h *Handler) AuthLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, "POST")
		return
	}
	var req passwordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Credentials.Verify(req.Password); err != nil {
		h.writeAuthError(w, err)
		return
	}
	token, err := h.Sessions.Create()
	if err != nil {
		h.writeAuthError(w, err)
		return
	}
	h.setSessionCookie(w, r, token)
	writeJSON(w, http.StatusOK, statusResponse{Configured: true, Authenticated: true})
}

// AuthLogout revokes the current session, if any, and clears the cookie.
// Logging out twice is a no-op.
func (h *Handler) AuthLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, "POST")
		return
	}
	if token := ExtractToken(r); token != "" {
		if err := h.Sessions.Revoke(token); err != nil {
			h.writeAuthError(w, err)
			return
		}
	}
	h.clearSessionCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}
