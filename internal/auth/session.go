package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// SessionStore defines the persistence contract for session tokens.
// Sessions have no server-side expiry: a token lives until it is revoked or
// the process restarts. The cookie max-age bounds the browser side.
type SessionStore interface {
	Save(token string) error
	Has(token string) (bool, error)
	Delete(token string) error
	Clear() error
}

// SessionOption configures a SessionManager instance.
type SessionOption func(*SessionManager)

// WithStore injects a custom SessionStore implementation.
func WithStore(store SessionStore) SessionOption {
	return func(m *SessionManager) {
		m.store = store
	}
}

// WithTokenLength sets the token length in bytes for newly created sessions.
func WithTokenLength(length int) SessionOption {
	return func(m *SessionManager) {
		if length > 0 {
			m.tokenLength = length
		}
	}
}

// SessionManager coordinates session creation and validation against a
// backing store.
type SessionManager struct {
	store        SessionStore
	tokenLength  int
	tokenFactory func(int) (string, error)
}

// NewSessionManager constructs a SessionManager with the provided options,
// defaulting to 32-byte tokens and an in-memory store.
func NewSessionManager(opts ...SessionOption) *SessionManager {
	manager := &SessionManager{
		tokenLength:  32,
		tokenFactory: generateToken,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(manager)
		}
	}
	if manager.store == nil {
		manager.store = NewMemorySessionStore()
	}
	return manager
}

// Create issues a new session token and records it in the backing store.
func (m *SessionManager) Create() (string, error) {
	token, err := m.tokenFactory(m.tokenLength)
	if err != nil {
		return "", err
	}
	if err := m.store.Save(token); err != nil {
		return "", err
	}
	return token, nil
}

// Validate reports whether the provided token denotes a live session.
func (m *SessionManager) Validate(token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return m.store.Has(token)
}

// Revoke deletes the session token from the backing store; revoking an
// unknown token is a no-op.
func (m *SessionManager) Revoke(token string) error {
	if token == "" {
		return nil
	}
	return m.store.Delete(token)
}

// RevokeAll removes every live session.
func (m *SessionManager) RevokeAll() error {
	return m.store.Clear()
}

func generateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
