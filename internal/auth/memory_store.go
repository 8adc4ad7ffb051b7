package auth

import "sync"

// MemorySessionStore keeps session tokens in-memory. It is safe for
// concurrent use; restarts invalidate every session by construction.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]struct{}
}

// NewMemorySessionStore constructs an in-memory store implementation.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]struct{})}
}

// Save records the session token.
func (s *MemorySessionStore) Save(token string) error {
	s.mu.Lock()
	s.sessions[token] = struct{}{}
	s.mu.Unlock()
	return nil
}

// Has reports whether the token denotes a live session.
func (s *MemorySessionStore) Has(token string) (bool, error) {
	s.mu.RLock()
	_, ok := s.sessions[token]
	s.mu.RUnlock()
	return ok, nil
}

// Delete removes the session token from the store.
func (s *MemorySessionStore) Delete(token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// Clear removes every session from the store.
func (s *MemorySessionStore) Clear() error {
	s.mu.Lock()
	s.sessions = make(map[string]struct{})
	s.mu.Unlock()
	return nil
}

// Len reports the number of live sessions, for tests.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
