package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

const (
	passwordHashIterations = 120000
	passwordHashKeyLength  = 64
	passwordHashSaltLength = 16
	passwordHashAlgorithm  = "pbkdf2-sha512"
	minPasswordLength      = 8
)

// credentialRecord is the single persisted credential for a deployment.
type credentialRecord struct {
	Algorithm  string `json:"algorithm"`
	Iterations int    `json:"iterations"`
	Salt       string `json:"salt"`
	Hash       string `json:"hash"`
}

// CredentialStore persists one PBKDF2-derived password record to disk. The
// record is created once at setup and immutable thereafter; there is no
// change-password path.
type CredentialStore struct {
	mu     sync.Mutex
	path   string
	record *credentialRecord
}

// NewCredentialStore loads the credential record at path when one exists.
func NewCredentialStore(path string) (*CredentialStore, error) {
	store := &CredentialStore{path: path}
	payload, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credential record: %w", err)
	}
	var record credentialRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("parse credential record: %w", err)
	}
	store.record = &record
	return store, nil
}

// Configured reports whether a credential record exists.
func (s *CredentialStore) Configured() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record != nil
}

// Setup derives and persists the credential record for the deployment. It
// fails when a record already exists or the password is too short.
func (s *CredentialStore) Setup(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record != nil {
		return ErrAlreadyConfigured
	}

	salt := make([]byte, passwordHashSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	derived := pbkdf2.Key([]byte(password), salt, passwordHashIterations, passwordHashKeyLength, sha512.New)
	record := credentialRecord{
		Algorithm:  passwordHashAlgorithm,
		Iterations: passwordHashIterations,
		Salt:       base64.RawStdEncoding.EncodeToString(salt),
		Hash:       base64.RawStdEncoding.EncodeToString(derived),
	}
	if err := s.persist(record); err != nil {
		return err
	}
	s.record = &record
	return nil
}

// Verify re-derives the candidate password against the stored record using a
// constant-time comparison. A wrong password and a corrupt record both take
// the full derivation before failing.
func (s *CredentialStore) Verify(password string) error {
	if password == "" {
		return ErrMissingPassword
	}

	s.mu.Lock()
	record := s.record
	s.mu.Unlock()
	if record == nil {
		return ErrNotConfigured
	}

	salt, err := base64.RawStdEncoding.DecodeString(record.Salt)
	if err != nil {
		return fmt.Errorf("decode salt: %w", err)
	}
	stored, err := base64.RawStdEncoding.DecodeString(record.Hash)
	if err != nil {
		return fmt.Errorf("decode hash: %w", err)
	}
	iterations := record.Iterations
	if iterations <= 0 {
		return fmt.Errorf("invalid iteration count in credential record")
	}
	derived := pbkdf2.Key([]byte(password), salt, iterations, len(stored), sha512.New)
	if len(derived) != len(stored) || subtle.ConstantTimeCompare(derived, stored) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

// persist writes the record to a temp file in the destination directory and
// renames it into place so a crash cannot leave a partial record.
func (s *CredentialStore) persist(record credentialRecord) error {
	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credential record: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create credential directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "credentials-*.json")
	if err != nil {
		return fmt.Errorf("create temp credential file: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write credential record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close credential file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("restrict credential file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("persist credential record: %w", err)
	}
	return nil
}
