package auth

import "errors"

var (
	// ErrAlreadyConfigured indicates a credential record already exists.
	ErrAlreadyConfigured = errors.New("credentials already configured")
	// ErrNotConfigured indicates no credential record has been created yet.
	ErrNotConfigured = errors.New("credentials not configured")
	// ErrWeakPassword indicates the password is shorter than the minimum length.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrMissingPassword indicates an empty password was supplied.
	ErrMissingPassword = errors.New("password is required")
	// ErrInvalidCredentials indicates the password did not match the stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
