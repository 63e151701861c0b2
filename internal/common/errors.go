// Package common defines shared constants and sentinel errors used across
// the security-todo components. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// Startup configuration errors (fatal, never recoverable at runtime).
	ErrKeyConfiguration = errors.New("key configuration error")

	// ErrAuthenticationFailed means the cipher rejected the record. Every
	// decryption failure collapses into this one value; a digest mismatch on
	// decrypted content is reported through the read status instead.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrMalformedRecord is returned by stores for records whose persisted
	// fields cannot be decoded or have invalid lengths. Distinct from
	// ErrorNotFound so callers can tell absence from damage.
	ErrMalformedRecord = errors.New("malformed record")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("malformed token")

	// Refresh token lifecycle errors.
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Session guard errors.
	ErrNoCredential      = errors.New("no credential")
	ErrPrincipalNotFound = errors.New("principal not found")

	// Login errors.
	ErrInvalidCredentials = errors.New("invalid login/password")
)
