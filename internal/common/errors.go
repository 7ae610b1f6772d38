// Package common defines shared constants and sentinel errors used across
// the repository, service and transport layers. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Credential errors. NotConfigured means there is no PIN to check against,
	// which is reported differently from a wrong PIN.
	ErrNotConfigured        = errors.New("not configured")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrStorageUnavailable   = errors.New("storage unavailable")

	// Validation errors, raised before any cryptographic or database work.
	ErrMalformedInput = errors.New("malformed input")

	// Unlock token errors (invalid, malformed or expired).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
