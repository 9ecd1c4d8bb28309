// Package common defines shared sentinel errors used across the storage,
// remote and service layers. Callers should use errors.Is to match them.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Remote document/blob store errors. ErrRemoteUnavailable covers
	// network/transport failures; a read path may swallow it when a local
	// result was already served.
	ErrRemoteUnavailable = errors.New("remote unavailable")
	ErrDecode            = errors.New("decode error")

	// Auth errors. ErrUnauthorized is returned when an operation needs a
	// session identity that is absent or expired.
	ErrUnauthorized = errors.New("unauthorized")

	// Validation errors on write inputs.
	ErrValidation = errors.New("validation error")
)
