// Package common defines shared constants and sentinel errors used across
// the identity core. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrNotFound      = errors.New("not found")
	ErrEmailTaken    = errors.New("email already taken")
	ErrUsernameTaken = errors.New("username already taken")

	// Authentication errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInactive     = errors.New("account is deactivated")

	// Validation errors.
	ErrValidation = errors.New("validation error")

	// Internal flow control.
	ErrInternal = errors.New("internal error")
)
