// Package common defines shared constants and sentinel errors used across
// the storage, service and transport layers of NoteKeeper. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound          = errors.New("not found")
	ErrorDuplicateIdentity = errors.New("duplicate identity")

	// Service-level errors.
	ErrorUnauthenticated    = errors.New("unauthenticated")
	ErrorInvalidCredentials = errors.New("invalid credentials")

	// Validation errors.
	ErrorInvalidInput = errors.New("invalid input")

	// Token errors (malformed, tampered or expired).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Identity fields that must be unique across users.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
)

// DuplicateError names the identity field that collided. It matches
// ErrorDuplicateIdentity under errors.Is.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return ErrorDuplicateIdentity.Error() + ": " + e.Field
}

func (e *DuplicateError) Unwrap() error {
	return ErrorDuplicateIdentity
}
