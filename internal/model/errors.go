package model

import (
	"errors"
	"fmt"
)

// Caller-visible error kinds. Every error returned by the vault service
// resolves to exactly one of them through Kind.
var (
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrDecryptionFailed      = errors.New("decryption failed")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// ErrConflict is reported by stores when a key already exists. It never leaves the service.
var ErrConflict = errors.New("already exists")

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap makes errors.Is(err, ErrInvalidInput) hold.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Kind classifies err into one of the caller-visible kinds. Anything
// unrecognised is reported as ErrDependencyUnavailable.
func Kind(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUnauthenticated):
		return ErrUnauthenticated
	case errors.Is(err, ErrInvalidInput):
		return ErrInvalidInput
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrDecryptionFailed):
		return ErrDecryptionFailed
	default:
		return ErrDependencyUnavailable
	}
}

// KindName returns a short stable name for the kind of err, used in logs and metrics.
func KindName(err error) string {
	switch Kind(err) {
	case nil:
		return "ok"
	case ErrUnauthenticated:
		return "unauthenticated"
	case ErrInvalidInput:
		return "invalid_input"
	case ErrNotFound:
		return "not_found"
	case ErrDecryptionFailed:
		return "decryption_failed"
	default:
		return "dependency_unavailable"
	}
}
