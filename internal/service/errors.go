package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the post or category does not exist or is not Published.
	ErrNotFound = errors.New("not found")
	// ErrValidation means a required form field is missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrConflict means a unique value (e.g. username) is already taken.
	ErrConflict = errors.New("already exists")
	// ErrInvalidCredentials means the username/password pair did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUpstream matches every *UpstreamError via errors.Is.
	ErrUpstream = errors.New("upstream service failure")
)

// UpstreamError wraps a failure of the embedding or generation service.
type UpstreamError struct {
	Service string // "embedding" or "generation"
	Cause   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s service failed: %v", e.Service, e.Cause)
}

func (e *UpstreamError) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, ErrUpstream) succeed for any UpstreamError.
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
