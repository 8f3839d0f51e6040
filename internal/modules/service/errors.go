package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrAccessDenied covers every token/stakeholder/project mismatch. Callers
	// must not be able to tell which part of the check failed.
	ErrAccessDenied = errors.New("access denied")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
)

// TransportError wraps a failed collaborator call (store, blob storage, cache).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

func validationErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storeErr translates a repo error at the service boundary.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return &TransportError{Op: op, Err: err}
}
