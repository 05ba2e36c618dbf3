package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidNotification indicates a change notification without a usable
	// topology name. It is a caller contract violation and is never retried.
	ErrInvalidNotification = errors.New("invalid notification payload")

	// Processing Errors.

	// ErrUnreadable indicates a source descriptor file cannot be read.
	ErrUnreadable = errors.New("descriptor file is not readable")

	// ErrParse indicates a source descriptor file has malformed content.
	ErrParse = errors.New("descriptor parse failed")

	// ErrRender indicates a provider or descriptor could not be rendered.
	ErrRender = errors.New("render failed")

	// ErrWrite indicates an artifact could not be persisted.
	ErrWrite = errors.New("artifact write failed")
)

// ParseError describes a descriptor file that could not be parsed.
// It matches ErrParse with errors.Is.
type ParseError struct {
	// Path is the descriptor file that failed.
	Path string

	// Resource names the property being parsed, if known.
	Resource string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("parse %s (%s): %v", e.Path, e.Resource, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports ErrParse as a match so callers need not know the concrete type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
