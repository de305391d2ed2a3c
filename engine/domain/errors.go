package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying pipeline failures. External-service failures
// are wrapped with one of these so callers can branch with errors.Is without
// inspecting gateway internals.
var (
	ErrEmbedding        = errors.New("embedding failure")
	ErrRetrieval        = errors.New("retrieval failure")
	ErrCompletion       = errors.New("completion failure")
	ErrUnsupportedInput = errors.New("unsupported input")
)

// ParseError reports model output that could not be parsed into the
// contractual JSON shape. Raw carries the offending text for diagnosis.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError creates a ParseError around the raw model output.
func NewParseError(raw string, err error) *ParseError {
	return &ParseError{Raw: raw, Err: err}
}
