package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation indicates the error report is missing required fields.
	ErrValidation = errors.New("missing required data")

	// ErrUpstream indicates the LLM provider answered with a non-success status.
	ErrUpstream = errors.New("llm provider error")

	// ErrTransport indicates the LLM provider could not be reached.
	ErrTransport = errors.New("llm transport error")

	// ErrTimeout indicates the LLM call exceeded its time budget.
	ErrTimeout = errors.New("llm request timed out")

	// ErrMalformedCompletion indicates a success response without usable completion text.
	ErrMalformedCompletion = errors.New("malformed llm completion")

	// ErrUnsupportedFormat indicates an unknown output format was requested.
	ErrUnsupportedFormat = errors.New("unsupported response format")
)

// ValidationError lists the required fields absent from an error report.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(e.Missing, ", "))
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UpstreamError carries the provider's raw error body for diagnostics.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", ErrUpstream, e.StatusCode, e.Body)
}

// Is reports whether target is ErrUpstream.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}
