// Package apperr implements the error taxonomy described in spec §7: a
// small set of stable codes surfaced in every tool envelope, each
// carrying enough detail for a client to react without parsing message
// text.
package apperr

import (
	"errors"
	"fmt"
)

// Code is one of the stable error codes used in tool-call envelopes.
type Code string

const (
	// CodeValidation marks malformed input, reported immediately.
	CodeValidation Code = "VALIDATION_ERROR"
	// CodePointNotFound marks a get_points lookup against a missing id.
	CodePointNotFound Code = "POINT_NOT_FOUND"
	// CodeDimensionMismatch marks an embedding whose dimension differs
	// from the collection's configured dimension.
	CodeDimensionMismatch Code = "DIMENSION_MISMATCH"
	// CodeBatchLimitExceeded marks an input batch above the configured cap.
	CodeBatchLimitExceeded Code = "BATCH_LIMIT_EXCEEDED"
	// CodeVectorStoreUnavailable marks a transport/timeout failure talking
	// to the vector store; retried with bounded exponential backoff.
	CodeVectorStoreUnavailable Code = "VECTOR_STORE_UNAVAILABLE"
	// CodeEmbedFailed marks an embedding model call failure; retried once.
	CodeEmbedFailed Code = "EMBED_FAILED"
	// CodeParseFailed marks a code-grammar or Markdown parse failure; the
	// file is skipped with a warning, never aborting an indexing run.
	CodeParseFailed Code = "PARSE_FAILED"
	// CodeConfigError marks a startup configuration failure; the process
	// exits.
	CodeConfigError Code = "CONFIG_ERROR"
)

// Error is the structured error type threaded through every component
// boundary and surfaced verbatim in a tool envelope's errors array.
type Error struct {
	Code        Code
	Message     string
	Details     map[string]any
	Suggestions []string
	Cause       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by code, so errors.Is(err, apperr.New(Code, ""))
// works regardless of message or details.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an Error from an existing error, preserving it as Cause.
// Returns nil if err is nil, so it composes with early-return patterns.
func Wrap(code Code, message string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

// WithDetail attaches a key-value detail and returns the receiver for
// chaining at the construction site.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion appends an actionable suggestion for the caller.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// CodeOf extracts the Code from err, or "" if err is nil or not an *Error.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// Is reports whether err is, or wraps, an *Error with the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
