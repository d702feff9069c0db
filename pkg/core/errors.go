package core

import "fmt"

// Error is the canonical error shape for the conversation core.
type Error struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Param     string    `json:"param,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Upstream  any       `json:"upstream_error,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorType categorizes errors.
type ErrorType string

const (
	// ErrInvalidInput means the submission itself was unusable (neither
	// audio nor text, oversized payload). Terminal; no upstream call made.
	ErrInvalidInput ErrorType = "invalid_input_error"

	// ErrTransport means an upstream API call failed (network, non-2xx,
	// missing credential). Surfaced to the caller without retry.
	ErrTransport ErrorType = "transport_error"

	// ErrParse means the model reply was not the expected structured
	// record. Always recovered internally; callers never observe it.
	ErrParse ErrorType = "parse_error"

	// ErrTranslationUnavailable means a secondary translation call failed.
	// Non-fatal; the affected field degrades to a placeholder or empty.
	ErrTranslationUnavailable ErrorType = "translation_unavailable"

	// ErrSessionBusy means a submission arrived while a previous turn was
	// still in flight on the same session.
	ErrSessionBusy ErrorType = "session_busy_error"

	// ErrRateLimit means the client exceeded the gateway's request limits.
	ErrRateLimit ErrorType = "rate_limit_error"
)

// NewInvalidInputError creates an invalid input error.
func NewInvalidInputError(message string) *Error {
	return &Error{
		Type:    ErrInvalidInput,
		Message: message,
	}
}

// NewInvalidInputErrorWithParam creates an invalid input error tied to a
// request field.
func NewInvalidInputErrorWithParam(message, param string) *Error {
	return &Error{
		Type:    ErrInvalidInput,
		Message: message,
		Param:   param,
	}
}

// NewTransportError wraps an upstream failure.
func NewTransportError(upstream string, underlying error) *Error {
	return &Error{
		Type:     ErrTransport,
		Message:  fmt.Sprintf("%s: %v", upstream, underlying),
		Upstream: underlying.Error(),
	}
}

// NewParseError creates a parse error for a malformed model reply.
func NewParseError(message string) *Error {
	return &Error{
		Type:    ErrParse,
		Message: message,
	}
}

// NewTranslationUnavailableError wraps a failed secondary translation.
func NewTranslationUnavailableError(underlying error) *Error {
	return &Error{
		Type:     ErrTranslationUnavailable,
		Message:  fmt.Sprintf("translation unavailable: %v", underlying),
		Upstream: underlying.Error(),
	}
}

// NewSessionBusyError creates a session busy error.
func NewSessionBusyError() *Error {
	return &Error{
		Type:    ErrSessionBusy,
		Message: "a previous turn is still in flight",
	}
}

// Unwrap returns the underlying error for error wrapping.
func (e *Error) Unwrap() error {
	if ue, ok := e.Upstream.(error); ok {
		return ue
	}
	return nil
}
