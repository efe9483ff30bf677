package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStreamActive is returned when a second stream is started while one is
// still running. Streams are single-flight per orchestrator.
var ErrStreamActive = errors.New("a streaming request is already active")

// MissingCredentialsError indicates the request was refused before any backend
// was contacted because no API key was configured.
type MissingCredentialsError struct{}

func (MissingCredentialsError) Error() string {
	return "missing credentials: no API key configured"
}

// MissingModelError indicates the request was refused before any backend was
// contacted because the model id was blank.
type MissingModelError struct{}

func (MissingModelError) Error() string {
	return "missing model: no model id configured"
}

// BackendUnavailableError reports that every backend in the chain was tried
// and none produced a result.
type BackendUnavailableError struct {
	Backends []string
	ModelID  string
	Detail   string
}

func (e BackendUnavailableError) Error() string {
	msg := fmt.Sprintf("no backend available (tried %s) for model %s", strings.Join(e.Backends, ", "), e.ModelID)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// RedactionRejectedError indicates the user declined to send the redacted
// prompt. Treated as an ordinary cancellation by the UI, not a failure.
type RedactionRejectedError struct{}

func (RedactionRejectedError) Error() string {
	return "request cancelled: redacted prompt was not approved"
}

// PrivateModeBlockedError indicates private mode refused the request at the
// entry point, before sanitization.
type PrivateModeBlockedError struct{}

func (PrivateModeBlockedError) Error() string {
	return "private mode is enabled: AI requests are disabled"
}

// GenerationFailedError wraps a backend failure with the offending model id so
// the UI can surface both a summary and a detail string.
type GenerationFailedError struct {
	ModelID string
	Err     error
}

func (e GenerationFailedError) Error() string {
	return fmt.Sprintf("generation failed for model %s: %v", e.ModelID, e.Err)
}

func (e GenerationFailedError) Unwrap() error {
	return e.Err
}

// IsUserAbort reports whether err represents a user-initiated stop (redaction
// rejection or private mode) rather than a genuine failure.
func IsUserAbort(err error) bool {
	var rejected RedactionRejectedError
	var private PrivateModeBlockedError
	return errors.As(err, &rejected) || errors.As(err, &private)
}
