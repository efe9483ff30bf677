// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the orchestration core and
// external adapters (infrastructure). Following the Ports and Adapters pattern,
// these interfaces keep the core independent of specific implementations like
// HTTP clients, config files or the SQLite usage store.
package ports

import (
	"context"

	"github.com/quillworks/quillai/internal/domain"
)

// SettingsProvider loads the latest settings snapshot from persistent storage.
// Implementations typically read from ~/.quillai/config.yaml.
type SettingsProvider interface {
	Load(context.Context) (domain.Settings, error)
}

// BackendRequest contains everything a backend needs for one generation call.
type BackendRequest struct {
	Prompt  string
	APIKey  string
	ModelID string
}

// StreamEvent is one item of a streamed response: an incremental chunk, or a
// terminal error. After an event with Err set, no further events follow.
type StreamEvent struct {
	Chunk string
	Err   error
}

// Backend is one interchangeable remote text-generation provider reachable
// through a uniform call shape. Complete returns the whole result; Stream
// returns a finite, non-restartable channel of events that the backend closes
// when the sequence ends. A backend without native streaming reports an error
// from Stream at open time.
type Backend interface {
	Name() string
	Complete(ctx context.Context, req BackendRequest) (string, error)
	Stream(ctx context.Context, req BackendRequest) (<-chan StreamEvent, error)
}

// RedactionConfirmer lets a user approve or decline sending a redacted prompt.
// The dialog layer of the host editor implements this; the CLI harness uses a
// terminal prompt.
type RedactionConfirmer interface {
	Confirm(outcome domain.RedactionOutcome) (bool, error)
	Enabled() bool
}

// UsageStore persists usage records on behalf of the usage recorder.
// Append failures are tolerated by the recorder (best-effort persistence).
type UsageStore interface {
	Append(domain.UsageRecord) error
	Recent(limit int) ([]domain.UsageRecord, error)
	Clear() error
}
