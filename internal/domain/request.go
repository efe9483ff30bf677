// Package domain defines core business entities and value objects for QuillAI.
//
// The domain layer is independent of infrastructure concerns and represents pure
// business logic and data structures shared by the orchestrator, the backend
// adapters and the usage recorder.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Mode selects between whole-result and incremental delivery of a generation.
type Mode string

const (
	// ModeSync requests a single final string.
	ModeSync Mode = "sync"
	// ModeStream requests an ordered sequence of chunks.
	ModeStream Mode = "stream"
)

// GenerationRequest describes one model call. It is immutable once dispatched;
// the orchestrator builds it from the sanitized prompt and the current
// settings snapshot.
type GenerationRequest struct {
	ID         string
	Prompt     string
	ActionName string
	Mode       Mode
	ModelID    string
	APIKey     string
	CreatedAt  time.Time
}

// NewGenerationRequest stamps a request with an identifier and creation time.
func NewGenerationRequest(prompt, actionName string, mode Mode, modelID, apiKey string) GenerationRequest {
	return GenerationRequest{
		ID:         uuid.NewString(),
		Prompt:     prompt,
		ActionName: actionName,
		Mode:       mode,
		ModelID:    modelID,
		APIKey:     apiKey,
		CreatedAt:  time.Now(),
	}
}

// RedactionCategory names one class of sensitive substrings.
type RedactionCategory string

const (
	CategoryEmails RedactionCategory = "emails"
	CategoryPaths  RedactionCategory = "paths"
	CategoryTokens RedactionCategory = "tokens"
)

// CategoryCount reports how many replacements one category performed.
type CategoryCount struct {
	Category RedactionCategory
	Count    int
}

// RedactionOutcome is the result of scrubbing a prompt. When Applied is empty
// the text is byte-identical to the input and no confirmation step is needed.
type RedactionOutcome struct {
	Text    string
	Applied []CategoryCount
}

// Changed reports whether any category performed at least one replacement.
func (o RedactionOutcome) Changed() bool {
	return len(o.Applied) > 0
}
