package domain

import "time"

// UsageRecord is one append-only history entry derived from a completed request.
// Previews hold the first few runes of the prompt/response so the history UI can
// show something recognizable without persisting full conversations.
type UsageRecord struct {
	Timestamp         time.Time `json:"timestamp"`
	ActionName        string    `json:"action_name"`
	ModelID           string    `json:"model_id"`
	PromptCharCount   int       `json:"prompt_char_count"`
	ResponseCharCount int       `json:"response_char_count"`
	PromptPreview     string    `json:"prompt_preview"`
	ResponsePreview   string    `json:"response_preview"`
	EstimatedTokens   int       `json:"estimated_tokens"`
	EstimatedCost     float64   `json:"estimated_cost"`
}
