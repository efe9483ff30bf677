// Package usage derives token/cost estimates from completed requests and
// maintains a bounded, FIFO-evicted history of usage records.
package usage

import (
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/quillworks/quillai/internal/domain"
	"github.com/quillworks/quillai/internal/ports"
)

// Recorder appends usage records and delegates persistence to a UsageStore.
// Recording is best-effort: store failures are logged and never fail the
// request that produced the record.
type Recorder struct {
	mu           sync.Mutex
	store        ports.UsageStore
	log          zerolog.Logger
	costPer1K    float64
	maxEntries   int
	previewChars int
	history      []domain.UsageRecord
}

// NewRecorder builds a recorder. Non-positive limits fall back to defaults;
// store may be nil for a purely in-memory history. When a store is supplied
// its persisted records seed the in-memory history, so Recent reflects
// earlier sessions too.
func NewRecorder(store ports.UsageStore, log zerolog.Logger, costPer1K float64, maxEntries, previewChars int) *Recorder {
	if maxEntries <= 0 {
		maxEntries = domain.DefaultHistoryMaxEntries
	}
	if previewChars <= 0 {
		previewChars = domain.DefaultPreviewChars
	}
	r := &Recorder{
		store:        store,
		log:          log,
		costPer1K:    costPer1K,
		maxEntries:   maxEntries,
		previewChars: previewChars,
	}
	if store != nil {
		persisted, err := store.Recent(maxEntries)
		if err != nil {
			log.Warn().Err(err).Msg("usage history not loaded")
			return r
		}
		// persisted is newest first; history is kept oldest first
		r.history = make([]domain.UsageRecord, 0, len(persisted))
		for i := len(persisted) - 1; i >= 0; i-- {
			r.history = append(r.history, persisted[i])
		}
	}
	return r
}

// Record derives one usage entry from a completed request and appends it,
// evicting the oldest entries beyond the cap.
func (r *Recorder) Record(actionName, prompt, response, modelID string) domain.UsageRecord {
	tokens := EstimateTokens(prompt) + EstimateTokens(response)
	record := domain.UsageRecord{
		Timestamp:         time.Now(),
		ActionName:        actionName,
		ModelID:           modelID,
		PromptCharCount:   utf8.RuneCountInString(prompt),
		ResponseCharCount: utf8.RuneCountInString(response),
		PromptPreview:     preview(prompt, r.previewChars),
		ResponsePreview:   preview(response, r.previewChars),
		EstimatedTokens:   tokens,
		EstimatedCost:     float64(tokens) / 1000 * r.costPer1K,
	}

	r.mu.Lock()
	r.history = append(r.history, record)
	if excess := len(r.history) - r.maxEntries; excess > 0 {
		r.history = append(r.history[:0:0], r.history[excess:]...)
	}
	r.mu.Unlock()

	if r.store != nil {
		if err := r.store.Append(record); err != nil {
			r.log.Warn().Err(err).Str("action", actionName).Msg("usage record not persisted")
		}
	}
	return record
}

// Recent returns up to n records, newest first. n <= 0 returns everything.
func (r *Recorder) Recent(n int) []domain.UsageRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= 0 || n > len(r.history) {
		n = len(r.history)
	}
	out := make([]domain.UsageRecord, 0, n)
	for i := len(r.history) - 1; i >= len(r.history)-n; i-- {
		out = append(out, r.history[i])
	}
	return out
}

// Len reports the current history size.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history)
}

// EstimateTokens applies the coarse character heuristic: empty text costs
// nothing, anything else at least one token. Characters are runes, not bytes,
// so multibyte text is not over-counted.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	tokens := utf8.RuneCountInString(text) / domain.CharsPerToken
	if tokens < 1 {
		return 1
	}
	return tokens
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
