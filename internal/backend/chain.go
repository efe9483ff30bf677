// Package backend implements the ordered fallback chain over interchangeable
// remote text-generation backends, in both whole-result and incremental-chunk
// forms.
package backend

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quillworks/quillai/internal/domain"
	"github.com/quillworks/quillai/internal/ports"
)

// fallbackChunkWidth is the approximate width of re-chunked pieces when the
// primary backend produced no native stream.
const fallbackChunkWidth = 24

// Chain tries backends in a fixed order. The first backend is the primary
// SDK-style client and the only one consulted for native streaming; the rest
// are completion fallbacks. It performs no retries: a single pass over the
// list per request.
type Chain struct {
	backends []ports.Backend
	log      zerolog.Logger
}

// NewChain builds a chain over the given backends, tried in argument order.
func NewChain(log zerolog.Logger, backends ...ports.Backend) *Chain {
	return &Chain{backends: backends, log: log}
}

// Complete returns the first non-empty result in chain order. Credentials and
// model id are checked before any backend is contacted.
func (c *Chain) Complete(ctx context.Context, req ports.BackendRequest) (string, error) {
	if err := validate(req); err != nil {
		return "", err
	}

	var lastErr error
	for _, b := range c.backends {
		result, err := b.Complete(ctx, req)
		if err != nil {
			c.log.Warn().Str("backend", b.Name()).Str("model", req.ModelID).Err(err).Msg("backend attempt failed")
			lastErr = err
			continue
		}
		if strings.TrimSpace(result) != "" {
			return result, nil
		}
		c.log.Debug().Str("backend", b.Name()).Msg("backend returned empty result")
	}

	unavailable := domain.BackendUnavailableError{
		Backends: c.names(),
		ModelID:  req.ModelID,
	}
	if lastErr != nil {
		unavailable.Detail = lastErr.Error()
	}
	return "", unavailable
}

// Stream returns a finite event channel. The primary backend's native stream
// is used when it yields at least one non-empty chunk; otherwise the chain
// falls back to Complete and re-chunks the single result into whitespace-safe
// pieces, preserving the incremental-delivery illusion for the caller.
// A stream that errors before its first chunk falls through to the fallback
// the same way a zero-chunk stream does.
func (c *Chain) Stream(ctx context.Context, req ports.BackendRequest) (<-chan ports.StreamEvent, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	out := make(chan ports.StreamEvent)
	go c.pump(ctx, req, out)
	return out, nil
}

func (c *Chain) pump(ctx context.Context, req ports.BackendRequest, out chan<- ports.StreamEvent) {
	defer close(out)

	if c.streamNative(ctx, req, out) {
		return
	}

	result, err := c.Complete(ctx, req)
	if err != nil {
		send(ctx, out, ports.StreamEvent{Err: err})
		return
	}
	for _, piece := range SplitWords(result, fallbackChunkWidth) {
		if !send(ctx, out, ports.StreamEvent{Chunk: piece}) {
			return
		}
	}
}

// streamNative relays the primary backend's native stream. It reports whether
// the stream was consumed (at least one non-empty chunk was delivered, or it
// terminated after delivery); false means the caller should fall back.
func (c *Chain) streamNative(ctx context.Context, req ports.BackendRequest, out chan<- ports.StreamEvent) bool {
	if len(c.backends) == 0 {
		return false
	}
	primary := c.backends[0]

	events, err := primary.Stream(ctx, req)
	if err != nil {
		c.log.Debug().Str("backend", primary.Name()).Err(err).Msg("native streaming unavailable, falling back")
		return false
	}

	delivered := false
	for ev := range events {
		if ev.Err != nil {
			if delivered {
				send(ctx, out, ev)
				return true
			}
			c.log.Debug().Str("backend", primary.Name()).Err(ev.Err).Msg("stream failed before first chunk, falling back")
			go drain(events)
			return false
		}
		if ev.Chunk == "" {
			continue
		}
		delivered = true
		if !send(ctx, out, ev) {
			go drain(events)
			return true
		}
	}
	return delivered
}

func (c *Chain) names() []string {
	names := make([]string, 0, len(c.backends))
	for _, b := range c.backends {
		names = append(names, b.Name())
	}
	return names
}

func validate(req ports.BackendRequest) error {
	if req.APIKey == "" {
		return domain.MissingCredentialsError{}
	}
	if strings.TrimSpace(req.ModelID) == "" {
		return domain.MissingModelError{}
	}
	return nil
}

func send(ctx context.Context, out chan<- ports.StreamEvent, ev ports.StreamEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func drain(events <-chan ports.StreamEvent) {
	for range events {
	}
}
