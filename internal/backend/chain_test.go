package backend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/quillworks/quillai/internal/domain"
	"github.com/quillworks/quillai/internal/ports"
)

var testReq = ports.BackendRequest{Prompt: "hello", APIKey: "key", ModelID: "model-1"}

func TestChainCompleteFirstNonEmptyWins(t *testing.T) {
	primary := &stubBackend{name: "chat", result: "  "}
	fallback := &stubBackend{name: "legacy", result: "from legacy"}
	chain := NewChain(zerolog.Nop(), primary, fallback)

	got, err := chain.Complete(context.Background(), testReq)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "from legacy" {
		t.Fatalf("Complete() = %q, want fallback result", got)
	}
	if primary.completeCalls != 1 || fallback.completeCalls != 1 {
		t.Fatalf("expected both backends tried once, got %d/%d", primary.completeCalls, fallback.completeCalls)
	}
}

func TestChainCompleteErrorsContinueDownTheChain(t *testing.T) {
	primary := &stubBackend{name: "chat", completeErr: errors.New("boom")}
	fallback := &stubBackend{name: "legacy", result: "ok"}
	chain := NewChain(zerolog.Nop(), primary, fallback)

	got, err := chain.Complete(context.Background(), testReq)
	if err != nil || got != "ok" {
		t.Fatalf("Complete() = %q, %v", got, err)
	}
}

func TestChainCompleteAllExhausted(t *testing.T) {
	primary := &stubBackend{name: "chat", completeErr: errors.New("boom")}
	fallback := &stubBackend{name: "legacy"}
	chain := NewChain(zerolog.Nop(), primary, fallback)

	_, err := chain.Complete(context.Background(), testReq)
	var unavailable domain.BackendUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected BackendUnavailableError, got %v", err)
	}
	for _, name := range []string{"chat", "legacy"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("error should name backend %s: %v", name, err)
		}
	}
	if unavailable.ModelID != "model-1" {
		t.Fatalf("error should carry model id, got %+v", unavailable)
	}
}

func TestChainMissingCredentialsShortCircuits(t *testing.T) {
	primary := &stubBackend{name: "chat", result: "never"}
	chain := NewChain(zerolog.Nop(), primary)

	req := testReq
	req.APIKey = ""
	_, err := chain.Complete(context.Background(), req)
	var missing domain.MissingCredentialsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingCredentialsError, got %v", err)
	}
	if primary.completeCalls != 0 || primary.streamCalls != 0 {
		t.Fatal("backend must not be contacted without credentials")
	}

	if _, err := chain.Stream(context.Background(), req); !errors.As(err, &missing) {
		t.Fatalf("Stream should short-circuit too, got %v", err)
	}
}

func TestChainMissingModelShortCircuits(t *testing.T) {
	primary := &stubBackend{name: "chat", result: "never"}
	chain := NewChain(zerolog.Nop(), primary)

	req := testReq
	req.ModelID = "   "
	_, err := chain.Complete(context.Background(), req)
	var missing domain.MissingModelError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingModelError, got %v", err)
	}
	if primary.completeCalls != 0 {
		t.Fatal("backend must not be contacted without a model id")
	}
}

func TestChainStreamRelaysNativeChunks(t *testing.T) {
	primary := &stubBackend{name: "chat", chunks: []string{"he", "llo ", "world"}}
	chain := NewChain(zerolog.Nop(), primary)

	chunks, err := collect(t, chain, testReq)
	if err != nil {
		t.Fatalf("unexpected stream error: %v", err)
	}
	if got := strings.Join(chunks, ""); got != "hello world" {
		t.Fatalf("concatenated chunks = %q", got)
	}
	if primary.completeCalls != 0 {
		t.Fatal("native stream must not trigger the completion fallback")
	}
}

func TestChainStreamZeroChunksFallsBackToRechunkedComplete(t *testing.T) {
	primary := &stubBackend{name: "chat", result: "hello world foo bar"}
	chain := NewChain(zerolog.Nop(), primary)

	chunks, err := collect(t, chain, testReq)
	if err != nil {
		t.Fatalf("unexpected stream error: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected re-chunked fallback output")
	}
	joined := strings.Join(strings.Fields(strings.Join(chunks, "")), " ")
	if joined != "hello world foo bar" {
		t.Fatalf("normalized concatenation = %q", joined)
	}
}

func TestChainStreamOpenErrorFallsBack(t *testing.T) {
	primary := &stubBackend{name: "chat", streamErr: errors.New("no sse"), result: "whole result"}
	chain := NewChain(zerolog.Nop(), primary)

	chunks, err := collect(t, chain, testReq)
	if err != nil {
		t.Fatalf("unexpected stream error: %v", err)
	}
	if got := strings.Join(chunks, ""); got != "whole result" {
		t.Fatalf("fallback output = %q", got)
	}
}

func TestChainStreamErrorAfterChunksPropagates(t *testing.T) {
	primary := &stubBackend{name: "chat", chunks: []string{"partial"}, eventErr: errors.New("wire cut")}
	chain := NewChain(zerolog.Nop(), primary)

	chunks, err := collect(t, chain, testReq)
	if err == nil || !strings.Contains(err.Error(), "wire cut") {
		t.Fatalf("expected propagated stream error, got %v", err)
	}
	if len(chunks) != 1 || chunks[0] != "partial" {
		t.Fatalf("chunks before error = %v", chunks)
	}
	if primary.completeCalls != 0 {
		t.Fatal("errors after delivery must not fall back")
	}
}

func TestChainStreamFallbackFailureSurfacesAsEvent(t *testing.T) {
	primary := &stubBackend{name: "chat", completeErr: errors.New("down")}
	chain := NewChain(zerolog.Nop(), primary)

	_, err := collect(t, chain, testReq)
	var unavailable domain.BackendUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected BackendUnavailableError event, got %v", err)
	}
}

// collect consumes a stream to completion, returning chunks and the terminal
// error if one was emitted.
func collect(t *testing.T, chain *Chain, req ports.BackendRequest) ([]string, error) {
	t.Helper()
	events, err := chain.Stream(context.Background(), req)
	if err != nil {
		t.Fatalf("Stream() open error: %v", err)
	}
	var chunks []string
	for ev := range events {
		if ev.Err != nil {
			return chunks, ev.Err
		}
		chunks = append(chunks, ev.Chunk)
	}
	return chunks, nil
}

type stubBackend struct {
	name        string
	result      string
	completeErr error
	chunks      []string
	streamErr   error
	eventErr    error

	completeCalls int
	streamCalls   int
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) Complete(context.Context, ports.BackendRequest) (string, error) {
	s.completeCalls++
	return s.result, s.completeErr
}

func (s *stubBackend) Stream(ctx context.Context, _ ports.BackendRequest) (<-chan ports.StreamEvent, error) {
	s.streamCalls++
	if s.streamErr != nil {
		return nil, s.streamErr
	}
	events := make(chan ports.StreamEvent)
	go func() {
		defer close(events)
		for _, chunk := range s.chunks {
			select {
			case events <- ports.StreamEvent{Chunk: chunk}:
			case <-ctx.Done():
				return
			}
		}
		if s.eventErr != nil {
			select {
			case events <- ports.StreamEvent{Err: s.eventErr}:
			case <-ctx.Done():
			}
		}
	}()
	return events, nil
}
