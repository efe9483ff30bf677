// Package orchestrator owns the lifecycle of generation requests: the
// sanitization gate, worker dispatch, result and cancellation routing, usage
// accounting and cleanup.
//
// One background worker goroutine is spawned per dispatched request. Workers
// never touch caller-owned state directly: results, chunks and failures are
// posted to an internal event channel and delivered by a single dispatch
// goroutine (the "owning thread"), which also performs all usage-history
// mutation. Callbacks therefore arrive serialized and in order.
package orchestrator

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/quillworks/quillai/internal/domain"
	"github.com/quillworks/quillai/internal/ports"
	"github.com/quillworks/quillai/internal/redact"
)

// Adapter is the backend fallback chain surface the orchestrator drives.
type Adapter interface {
	Complete(ctx context.Context, req ports.BackendRequest) (string, error)
	Stream(ctx context.Context, req ports.BackendRequest) (<-chan ports.StreamEvent, error)
}

// UsageRecorder receives completed request texts for accounting.
type UsageRecorder interface {
	Record(actionName, prompt, response, modelID string) domain.UsageRecord
}

// StreamCallbacks receives the ordered outcome of one streaming request:
// OnChunk zero or more times, then exactly one of OnDone, OnError, OnCancel.
type StreamCallbacks struct {
	OnChunk  func(chunk string)
	OnDone   func(full string)
	OnError  func(err error)
	OnCancel func(partial string)
}

// Orchestrator coordinates generation requests against the backend adapter.
// Synchronous requests may run concurrently; streaming requests are
// single-flight per instance.
type Orchestrator struct {
	settings  ports.SettingsProvider
	adapter   Adapter
	recorder  UsageRecorder
	confirmer ports.RedactionConfirmer
	log       zerolog.Logger

	events    chan func()
	quit      chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	active *streamSession
}

// New builds an orchestrator and starts its dispatch loop. Close releases it.
func New(settings ports.SettingsProvider, adapter Adapter, recorder UsageRecorder, confirmer ports.RedactionConfirmer, log zerolog.Logger) *Orchestrator {
	o := &Orchestrator{
		settings:  settings,
		adapter:   adapter,
		recorder:  recorder,
		confirmer: confirmer,
		log:       log,
		events:    make(chan func(), 64),
		quit:      make(chan struct{}),
	}
	go o.dispatchLoop()
	return o
}

// Generate runs a synchronous request. Exactly one of onResult/onError is
// invoked, on the dispatch goroutine.
func (o *Orchestrator) Generate(prompt, actionName string, onResult func(string), onError func(error)) {
	req, err := o.prepare(prompt, actionName, domain.ModeSync)
	if err != nil {
		o.abort(actionName, err, onError)
		return
	}

	o.log.Debug().Str("action", actionName).Str("request", req.ID).Str("state", string(StateDispatched)).Msg("sync request dispatched")
	go o.runSync(req, onResult, onError)
}

// GenerateStream runs a streaming request. It returns domain.ErrStreamActive
// when another stream is still running (a programming error in the caller's
// send-affordance handling); every other outcome arrives via cb.
func (o *Orchestrator) GenerateStream(prompt, actionName string, cb StreamCallbacks) error {
	req, err := o.prepare(prompt, actionName, domain.ModeStream)
	if err != nil {
		o.abort(actionName, err, cb.OnError)
		return nil
	}

	sess := newStreamSession(req)
	o.mu.Lock()
	if o.active != nil {
		o.mu.Unlock()
		sess.cancelCtx()
		return domain.ErrStreamActive
	}
	o.active = sess
	o.mu.Unlock()

	o.log.Debug().Str("action", actionName).Str("request", req.ID).Str("state", string(StateDispatched)).Msg("stream session installed")
	go o.runStream(sess, cb)
	return nil
}

// CancelActiveStream flags the active stream for cooperative cancellation. It
// reports whether a stream was actually active. The flag is observed between
// chunk emissions, never mid-chunk, and repeated calls are no-ops.
func (o *Orchestrator) CancelActiveStream() bool {
	o.mu.Lock()
	sess := o.active
	o.mu.Unlock()
	if sess == nil {
		return false
	}
	sess.requestCancel()
	return true
}

// Close cancels any active session and stops the dispatch loop. Safe to call
// more than once.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.mu.Lock()
		if o.active != nil {
			o.active.requestCancel()
			o.active.cancelCtx()
		}
		o.mu.Unlock()
		close(o.quit)
	})
}

// prepare is the sanitization gate shared by both modes: private-mode check,
// redaction, and the confirmation step when redaction changed the prompt.
func (o *Orchestrator) prepare(prompt, actionName string, mode domain.Mode) (domain.GenerationRequest, error) {
	cfg, err := o.settings.Load(context.Background())
	if err != nil {
		return domain.GenerationRequest{}, err
	}
	if cfg.PrivateMode {
		return domain.GenerationRequest{}, domain.PrivateModeBlockedError{}
	}

	o.log.Debug().Str("action", actionName).Str("state", string(StateSanitizing)).Msg("sanitizing prompt")
	outcome := redact.Redact(prompt, redact.Options{
		Emails: cfg.Redaction.Emails,
		Paths:  cfg.Redaction.Paths,
		Tokens: cfg.Redaction.TokensEnabled(),
	})

	if outcome.Changed() && cfg.Redaction.PreviewEnabled() && o.confirmer != nil && o.confirmer.Enabled() {
		approved, err := o.confirmer.Confirm(outcome)
		if err != nil || !approved {
			o.log.Debug().Str("action", actionName).Str("state", string(StateRejected)).Msg("redacted prompt not approved")
			return domain.GenerationRequest{}, domain.RedactionRejectedError{}
		}
	}

	return domain.NewGenerationRequest(outcome.Text, actionName, mode, cfg.ModelID, cfg.APIKey), nil
}

func (o *Orchestrator) runSync(req domain.GenerationRequest, onResult func(string), onError func(error)) {
	result, err := o.adapter.Complete(context.Background(), backendRequest(req))
	if err != nil {
		o.log.Warn().Str("request", req.ID).Str("state", string(StateFailed)).Err(err).Msg("sync request failed")
		o.post(func() { invokeErr(onError, err) })
		return
	}
	o.log.Debug().Str("request", req.ID).Str("state", string(StateCompleted)).Msg("sync request completed")
	o.post(func() {
		o.recorder.Record(req.ActionName, req.Prompt, result, req.ModelID)
		if onResult != nil {
			onResult(result)
		}
	})
}

func (o *Orchestrator) runStream(sess *streamSession, cb StreamCallbacks) {
	req := sess.request
	events, err := o.adapter.Stream(sess.ctx, backendRequest(req))
	if err != nil {
		o.finishStream(sess, StateFailed, func() { invokeErr(cb.OnError, err) })
		return
	}

	var chunks []string
	for {
		select {
		case <-sess.notify:
			partial := strings.Join(chunks, "")
			o.finishStream(sess, StateCancelled, func() {
				o.recorder.Record(req.ActionName, req.Prompt, partial, req.ModelID)
				if cb.OnCancel != nil {
					cb.OnCancel(partial)
				}
			})
			return

		case ev, ok := <-events:
			if sess.cancelRequested.Load() {
				// flag won the race against the incoming event: do not emit it
				partial := strings.Join(chunks, "")
				o.finishStream(sess, StateCancelled, func() {
					o.recorder.Record(req.ActionName, req.Prompt, partial, req.ModelID)
					if cb.OnCancel != nil {
						cb.OnCancel(partial)
					}
				})
				return
			}
			if !ok {
				full := strings.Join(chunks, "")
				o.finishStream(sess, StateCompleted, func() {
					o.recorder.Record(req.ActionName, req.Prompt, full, req.ModelID)
					if cb.OnDone != nil {
						cb.OnDone(full)
					}
				})
				return
			}
			if ev.Err != nil {
				failure := domain.GenerationFailedError{ModelID: req.ModelID, Err: ev.Err}
				o.finishStream(sess, StateFailed, func() { invokeErr(cb.OnError, failure) })
				return
			}
			chunks = append(chunks, ev.Chunk)
			chunk := ev.Chunk
			o.post(func() {
				if cb.OnChunk != nil {
					cb.OnChunk(chunk)
				}
			})
		}
	}
}

// finishStream performs the terminal transition: the session is removed and
// its resources released unconditionally before the terminal callback runs,
// so a panicking callback cannot leave the session installed.
func (o *Orchestrator) finishStream(sess *streamSession, terminal State, deliver func()) {
	o.mu.Lock()
	if o.active == sess {
		o.active = nil
	}
	o.mu.Unlock()
	sess.cancelCtx()

	o.log.Debug().
		Str("request", sess.request.ID).
		Str("state", string(terminal)).
		Msg("stream session closed")
	o.post(deliver)
}

func (o *Orchestrator) abort(actionName string, err error, onError func(error)) {
	if domain.IsUserAbort(err) {
		o.log.Info().Str("action", actionName).Msg(err.Error())
	} else {
		o.log.Warn().Str("action", actionName).Err(err).Msg("request refused")
	}
	o.post(func() { invokeErr(onError, err) })
}

func (o *Orchestrator) dispatchLoop() {
	for {
		select {
		case <-o.quit:
			return
		case fn := <-o.events:
			o.invoke(fn)
		}
	}
}

func (o *Orchestrator) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error().Interface("panic", r).Msg("callback panicked")
		}
	}()
	fn()
}

func (o *Orchestrator) post(fn func()) {
	select {
	case o.events <- fn:
	case <-o.quit:
	}
}

func backendRequest(req domain.GenerationRequest) ports.BackendRequest {
	return ports.BackendRequest{
		Prompt:  req.Prompt,
		APIKey:  req.APIKey,
		ModelID: req.ModelID,
	}
}

func invokeErr(onError func(error), err error) {
	if onError != nil {
		onError(err)
	}
}
