package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/quillworks/quillai/internal/domain"
)

// State names one step of the per-request lifecycle.
type State string

const (
	StateSanitizing State = "sanitizing"
	StateRejected   State = "rejected"
	StateDispatched State = "dispatched"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

// streamSession is the mutable state of one streaming request, owned
// exclusively by the orchestrator for its lifetime. At most one session is
// active per orchestrator instance.
type streamSession struct {
	request domain.GenerationRequest

	// ctx is cancelled on terminal transition to release the backend worker.
	ctx       context.Context
	cancelCtx context.CancelFunc

	// cancelRequested only ever flips from false to true; notify closes
	// alongside it so a worker blocked between chunks can observe the request.
	cancelRequested atomic.Bool
	notify          chan struct{}
	once            sync.Once
}

func newStreamSession(req domain.GenerationRequest) *streamSession {
	ctx, cancel := context.WithCancel(context.Background())
	return &streamSession{
		request:   req,
		ctx:       ctx,
		cancelCtx: cancel,
		notify:    make(chan struct{}),
	}
}

// requestCancel flags the session for cooperative cancellation. Idempotent.
func (s *streamSession) requestCancel() {
	s.once.Do(func() {
		s.cancelRequested.Store(true)
		close(s.notify)
	})
}
