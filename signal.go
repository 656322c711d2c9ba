package nats

import (
	"context"
	"sync"
)

// signal is a single-shot completion that can be replaced wholesale. Used
// for the connection's "wait-for-open" handshake gate (spec.md §9): every
// failed connect attempt replaces it with a fresh one so later callers get
// a clean slate instead of observing a permanently-failed signal.
type signal struct {
	mu  sync.Mutex
	ch  chan struct{}
	err error
}

func newSignal() *signal {
	return &signal{ch: make(chan struct{})}
}

// done completes the signal with err exactly once; subsequent calls are
// no-ops.
func (s *signal) done(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.ch:
		return
	default:
	}
	s.err = err
	close(s.ch)
}

func (s *signal) isDone() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

// wait blocks until the signal completes or ctx is done, returning the
// signal's recorded error (nil on success) or ctx.Err().
func (s *signal) wait(ctx context.Context) error {
	select {
	case <-s.ch:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
