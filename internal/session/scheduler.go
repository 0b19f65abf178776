package session

import (
	"context"
	"sync"
	"time"
)

// scheduler runs delayed tasks bound to a session's lifetime. Tasks receive
// a context that is cancelled by cancelPending or stop; a task must check it
// before mutating anything.
type scheduler struct {
	mu      sync.Mutex
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

func newScheduler(parent context.Context) *scheduler {
	ctx, cancel := context.WithCancel(parent)
	return &scheduler{parent: parent, ctx: ctx, cancel: cancel}
}

// after runs fn once d has elapsed, unless cancelled first.
func (s *scheduler) after(d time.Duration, fn func(ctx context.Context)) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
			fn(ctx)
		}
	}()
}

// cancelPending drops every task scheduled so far; later tasks still run.
func (s *scheduler) cancelPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
	if s.stopped {
		return
	}
	s.ctx, s.cancel = context.WithCancel(s.parent)
}

// stop cancels everything and waits for running tasks to return.
// Must not be called while holding a lock a task may take.
func (s *scheduler) stop() {
	s.mu.Lock()
	s.stopped = true
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
}
