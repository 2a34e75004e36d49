// Package tasks tracks fire-and-forget goroutines so a caller can cancel
// and wait for all of them during shutdown, without bounding how many run
// concurrently or imposing any ordering between them.
package tasks

import (
	"context"
	"sync"
)

// Supervisor tracks goroutines launched with Go, each given its own
// cancelable child context. Each goroutine removes itself from tracking
// when it returns; there is no periodic compaction.
type Supervisor struct {
	wg sync.WaitGroup

	mu      sync.Mutex
	cancels map[uint64]context.CancelFunc
	next    uint64
	closed  bool
}

// New returns an empty Supervisor.
func New() *Supervisor {
	return &Supervisor{cancels: map[uint64]context.CancelFunc{}}
}

// Go runs fn on a new goroutine, tracked until it returns. fn is handed a
// context derived from ctx that Cancel will cancel independently of ctx's
// own lifetime. Safe to call from multiple goroutines and after some
// tracked goroutines have already finished. Once Cancel has been called,
// Go does not run fn at all.
func (s *Supervisor) Go(ctx context.Context, fn func(context.Context)) {
	taskCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return
	}
	id := s.next
	s.next++
	s.cancels[id] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.cancels, id)
			s.mu.Unlock()
			cancel()
		}()
		fn(taskCtx)
	}()
}

// Cancel cancels every goroutine currently tracked by Go. It is idempotent
// and safe to call any number of times, including before any task has been
// started or after Wait has returned.
func (s *Supervisor) Cancel() {
	s.mu.Lock()
	s.closed = true
	cancels := make([]context.CancelFunc, 0, len(s.cancels))
	for _, cancel := range s.cancels {
		cancels = append(cancels, cancel)
	}
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// Wait blocks until every goroutine launched via Go so far has returned.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}
