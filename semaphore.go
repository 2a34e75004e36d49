package walnats

import "context"

// semaphore is a counting semaphore implemented on a buffered channel of
// tokens, used by the subscriber runtime's concurrency gates (poll,
// per-actor, global, and the thread- and process-pool gates). Unlike sync.WaitGroup or golang.org/x/sync/semaphore,
// it exposes a non-blocking Locked check mirroring asyncio.Semaphore.locked,
// which the backpressure-wait step in the pull loop relies on.
type semaphore struct {
	tokens chan struct{}
}

func newSemaphore(n int) *semaphore {
	if n < 1 {
		n = 1
	}
	s := &semaphore{tokens: make(chan struct{}, n)}
	for i := 0; i < n; i++ {
		s.tokens <- struct{}{}
	}
	return s
}

// Acquire blocks until a permit is available or ctx is done.
func (s *semaphore) Acquire(ctx context.Context) error {
	select {
	case <-s.tokens:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a permit to the semaphore.
func (s *semaphore) Release() {
	select {
	case s.tokens <- struct{}{}:
	default:
		panic("walnats: semaphore released more times than acquired")
	}
}

// Locked reports whether no permit is immediately available.
func (s *semaphore) Locked() bool {
	return len(s.tokens) == 0
}

// waitForPermit blocks until a permit is about to be available, then
// immediately releases it without holding it. This is the "backpressure
// wait" step of the pull loop: it prevents polling new messages while the
// process has no spare capacity to handle them, without actually consuming
// a permit that an already-decoded message needs.
func waitForPermit(ctx context.Context, s *semaphore) error {
	if !s.Locked() {
		return nil
	}
	if err := s.Acquire(ctx); err != nil {
		return err
	}
	s.Release()
	return nil
}
