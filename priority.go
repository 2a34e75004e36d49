package walnats

import "context"

// Priority is the scheduling priority of an Actor relative to other actors
// sharing the same global concurrency gate. Actors with a higher priority
// (lower numeric value) have a higher chance of being started earlier; the
// longer an actor waits its turn, the more its effective priority grows.
type Priority int

const (
	// PriorityHigh is dispatched ahead of PriorityNormal and PriorityLow
	// under contention.
	PriorityHigh Priority = 0
	// PriorityNormal is the default priority.
	PriorityNormal Priority = 1
	// PriorityLow is dispatched after PriorityHigh and PriorityNormal
	// under contention.
	PriorityLow Priority = 2
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// acquire acquires sem with a priority bias: for priority p, it acquires
// and immediately releases sem p times (yielding to other goroutines
// between each), then acquires and holds it for the critical section. The
// returned release func must be called exactly once to release the final
// hold. This is a coarse fairness hint, not a strict guarantee: under heavy
// contention with capacity > 1, some lower-priority waiters may still
// preempt higher-priority ones that arrived microseconds later.
func (p Priority) acquire(ctx context.Context, sem *semaphore) (release func(), err error) {
	for i := Priority(0); i < p; i++ {
		if err := sem.Acquire(ctx); err != nil {
			return nil, err
		}
		sem.Release()
		yieldToScheduler()
	}
	if err := sem.Acquire(ctx); err != nil {
		return nil, err
	}
	return sem.Release, nil
}
