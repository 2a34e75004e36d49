package walnats

import (
	"context"
	"testing"
)

func TestPriorityString(t *testing.T) {
	cases := map[Priority]string{
		PriorityHigh:   "high",
		PriorityNormal: "normal",
		PriorityLow:    "low",
		Priority(99):   "unknown",
	}
	for p, want := range cases {
		if got := p.String(); got != want {
			t.Errorf("Priority(%d).String() = %q, want %q", p, got, want)
		}
	}
}

// TestPriorityAcquireGrantsAndReleases tests that acquire eventually grants
// the semaphore for every priority level and that release frees it again.
func TestPriorityAcquireGrantsAndReleases(t *testing.T) {
	for _, p := range []Priority{PriorityHigh, PriorityNormal, PriorityLow} {
		sem := newSemaphore(1)
		release, err := p.acquire(context.Background(), sem)
		if err != nil {
			t.Fatalf("priority %v: acquire() error = %v", p, err)
		}
		if !sem.Locked() {
			t.Errorf("priority %v: semaphore not locked after acquire", p)
		}
		release()
		if sem.Locked() {
			t.Errorf("priority %v: semaphore still locked after release", p)
		}
	}
}

func TestPriorityAcquireRespectsCancellation(t *testing.T) {
	sem := newSemaphore(1)
	if err := sem.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := PriorityLow.acquire(ctx, sem); err == nil {
		t.Error("acquire() on a canceled context = nil error, want an error")
	}
}
