package middleware

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/walnats"
)

type recordingMiddleware struct {
	walnats.BaseMiddleware
	starts, successes, failures int
}

func (m *recordingMiddleware) OnStart(walnats.Context) func()        { m.starts++; return nil }
func (m *recordingMiddleware) OnSuccess(walnats.OkContext) func()    { m.successes++; return nil }
func (m *recordingMiddleware) OnFailure(walnats.ErrorContext) func() { m.failures++; return nil }

func TestFrequencyDedupesWithinWindow(t *testing.T) {
	inner := &recordingMiddleware{}
	now := time.Now()
	m := NewFrequency(inner)
	m.Window = time.Minute
	m.Now = func() time.Time { return now }

	ctx := walnats.Context{ActorName: "a"}
	m.OnStart(ctx)
	m.OnStart(ctx)
	if inner.starts != 1 {
		t.Errorf("starts forwarded = %d, want 1", inner.starts)
	}

	now = now.Add(2 * time.Minute)
	m.OnStart(ctx)
	if inner.starts != 2 {
		t.Errorf("starts forwarded after the window elapsed = %d, want 2", inner.starts)
	}
}

func TestFrequencyOnFailurePerActorGate(t *testing.T) {
	inner := &recordingMiddleware{}
	now := time.Now()
	m := NewFrequency(inner)
	m.Window = time.Minute
	m.Now = func() time.Time { return now }

	errA := errors.New("boom-a")
	// errB has a different dynamic type (*fmt.wrapError) from errA
	// (*errors.errorString), which is what the per-type gate keys on.
	errB := fmt.Errorf("boom-b: %w", errA)
	ec := walnats.ErrorContext{Context: walnats.Context{ActorName: "a"}, Err: errA}
	m.OnFailure(ec)
	if inner.failures != 1 {
		t.Fatalf("first OnFailure forwarded count = %d, want 1", inner.failures)
	}

	// Same actor, same error type, still within the window: forwarded once
	// already by the per-actor gate, so a second identical failure should
	// not forward again.
	m.OnFailure(ec)
	if inner.failures != 1 {
		t.Errorf("repeat OnFailure forwarded, count = %d, want 1", inner.failures)
	}

	// A different error type on the same actor, still within the window:
	// the per-(actor, type) gate lets it through even though the per-actor
	// gate is already spent.
	ec2 := walnats.ErrorContext{Context: walnats.Context{ActorName: "a"}, Err: errB}
	m.OnFailure(ec2)
	if inner.failures != 2 {
		t.Errorf("new error type forwarded count = %d, want 2", inner.failures)
	}
}
