package middleware

import (
	"errors"
	"testing"

	"github.com/nats-io/walnats"
)

type countingMiddleware struct {
	walnats.BaseMiddleware
	failures int
}

func (m *countingMiddleware) OnFailure(walnats.ErrorContext) func() {
	m.failures++
	return nil
}

// TestErrorThresholdForwardsAfterCrossingOverall tests the scenario of 40
// consecutive failing deliveries on one actor with every threshold set to
// 20: the wrapper should forward exactly 19 of the 40 OnFailure calls (the
// first 21 raise the counters to one past the threshold without
// forwarding, then each of the remaining 19 forwards, with the counters
// frozen once that happens).
func TestErrorThresholdForwardsAfterCrossingOverall(t *testing.T) {
	inner := &countingMiddleware{}
	m := NewErrorThreshold(inner)

	err := errors.New("boom")
	for i := 0; i < 40; i++ {
		m.OnFailure(walnats.ErrorContext{
			Context: walnats.Context{ActorName: "a"},
			Err:     err,
		})
	}

	if inner.failures != 19 {
		t.Errorf("forwarded OnFailure count = %d, want 19", inner.failures)
	}
}

func TestErrorThresholdResetsOnSuccess(t *testing.T) {
	inner := &countingMiddleware{}
	m := NewErrorThreshold(inner)
	m.Overall = 2
	m.PerActor = 2
	m.PerMessage = 0

	err := errors.New("boom")
	ec := walnats.ErrorContext{Context: walnats.Context{ActorName: "a"}, Err: err}
	m.OnFailure(ec)
	m.OnFailure(ec)
	if inner.failures != 0 {
		t.Fatalf("forwarded before threshold crossed, failures = %d", inner.failures)
	}

	m.OnSuccess(walnats.OkContext{Context: walnats.Context{ActorName: "a"}})

	m.OnFailure(ec)
	m.OnFailure(ec)
	if inner.failures != 0 {
		t.Errorf("forwarded after a success reset the counters, failures = %d, want 0", inner.failures)
	}
}

func TestErrorThresholdZeroDisablesCheck(t *testing.T) {
	inner := &countingMiddleware{}
	m := NewErrorThreshold(inner)
	m.Overall = 0
	m.PerActor = 0
	m.PerMessage = 0

	ec := walnats.ErrorContext{Context: walnats.Context{ActorName: "a"}, Err: errors.New("boom")}
	m.OnFailure(ec)

	if inner.failures != 1 {
		t.Errorf("forwarded count with all thresholds disabled = %d, want 1", inner.failures)
	}
}

func TestErrorThresholdPerMessageUsesAttempts(t *testing.T) {
	inner := &countingMiddleware{}
	m := NewErrorThreshold(inner)
	m.Overall = 0
	m.PerActor = 0
	m.PerMessage = 3

	ec := walnats.ErrorContext{
		Context: walnats.Context{ActorName: "a", NumDelivered: 4},
		Err:     errors.New("boom"),
	}
	m.OnFailure(ec)
	if inner.failures != 1 {
		t.Errorf("forwarded count for a message past its own attempt threshold = %d, want 1", inner.failures)
	}
}
