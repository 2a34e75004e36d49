package walnats

import (
	"context"
	"testing"
	"time"
)

// TestActorNakDelayRetrySchedule verifies the retry-schedule property from
// spec.md §8: delivery attempt i (0-indexed) is preceded by a nak delay of
// retry_delay[min(i, len-1)]. Since NumDelivered is the broker's own
// delivery count (1-indexed: it is already 1 on the very first delivery),
// the nak emitted after delivery i fails must pick retry_delay[i], i.e.
// nakDelay is indexed directly by NumDelivered rather than NumDelivered-1.
func TestActorNakDelayRetrySchedule(t *testing.T) {
	delays := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}
	event := NewEvent[string]("nak-delay-schedule")
	a := NewActor[string, struct{}](
		"nak-delay-schedule",
		event,
		func(context.Context, string) (struct{}, error) { return struct{}{}, nil },
		WithRetryDelay[string, struct{}](delays...),
	)

	cases := []struct {
		numDelivered uint64
		want         time.Duration
	}{
		{1, delays[1]}, // nak after the 1st delivery fails: gap before attempt i=1
		{2, delays[2]}, // nak after the 2nd delivery fails: gap before attempt i=2
		{3, delays[2]}, // beyond the schedule: clamp to the last entry
	}
	for _, c := range cases {
		n := c.numDelivered
		if got := a.nakDelay(&n); got != c.want {
			t.Errorf("nakDelay(NumDelivered=%d) = %v, want %v", c.numDelivered, got, c.want)
		}
	}

	if got := a.nakDelay(nil); got != delays[0] {
		t.Errorf("nakDelay(nil) = %v, want %v", got, delays[0])
	}
}

// TestActorNakDelayEmptySchedule verifies an empty retry schedule always
// naks with zero delay.
func TestActorNakDelayEmptySchedule(t *testing.T) {
	event := NewEvent[string]("nak-delay-empty")
	a := NewActor[string, struct{}](
		"nak-delay-empty",
		event,
		func(context.Context, string) (struct{}, error) { return struct{}{}, nil },
	)
	a.retryDelay = nil
	n := uint64(1)
	if got := a.nakDelay(&n); got != 0 {
		t.Errorf("nakDelay() with empty schedule = %v, want 0", got)
	}
}
