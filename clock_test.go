package walnats

import (
	"context"
	"testing"
	"time"
)

func TestClockPeriodDefault(t *testing.T) {
	c := &Clock{}
	if got := c.period(); got != time.Minute {
		t.Errorf("period() = %v, want %v", got, time.Minute)
	}
	c.Period = 30 * time.Second
	if got := c.period(); got != 30*time.Second {
		t.Errorf("period() = %v, want %v", got, 30*time.Second)
	}
}

func TestClockNextBoundaryAlignsToPeriod(t *testing.T) {
	fixed := time.Date(2026, 7, 31, 10, 0, 17, 0, time.UTC)
	c := &Clock{Period: time.Minute, Now: func() time.Time { return fixed }}

	got := c.nextBoundary()
	want := time.Date(2026, 7, 31, 10, 1, 1, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("nextBoundary() = %v, want %v", got, want)
	}
}

func TestClockNextBoundaryOnExactTick(t *testing.T) {
	fixed := time.Date(2026, 7, 31, 10, 1, 0, 0, time.UTC)
	c := &Clock{Period: time.Minute, Now: func() time.Time { return fixed }}

	got := c.nextBoundary()
	want := time.Date(2026, 7, 31, 10, 2, 1, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("nextBoundary() = %v, want %v", got, want)
	}
}

func TestClockSleepUntilReturnsImmediatelyInThePast(t *testing.T) {
	c := &Clock{}
	if err := c.sleepUntil(context.Background(), time.Now().Add(-time.Hour)); err != nil {
		t.Errorf("sleepUntil() error = %v", err)
	}
}
