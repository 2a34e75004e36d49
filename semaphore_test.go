package walnats

import (
	"context"
	"testing"
	"time"
)

func TestSemaphoreAcquireRelease(t *testing.T) {
	s := newSemaphore(2)
	if s.Locked() {
		t.Fatal("Locked() = true on a fresh semaphore with capacity")
	}
	if err := s.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if s.Locked() {
		t.Error("Locked() = true with one of two permits taken")
	}
	if err := s.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if !s.Locked() {
		t.Error("Locked() = false with no permits remaining")
	}
	s.Release()
	if s.Locked() {
		t.Error("Locked() = true after releasing a permit")
	}
}

func TestSemaphoreReleaseWithoutAcquirePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Release() on a full semaphore did not panic")
		}
	}()
	newSemaphore(1).Release()
}

func TestSemaphoreAcquireBlocksUntilContextDone(t *testing.T) {
	s := newSemaphore(1)
	if err := s.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := s.Acquire(ctx); err == nil {
		t.Error("Acquire() on an exhausted semaphore with a short deadline = nil error")
	}
}

func TestWaitForPermitDoesNotConsumeAPermit(t *testing.T) {
	s := newSemaphore(1)
	if err := waitForPermit(context.Background(), s); err != nil {
		t.Fatalf("waitForPermit() error = %v", err)
	}
	if s.Locked() {
		t.Error("waitForPermit() left the semaphore locked on an unlocked semaphore")
	}

	if err := s.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- waitForPermit(context.Background(), s) }()

	select {
	case <-done:
		t.Fatal("waitForPermit() returned before the permit was released")
	case <-time.After(20 * time.Millisecond):
	}
	s.Release()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("waitForPermit() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waitForPermit() did not return after the permit became available")
	}
	if s.Locked() {
		t.Error("waitForPermit() should not consume the permit it waited for")
	}
}
