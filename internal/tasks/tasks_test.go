package tasks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestSupervisorWaitBlocksUntilTasksFinish(t *testing.T) {
	s := New()
	var ran int32
	done := make(chan struct{})
	s.Go(context.Background(), func(ctx context.Context) {
		atomic.AddInt32(&ran, 1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
	s.Wait()

	if atomic.LoadInt32(&ran) != 1 {
		t.Errorf("ran = %d, want 1", ran)
	}
}

func TestSupervisorCancelStopsRunningTasks(t *testing.T) {
	s := New()
	started := make(chan struct{})
	s.Go(context.Background(), func(ctx context.Context) {
		close(started)
		<-ctx.Done()
	})

	<-started
	s.Cancel()
	s.Wait()
}

func TestSupervisorCancelIsIdempotent(t *testing.T) {
	s := New()
	s.Cancel()
	s.Cancel()
	s.Wait()
}

func TestSupervisorGoDerivesFromParentContext(t *testing.T) {
	s := New()
	parentCtx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	canceled := make(chan struct{})
	s.Go(parentCtx, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(canceled)
	})

	<-started
	cancel()
	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("task context was not canceled when the parent context was canceled")
	}
	s.Wait()
}
