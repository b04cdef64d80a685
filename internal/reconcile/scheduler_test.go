package reconcile

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func blockingLoop(started chan<- string, stopped *atomic.Int32, name string) func(context.Context) error {
	return func(ctx context.Context) error {
		started <- name
		<-ctx.Done()
		stopped.Add(1)
		return ctx.Err()
	}
}

func waitFor(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for loop")
		return ""
	}
}

func TestSchedulerStartReplacesRunningLoop(t *testing.T) {
	s := NewScheduler()
	started := make(chan string, 2)
	var stopped atomic.Int32

	s.Start(context.Background(), "g1", blockingLoop(started, &stopped, "first"))
	waitFor(t, started)

	s.Start(context.Background(), "g1", blockingLoop(started, &stopped, "second"))
	if stopped.Load() != 1 {
		t.Fatalf("expected first loop stopped before replacement, got %d", stopped.Load())
	}
	if got := waitFor(t, started); got != "second" {
		t.Fatalf("expected second loop, got %s", got)
	}
	if !s.Running("g1") {
		t.Fatalf("expected g1 running")
	}

	s.Stop("g1")
	if stopped.Load() != 2 || s.Running("g1") {
		t.Fatalf("expected all loops stopped")
	}
}

func TestSchedulerStopAll(t *testing.T) {
	s := NewScheduler()
	started := make(chan string, 3)
	var stopped atomic.Int32
	for _, id := range []string{"a", "b", "c"} {
		s.Start(context.Background(), id, blockingLoop(started, &stopped, id))
		waitFor(t, started)
	}

	s.StopAll()
	if stopped.Load() != 3 {
		t.Fatalf("expected 3 stopped loops, got %d", stopped.Load())
	}
	for _, id := range []string{"a", "b", "c"} {
		if s.Running(id) {
			t.Fatalf("%s still running", id)
		}
	}
	s.Stop("missing")
}

func TestSchedulerForgetsFinishedLoops(t *testing.T) {
	s := NewScheduler()
	s.Start(context.Background(), "done", func(ctx context.Context) error { return nil })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for s.Running("done") {
		if time.Now().After(deadline) {
			t.Fatalf("finished loop still registered")
		}
		time.Sleep(time.Millisecond)
	}
}
