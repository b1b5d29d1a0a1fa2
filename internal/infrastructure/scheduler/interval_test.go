package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestIntervalSchedulerRunsImmediatelyAndStops(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	first := make(chan struct{}, 1)
	s := NewIntervalScheduler(time.Hour, true)
	err := s.Start(context.Background(), func(time.Time) {
		runs.Add(1)
		select {
		case first <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case <-first:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if runs.Load() != 1 {
		t.Fatalf("expected a single run, got %d", runs.Load())
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("second stop should be a no-op: %v", err)
	}
}

func TestIntervalSchedulerTicks(t *testing.T) {
	t.Parallel()

	ticks := make(chan time.Time, 8)
	s := NewIntervalScheduler(10*time.Millisecond, false)
	if err := s.Start(context.Background(), func(at time.Time) {
		select {
		case ticks <- at:
		default:
		}
	}); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() { _ = s.Stop(context.Background()) }()

	for i := 0; i < 2; i++ {
		select {
		case <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d never arrived", i+1)
		}
	}
}

func TestIntervalSchedulerStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewIntervalScheduler(time.Hour, false)
	if err := s.Start(ctx, func(time.Time) {}); err != nil {
		t.Fatalf("start: %v", err)
	}
	done := s.Done()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not exit on cancel")
	}
}

func TestIntervalSchedulerRejectsBadInterval(t *testing.T) {
	t.Parallel()

	if err := NewIntervalScheduler(0, false).Start(context.Background(), func(time.Time) {}); err == nil {
		t.Fatal("expected error for zero interval")
	}
	if err := NewIntervalScheduler(0, false).Start(context.Background(), nil); err != nil {
		t.Fatalf("nil job should be a no-op, got %v", err)
	}
}
