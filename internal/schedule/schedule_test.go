package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	logx "staywatch/pkg/logx"
)

func TestStartRequiresInterval(t *testing.T) {
	t.Parallel()
	s := New(Config{}, logx.Nop())
	err := s.Start(context.Background(), func(ctx context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected error for zero interval")
	}
}

func TestStartTwice(t *testing.T) {
	t.Parallel()
	s := New(Config{Interval: time.Hour}, logx.Nop())
	job := func(ctx context.Context) error { return nil }

	if err := s.Start(context.Background(), job); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop(context.Background())

	if err := s.Start(context.Background(), job); err == nil {
		t.Fatal("expected error on second Start")
	}
}

func TestRunOnceAppliesTimeout(t *testing.T) {
	t.Parallel()
	s := New(Config{Interval: time.Hour, RunTimeout: 10 * time.Millisecond}, logx.Nop())

	var sawDeadline atomic.Bool
	s.mu.Lock()
	s.ctx = context.Background()
	s.job = func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); ok {
			sawDeadline.Store(true)
		}
		return nil
	}
	s.mu.Unlock()

	s.runOnce()
	if !sawDeadline.Load() {
		t.Fatal("run context must carry the run timeout deadline")
	}
}

func TestRunOnceSkipsWhenParentDone(t *testing.T) {
	t.Parallel()
	s := New(Config{Interval: time.Hour}, logx.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	s.mu.Lock()
	s.ctx = ctx
	s.job = func(ctx context.Context) error {
		ran.Store(true)
		return nil
	}
	s.mu.Unlock()

	s.runOnce()
	if ran.Load() {
		t.Fatal("job must not run after shutdown")
	}
}

func TestStopIdempotent(t *testing.T) {
	t.Parallel()
	s := New(Config{Interval: time.Hour}, logx.Nop())
	if err := s.Start(context.Background(), func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop(context.Background())
	s.Stop(context.Background())
}

func TestApplyDoesNotBlockInFlightTicks(t *testing.T) {
	t.Parallel()
	s := New(Config{Interval: time.Second}, logx.Nop())

	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	job := func(ctx context.Context) error {
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
		return nil
	}
	if err := s.Start(context.Background(), job); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop(context.Background())

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first run never started")
	}

	// Restart the cron (interval change) while the first run is still in
	// flight. Apply has to wait for that run, but must do so without the
	// mutex held.
	applyDone := make(chan struct{})
	go func() {
		s.Apply(Config{Interval: 2 * time.Second})
		close(applyDone)
	}()
	time.Sleep(100 * time.Millisecond)

	// A tick launched before Apply stopped the cron still needs the mutex to
	// snapshot its state; it must not wedge behind Apply.
	tickDone := make(chan struct{})
	go func() {
		s.runOnce()
		close(tickDone)
	}()
	select {
	case <-tickDone:
	case <-time.After(2 * time.Second):
		t.Fatal("tick blocked behind Apply")
	}

	close(release)
	select {
	case <-applyDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Apply did not return after the run finished")
	}
}

func TestApplyAfterStopDoesNotRestart(t *testing.T) {
	t.Parallel()
	s := New(Config{Interval: time.Hour}, logx.Nop())
	if err := s.Start(context.Background(), func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop(context.Background())

	s.Apply(Config{Interval: 2 * time.Hour})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		t.Fatal("Apply must not revive a stopped scheduler")
	}
}

func TestApplyKeepsRunTimeoutWithoutRestart(t *testing.T) {
	t.Parallel()
	s := New(Config{Interval: time.Hour, RunTimeout: time.Minute}, logx.Nop())
	if err := s.Start(context.Background(), func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop(context.Background())

	s.Apply(Config{Interval: time.Hour, RunTimeout: 2 * time.Minute})

	s.mu.Lock()
	got := s.cfg.RunTimeout
	s.mu.Unlock()
	if got != 2*time.Minute {
		t.Fatalf("run timeout = %v, want updated value", got)
	}
}
