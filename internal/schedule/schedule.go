// Package schedule triggers the poll cycle on a fixed interval. It preserves
// the external-scheduler contract of the original deployment: fixed cadence,
// a hard wall-clock timeout per run, and at most one run in flight.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	logx "staywatch/pkg/logx"
)

type Config struct {
	// Interval between run starts (reference deployment: 5m).
	Interval time.Duration
	// RunTimeout forcibly terminates a run that exceeds it (reference: 540s).
	RunTimeout time.Duration
}

type Service struct {
	mu  sync.Mutex
	cfg Config
	log logx.Logger

	c       *cron.Cron
	ctx     context.Context
	job     func(ctx context.Context) error
	stopped bool
}

func New(cfg Config, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{cfg: cfg, log: log}
}

// Start schedules job every cfg.Interval. Overlapping runs are skipped, not
// queued: if a run overshoots the interval the next tick is dropped.
func (s *Service) Start(ctx context.Context, job func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return errors.New("scheduler already started")
	}
	if s.cfg.Interval <= 0 {
		return errors.New("scheduler interval must be > 0")
	}

	s.ctx = ctx
	s.job = job
	return s.startLocked()
}

func (s *Service) startLocked() error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{s.log})))
	spec := fmt.Sprintf("@every %s", s.cfg.Interval)
	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return err
	}
	c.Start()
	s.c = c
	s.log.Info("scheduler started",
		logx.Duration("interval", s.cfg.Interval),
		logx.Duration("run_timeout", s.cfg.RunTimeout))
	return nil
}

func (s *Service) runOnce() {
	s.mu.Lock()
	ctx := s.ctx
	job := s.job
	timeout := s.cfg.RunTimeout
	s.mu.Unlock()
	if ctx == nil || ctx.Err() != nil || job == nil {
		return
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	err := job(runCtx)
	dur := time.Since(start)
	if err != nil {
		s.log.Error("poll run failed", logx.Err(err), logx.Duration("dur", dur))
		return
	}
	s.log.Info("poll run finished", logx.Duration("dur", dur))
}

// Apply updates the trigger config; an interval change restarts the cron.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	changed := cfg.Interval != s.cfg.Interval
	s.cfg = cfg
	c := s.c
	if c == nil || !changed {
		s.mu.Unlock()
		return
	}
	s.c = nil
	s.mu.Unlock()

	// Wait for in-flight runs with the mutex released: a tick that already
	// fired needs s.mu inside runOnce before it can finish.
	<-c.Stop().Done()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if err := s.startLocked(); err != nil {
		s.log.Error("scheduler restart failed", logx.Err(err))
	}
}

// Stop halts the trigger. The in-flight run (if any) keeps going until it
// finishes or its run context expires; ctx bounds how long we wait for it.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.stopped = true
	s.mu.Unlock()
	if c == nil {
		return
	}

	select {
	case <-c.Stop().Done():
		s.log.Info("scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out; run still in flight")
	}
}

// cronLogger adapts logx to cron.Logger so skip decisions surface in our logs.
type cronLogger struct{ log logx.Logger }

func (c cronLogger) Info(msg string, kv ...interface{}) {
	c.log.Debug("cron: "+msg, logx.Any("kv", kv))
}

func (c cronLogger) Error(err error, msg string, kv ...interface{}) {
	c.log.Error("cron: "+msg, logx.Err(err), logx.Any("kv", kv))
}
