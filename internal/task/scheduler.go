package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/platform/clock"
	"github.com/Auroral0810/LaTexia-sub000/internal/redact"
)

// DefaultInterval is the leaderboard refresh cadence.
const DefaultInterval = 30 * time.Minute

// Config controls a Scheduler.
type Config struct {
	// Interval between the starts of consecutive ticks.
	Interval time.Duration

	// RunTimeout bounds a single cycle. Zero means Interval.
	RunTimeout time.Duration

	// Clock drives the ticker. Nil means the wall clock.
	Clock clock.Clock
}

// Scheduler fires a Job at startup and then every Interval until stopped.
type Scheduler struct {
	job    Job
	config Config
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a Scheduler for job.
func NewScheduler(job Job, config Config, logger *slog.Logger) *Scheduler {
	if job == nil {
		panic("job cannot be nil")
	}
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = config.Interval
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		job:    job,
		config: config,
		logger: logger.With(
			slog.String("component", "scheduler"),
			slog.String("job", job.Name())),
	}
}

// Start launches the scheduling goroutine and returns a function that stops
// it without waiting. Calling Start on a running Scheduler returns the
// existing stop function.
func (s *Scheduler) Start(ctx context.Context) context.CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.logger.Warn("scheduler already started")
		return s.cancel
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.logger.Info("starting periodic job",
		slog.Duration("interval", s.config.Interval))
	s.logger.Warn("periodic job is not coordinated across instances; " +
		"each running instance performs its own redundant cycles")

	go s.loop(ctx, s.done)
	return cancel
}

// Stop cancels the scheduler and waits for an in-flight cycle to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.release(done)
	s.logger.Info("periodic job stopped")
}

// release forgets the run owning done so a later Start launches a new loop.
func (s *Scheduler) release(done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == done {
		s.cancel = nil
		s.done = nil
	}
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer s.release(done)

	s.runOnce(ctx)

	ticker := s.config.Clock.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			s.runOnce(ctx)
		}
	}
}

// runOnce executes one cycle. The cycle is detached from cancellation so
// Stop drains it instead of aborting it, but it is bounded by RunTimeout.
func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.RunTimeout)
	defer cancel()

	started := time.Now()
	err := s.safeRun(runCtx)
	elapsed := time.Since(started)

	if err != nil {
		s.logger.Error("periodic job failed",
			redact.Attr(err),
			slog.Duration("elapsed", elapsed))
		return
	}
	s.logger.Debug("periodic job completed", slog.Duration("elapsed", elapsed))
}

func (s *Scheduler) safeRun(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return s.job.Run(ctx)
}
