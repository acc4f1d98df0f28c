package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/platform/clock"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

const waitTimeout = 2 * time.Second

func waitSignal[T any](t *testing.T, ch <-chan T, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func assertNoSignal[T any](t *testing.T, ch <-chan T, what string) {
	t.Helper()
	select {
	case <-ch:
		t.Fatalf("unexpected %s", what)
	case <-time.After(50 * time.Millisecond):
	}
}

func countingJob(runs chan<- struct{}, err error) Job {
	return JobFunc{JobName: "counting", Fn: func(context.Context) error {
		runs <- struct{}{}
		return err
	}}
}

func TestScheduler_FiresAtStartupThenEveryInterval(t *testing.T) {
	clk := clock.NewFake(epoch)
	runs := make(chan struct{}, 10)
	log, _ := logger.NewTestLogger()

	s := NewScheduler(countingJob(runs, nil), Config{Interval: time.Minute, Clock: clk}, log)
	s.Start(context.Background())
	defer s.Stop()

	waitSignal(t, runs, "startup run")
	waitSignal(t, clk.TickerCreated(), "ticker")
	assertNoSignal(t, runs, "run before first tick")

	clk.Advance(time.Minute)
	waitSignal(t, runs, "first tick run")

	clk.Advance(30 * time.Second)
	assertNoSignal(t, runs, "run before interval elapsed")

	clk.Advance(30 * time.Second)
	waitSignal(t, runs, "second tick run")
}

func TestScheduler_JobErrorsAreLoggedAndSchedulingContinues(t *testing.T) {
	clk := clock.NewFake(epoch)
	runs := make(chan struct{}, 10)
	log, buf := logger.NewTestLogger()

	s := NewScheduler(countingJob(runs, errors.New("window failed")),
		Config{Interval: time.Minute, Clock: clk}, log)
	s.Start(context.Background())

	waitSignal(t, runs, "startup run")
	waitSignal(t, clk.TickerCreated(), "ticker")
	clk.Advance(time.Minute)
	waitSignal(t, runs, "tick run after failure")
	s.Stop()

	assert.Contains(t, buf.String(), "periodic job failed")
	assert.Contains(t, buf.String(), "window failed")
}

func TestScheduler_RecoversFromPanickingJob(t *testing.T) {
	clk := clock.NewFake(epoch)
	var calls atomic.Int32
	runs := make(chan struct{}, 10)
	log, buf := logger.NewTestLogger()

	job := JobFunc{JobName: "panicky", Fn: func(context.Context) error {
		runs <- struct{}{}
		if calls.Add(1) == 1 {
			panic("boom")
		}
		return nil
	}}

	s := NewScheduler(job, Config{Interval: time.Minute, Clock: clk}, log)
	s.Start(context.Background())

	waitSignal(t, runs, "startup run")
	waitSignal(t, clk.TickerCreated(), "ticker")
	clk.Advance(time.Minute)
	waitSignal(t, runs, "run after panic")
	s.Stop()

	assert.Equal(t, int32(2), calls.Load())
	assert.Contains(t, buf.String(), "job panicked: boom")
}

func TestScheduler_StopWaitsForInFlightCycle(t *testing.T) {
	clk := clock.NewFake(epoch)
	entered := make(chan struct{})
	release := make(chan struct{})
	var runErr atomic.Value
	log, _ := logger.NewTestLogger()

	job := JobFunc{JobName: "slow", Fn: func(ctx context.Context) error {
		close(entered)
		<-release
		runErr.Store(ctx.Err() == nil)
		return nil
	}}

	s := NewScheduler(job, Config{Interval: time.Minute, Clock: clk}, log)
	s.Start(context.Background())
	waitSignal(t, entered, "job start")

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	assertNoSignal(t, stopped, "stop before the cycle finished")
	close(release)
	waitSignal(t, stopped, "stop")

	assert.Equal(t, true, runErr.Load(), "in-flight cycle must not be cancelled by Stop")
}

func TestScheduler_CyclesNeverOverlap(t *testing.T) {
	clk := clock.NewFake(epoch)
	var active, maxActive, total atomic.Int32
	release := make(chan struct{})
	entered := make(chan struct{}, 10)
	log, _ := logger.NewTestLogger()

	job := JobFunc{JobName: "overlap", Fn: func(context.Context) error {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		total.Add(1)
		entered <- struct{}{}
		<-release
		active.Add(-1)
		return nil
	}}

	s := NewScheduler(job, Config{Interval: time.Minute, Clock: clk}, log)
	s.Start(context.Background())
	waitSignal(t, entered, "startup run")

	// The ticker is armed only after the startup cycle returns, so release it
	// first and then pile up ticks while the next cycle is blocked.
	release <- struct{}{}
	waitSignal(t, clk.TickerCreated(), "ticker")
	clk.Advance(time.Minute)
	waitSignal(t, entered, "tick run")
	clk.Advance(time.Minute)
	clk.Advance(time.Minute)
	clk.Advance(time.Minute)

	close(release)
	s.Stop()

	assert.Equal(t, int32(1), maxActive.Load())
	assert.LessOrEqual(t, total.Load(), int32(3))
}

func TestScheduler_StartTwiceReturnsExistingStop(t *testing.T) {
	clk := clock.NewFake(epoch)
	runs := make(chan struct{}, 10)
	log, buf := logger.NewTestLogger()

	s := NewScheduler(countingJob(runs, nil), Config{Interval: time.Minute, Clock: clk}, log)
	stop := s.Start(context.Background())
	require.NotNil(t, stop)
	again := s.Start(context.Background())
	require.NotNil(t, again)

	waitSignal(t, runs, "startup run")
	s.Stop()

	assert.Contains(t, buf.String(), "scheduler already started")
	assertNoSignal(t, runs, "second scheduling goroutine")
}

func TestScheduler_StopFunctionCancelsLoop(t *testing.T) {
	clk := clock.NewFake(epoch)
	runs := make(chan struct{}, 10)
	log, _ := logger.NewTestLogger()

	s := NewScheduler(countingJob(runs, nil), Config{Interval: time.Minute, Clock: clk}, log)
	stop := s.Start(context.Background())
	waitSignal(t, runs, "startup run")
	waitSignal(t, clk.TickerCreated(), "ticker")

	stop()
	s.Stop()

	clk.Advance(time.Minute)
	assertNoSignal(t, runs, "run after stop")
}

func TestScheduler_RestartsAfterStop(t *testing.T) {
	clk := clock.NewFake(epoch)
	runs := make(chan struct{}, 10)
	log, buf := logger.NewTestLogger()

	s := NewScheduler(countingJob(runs, nil), Config{Interval: time.Minute, Clock: clk}, log)
	s.Start(context.Background())
	waitSignal(t, runs, "first startup run")
	waitSignal(t, clk.TickerCreated(), "first ticker")
	s.Stop()

	s.Start(context.Background())
	waitSignal(t, runs, "startup run after restart")
	waitSignal(t, clk.TickerCreated(), "ticker after restart")

	clk.Advance(time.Minute)
	waitSignal(t, runs, "tick run after restart")
	s.Stop()

	assert.NotContains(t, buf.String(), "scheduler already started")
}

func TestScheduler_RestartsAfterStopFunction(t *testing.T) {
	clk := clock.NewFake(epoch)
	runs := make(chan struct{}, 10)
	log, _ := logger.NewTestLogger()

	s := NewScheduler(countingJob(runs, nil), Config{Interval: time.Minute, Clock: clk}, log)
	stop := s.Start(context.Background())
	waitSignal(t, runs, "first startup run")
	waitSignal(t, clk.TickerCreated(), "first ticker")
	stop()
	s.Stop()

	restarted := s.Start(context.Background())
	defer s.Stop()
	waitSignal(t, runs, "startup run after restart")

	restarted()
	s.Stop()
	clk.Advance(time.Minute)
	assertNoSignal(t, runs, "run after second stop")
}

func TestScheduler_StopWithoutStartIsNoop(t *testing.T) {
	s := NewScheduler(countingJob(make(chan struct{}, 1), nil), Config{}, nil)
	s.Stop()
	assert.Equal(t, DefaultInterval, s.config.Interval)
	assert.Equal(t, DefaultInterval, s.config.RunTimeout)
}

func TestScheduler_StartupWarnsAboutUncoordinatedInstances(t *testing.T) {
	clk := clock.NewFake(epoch)
	runs := make(chan struct{}, 10)
	log, buf := logger.NewTestLogger()

	s := NewScheduler(countingJob(runs, nil), Config{Interval: time.Minute, Clock: clk}, log)
	s.Start(context.Background())
	waitSignal(t, runs, "startup run")
	s.Stop()

	entries, err := buf.Entries()
	require.NoError(t, err)

	var warned bool
	for _, e := range entries {
		if e["level"] == "WARN" && e["job"] == "counting" {
			warned = true
		}
	}
	assert.True(t, warned)
}
