// Package clock abstracts wall time and tickers so schedulers and services
// can be driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Ticker delivers ticks on C until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock is the time source used by services and the worker scheduler.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct{ t *time.Ticker }

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// Fake is a manually advanced Clock. Tickers fire only from Advance.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
	created chan struct{}
}

// NewFake returns a Fake clock reading now.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now, created: make(chan struct{}, 16)}
}

// Now implements Clock.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// NewTicker implements Clock.
func (f *Fake) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("non-positive interval for NewTicker")
	}
	f.mu.Lock()
	t := &fakeTicker{c: make(chan time.Time, 1), period: d, next: f.now.Add(d)}
	f.tickers = append(f.tickers, t)
	f.mu.Unlock()

	select {
	case f.created <- struct{}{}:
	default:
	}
	return t
}

// TickerCreated is signalled each time NewTicker is called, letting tests
// wait until a goroutine has armed its ticker before advancing.
func (f *Fake) TickerCreated() <-chan struct{} { return f.created }

// Advance moves the clock forward and fires every ticker whose deadline was
// crossed. Like time.Ticker, a tick is dropped if the previous one is unread.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	now := f.now
	tickers := make([]*fakeTicker, len(f.tickers))
	copy(tickers, f.tickers)
	f.mu.Unlock()

	for _, t := range tickers {
		t.fire(now)
	}
}

type fakeTicker struct {
	c       chan time.Time
	period  time.Duration
	mu      sync.Mutex
	next    time.Time
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *fakeTicker) fire(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || now.Before(t.next) {
		return
	}
	for !now.Before(t.next) {
		t.next = t.next.Add(t.period)
	}
	select {
	case t.c <- now:
	default:
	}
}
