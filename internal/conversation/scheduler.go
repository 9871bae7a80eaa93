package conversation

import (
	"context"
	"sync"
	"time"
)

// TickInterval is the fixed delay between queue ticks.
const TickInterval = 2 * time.Second

// Clock abstracts timer creation so tests can drive ticks without
// wall-clock delays.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Ticker is what the scheduler drives. Tick must be safe to call even
// when there is nothing to do.
type Ticker interface {
	Tick(ctx context.Context)
}

// Scheduler runs a ticker on a fixed delay, one tick at a time.
//
// The delay is re-armed only after the previous tick has returned, so a
// slow backend call never stacks ticks behind itself. Stop cancels the
// pending timer; no tick fires after Stop returns.
//
// Used by: the app to drive Controller.Tick.
type Scheduler struct {
	ticker   Ticker
	interval time.Duration
	clock    Clock

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval overrides the fixed inter-tick delay.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock injects a clock. Tests use this to fire ticks on demand.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewScheduler creates a scheduler for the given ticker.
func NewScheduler(ticker Ticker, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		ticker:   ticker,
		interval: TickInterval,
		clock:    realClock{},
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins ticking in a background goroutine.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	s.wg.Add(1)
	go s.run()
}

// Stop cancels the pending timer and waits for any in-flight tick.
// Safe to call more than once.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.clock.After(s.interval):
			s.ticker.Tick(s.ctx)
		}
	}
}
