package round

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// TickInterval is the period of the countdown tick.
const TickInterval = time.Second

// Timer drives a Countdown with a cancellable periodic tick. At most one
// tick loop is active per Timer.
type Timer struct {
	mu        sync.Mutex
	// notifyMu serializes OnChange calls. It is taken before mu.
	notifyMu  sync.Mutex
	clock     clockwork.Clock
	countdown Countdown
	cancel    context.CancelFunc
	ticker    clockwork.Ticker
	gen       uint64
	onChange  func(Display)
}

// Option configures a Timer.
type Option func(*Timer)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(t *Timer) {
		t.clock = clock
	}
}

// OnChange registers a hook called after every start, tick and expiry.
// The hook runs outside the timer lock, one call at a time. Changes from a
// round that has since been restarted are dropped.
func OnChange(fn func(Display)) Option {
	return func(t *Timer) {
		t.onChange = fn
	}
}

// NewTimer returns an idle timer.
func NewTimer(opts ...Option) *Timer {
	t := &Timer{
		clock:     clockwork.NewRealClock(),
		countdown: NewCountdown(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start mounts the round: any pending tick is cancelled, the countdown
// resets to a full round and a new tick loop begins.
func (t *Timer) Start() {
	t.mu.Lock()
	t.stopLocked()
	t.countdown.Start()
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.gen++
	t.ticker = t.clock.NewTicker(TickInterval)
	gen := t.gen
	go t.run(ctx, gen, t.ticker)
	display := t.countdown.Display()
	t.mu.Unlock()

	t.notify(gen, display)
}

// Restart remounts the round from a fresh idle countdown.
func (t *Timer) Restart() {
	t.mu.Lock()
	t.stopLocked()
	t.countdown = NewCountdown()
	t.mu.Unlock()

	t.Start()
}

// Stop unmounts the round. The countdown keeps its last value.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Timer) stopLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if t.ticker != nil {
		t.ticker.Stop()
		t.ticker = nil
	}
}

func (t *Timer) run(ctx context.Context, gen uint64, ticker clockwork.Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			t.mu.Lock()
			// A restart may have won the lock while this tick was pending.
			if ctx.Err() != nil || gen != t.gen {
				t.mu.Unlock()
				return
			}
			expired := t.countdown.Tick()
			if expired {
				t.stopLocked()
			}
			display := t.countdown.Display()
			t.mu.Unlock()

			t.notify(gen, display)
			if expired {
				return
			}
		}
	}
}

func (t *Timer) notify(gen uint64, display Display) {
	if t.onChange == nil {
		return
	}
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	stale := gen != t.gen
	t.mu.Unlock()
	if stale {
		return
	}
	t.onChange(display)
}

// Ticking reports whether a tick loop is scheduled.
func (t *Timer) Ticking() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Submit is the input gate: text is accepted only while the round is
// running with time left and the trimmed text is non-empty.
func (t *Timer) Submit(text string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.countdown.Accepts(text)
}

// Open reports whether input is currently permitted.
func (t *Timer) Open() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.countdown.Open()
}

// Display is the current render state of the countdown.
func (t *Timer) Display() Display {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.countdown.Display()
}
