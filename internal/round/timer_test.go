package round

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timerHarness struct {
	t       *testing.T
	timer   *Timer
	clock   *clockwork.FakeClock
	changes chan Display
}

func newTimerHarness(t *testing.T) *timerHarness {
	t.Helper()
	h := &timerHarness{
		t:       t,
		clock:   clockwork.NewFakeClock(),
		changes: make(chan Display, 128),
	}
	h.timer = NewTimer(WithClock(h.clock), OnChange(func(d Display) {
		h.changes <- d
	}))
	t.Cleanup(h.timer.Stop)
	return h
}

func (h *timerHarness) next() Display {
	h.t.Helper()
	select {
	case d := <-h.changes:
		return d
	case <-time.After(2 * time.Second):
		h.t.Fatal("timed out waiting for timer change")
		return Display{}
	}
}

func (h *timerHarness) start() Display {
	h.t.Helper()
	h.timer.Start()
	return h.next()
}

// tick advances the fake clock by one period once exactly one ticker is
// scheduled and waits for the resulting change.
func (h *timerHarness) tick() Display {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(h.t, h.clock.BlockUntilContext(ctx, 1))
	h.clock.Advance(TickInterval)
	return h.next()
}

func (h *timerHarness) quiet() {
	h.t.Helper()
	select {
	case d := <-h.changes:
		h.t.Fatalf("unexpected timer change: %+v", d)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTimer_IdleUntilStarted(t *testing.T) {
	h := newTimerHarness(t)
	d := h.timer.Display()
	assert.Equal(t, StateIdle, d.State)
	assert.Equal(t, Seconds, d.SecondsLeft)
	assert.False(t, h.timer.Ticking())
	assert.False(t, h.timer.Submit("too early"))
}

func TestTimer_StartBeginsFullRound(t *testing.T) {
	h := newTimerHarness(t)
	d := h.start()
	assert.Equal(t, StateRunning, d.State)
	assert.Equal(t, Seconds, d.SecondsLeft)
	assert.True(t, h.timer.Ticking())
	assert.True(t, h.timer.Open())
}

func TestTimer_TicksDownOnePerSecond(t *testing.T) {
	h := newTimerHarness(t)
	h.start()
	for want := Seconds - 1; want >= 27; want-- {
		d := h.tick()
		require.Equal(t, want, d.SecondsLeft)
	}
	assert.Equal(t, 27, h.timer.Display().SecondsLeft)
}

func TestTimer_DangerThenExpiry(t *testing.T) {
	h := newTimerHarness(t)
	h.start()

	var d Display
	for i := 0; i < 25; i++ {
		d = h.tick()
	}
	assert.Equal(t, 5, d.SecondsLeft)
	assert.Equal(t, "5s", d.Label)
	assert.True(t, d.Danger)
	assert.True(t, d.InputEnabled)
	assert.True(t, h.timer.Submit("still in time"))

	for i := 0; i < 5; i++ {
		d = h.tick()
	}
	assert.Equal(t, 0, d.SecondsLeft)
	assert.Equal(t, StateExpired, d.State)
	assert.False(t, d.InputEnabled)
	assert.False(t, h.timer.Submit("too late"))
	assert.False(t, h.timer.Ticking(), "expiry must cancel the tick")

	h.clock.Advance(5 * TickInterval)
	h.quiet()
	assert.Equal(t, 0, h.timer.Display().SecondsLeft)
}

func TestTimer_RestartReplacesTick(t *testing.T) {
	h := newTimerHarness(t)
	h.start()
	h.tick()
	h.tick()
	h.tick()

	h.timer.Restart()
	d := h.next()
	require.Equal(t, Seconds, d.SecondsLeft)

	d = h.tick()
	assert.Equal(t, Seconds-1, d.SecondsLeft, "only one tick loop may decrement")
	h.quiet()
}

func TestTimer_StartTwiceKeepsOneTicker(t *testing.T) {
	h := newTimerHarness(t)
	h.start()
	h.start()

	d := h.tick()
	assert.Equal(t, Seconds-1, d.SecondsLeft)
	h.quiet()
}

func TestTimer_StopCancelsTick(t *testing.T) {
	h := newTimerHarness(t)
	h.start()
	h.tick()

	h.timer.Stop()
	assert.False(t, h.timer.Ticking())

	h.clock.Advance(3 * TickInterval)
	h.quiet()
	assert.Equal(t, Seconds-1, h.timer.Display().SecondsLeft)

	h.timer.Stop()
}

func TestTimer_RestartWaitsForExpiryChange(t *testing.T) {
	clock := clockwork.NewFakeClock()
	changes := make(chan Display, 64)
	expiring := make(chan struct{})
	release := make(chan struct{})
	timer := NewTimer(WithClock(clock), OnChange(func(d Display) {
		if d.State == StateExpired {
			close(expiring)
			<-release
		}
		changes <- d
	}))
	t.Cleanup(timer.Stop)

	timer.Start()
	<-changes
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for i := 0; i < Seconds-1; i++ {
		require.NoError(t, clock.BlockUntilContext(ctx, 1))
		clock.Advance(TickInterval)
		<-changes
	}
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(TickInterval)
	<-expiring

	restarted := make(chan struct{})
	go func() {
		timer.Restart()
		close(restarted)
	}()
	require.Eventually(t, func() bool {
		return timer.Display().State == StateRunning
	}, time.Second, 5*time.Millisecond)
	close(release)
	<-restarted

	assert.Equal(t, StateExpired, (<-changes).State)
	last := <-changes
	assert.Equal(t, StateRunning, last.State)
	assert.Equal(t, Seconds, last.SecondsLeft)
	assert.True(t, last.InputEnabled)
}

func TestTimer_DropsChangesFromReplacedRound(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var (
		mu    sync.Mutex
		seen  []int
		first = true
	)
	blocked := make(chan struct{})
	release := make(chan struct{})
	timer := NewTimer(WithClock(clock), OnChange(func(d Display) {
		mu.Lock()
		hold := first
		first = false
		mu.Unlock()
		if hold {
			close(blocked)
			<-release
		}
		mu.Lock()
		seen = append(seen, d.SecondsLeft)
		mu.Unlock()
	}))
	t.Cleanup(timer.Stop)

	started := make(chan struct{})
	go func() {
		timer.Start()
		close(started)
	}()
	<-blocked

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(TickInterval)
	require.Eventually(t, func() bool {
		return timer.Display().SecondsLeft == Seconds-1
	}, time.Second, 5*time.Millisecond)

	restarted := make(chan struct{})
	go func() {
		timer.Restart()
		close(restarted)
	}()
	require.Eventually(t, func() bool {
		d := timer.Display()
		return d.State == StateRunning && d.SecondsLeft == Seconds
	}, time.Second, 5*time.Millisecond)

	close(release)
	<-started
	<-restarted

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{Seconds, Seconds}, seen, "the replaced round's tick must not reach the observer")
}
