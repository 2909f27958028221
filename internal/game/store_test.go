package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"nothuman/internal/canvas"
	"nothuman/internal/round"
)

func newTestStore(t *testing.T, maxViews int) (*Store, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	s, err := NewStore(maxViews, WithClock(clock))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(s.Close)
	return s, clock
}

func mount(t *testing.T, s *Store, mode Mode) *View {
	t.Helper()
	v, err := s.Mount(mode, "task", 400, 1)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	return v
}

func subscribe(t *testing.T, s *Store, id string) <-chan string {
	t.Helper()
	ch, unsubscribe, err := s.Subscribe(id)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	t.Cleanup(unsubscribe)
	return ch
}

func waitEvent(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return ""
	}
}

// tick advances one countdown period for the single mounted view.
func tick(t *testing.T, clock *clockwork.FakeClock, events <-chan string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("waiting for ticker: %v", err)
	}
	clock.Advance(round.TickInterval)
	if ev := waitEvent(t, events); ev != EventRound {
		t.Fatalf("got event %q, want %q", ev, EventRound)
	}
}

func expire(t *testing.T, clock *clockwork.FakeClock, events <-chan string) {
	t.Helper()
	for i := 0; i < round.Seconds; i++ {
		tick(t, clock, events)
	}
}

func TestNewStore_InvalidSize(t *testing.T) {
	if _, err := NewStore(0); err == nil {
		t.Error("NewStore(0) should fail")
	}
}

func TestStore_Mount_Get(t *testing.T) {
	s, _ := newTestStore(t, 4)
	v := mount(t, s, ModeChat)
	if v.ID == "" {
		t.Error("view ID is empty")
	}
	if v.Board != nil {
		t.Error("chat views have no board")
	}
	d := v.Timer.Display()
	if d.State != round.StateRunning || d.SecondsLeft != round.Seconds {
		t.Errorf("display %+v, want running with a full round", d)
	}

	got, err := s.Get(v.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != v {
		t.Error("Get returned different pointer")
	}

	_, err = s.Get("nonexistent")
	if !errors.Is(err, ErrViewNotFound) {
		t.Errorf("got %v, want ErrViewNotFound", err)
	}
}

func TestStore_MountRejectsUnknownMode(t *testing.T) {
	s, _ := newTestStore(t, 4)
	if _, err := s.Mount(Mode("poem"), "task", 400, 1); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("got %v, want ErrInvalidMode", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len %d, want 0", s.Len())
	}
}

func TestStore_MountDrawSizesBoard(t *testing.T) {
	s, _ := newTestStore(t, 4)
	v, err := s.Mount(ModeDraw, "Draw lion with horns", 400, 2)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if v.Board == nil {
		t.Fatal("draw view has no board")
	}
	cssW, cssH, pxW, pxH := v.Board.Size()
	if cssW != 400 || cssH != 240 || pxW != 800 || pxH != 480 {
		t.Errorf("size %dx%d (%dx%d px), want 400x240 (800x480 px)", cssW, cssH, pxW, pxH)
	}
	if !v.Board.Enabled() {
		t.Error("board should accept strokes while the round runs")
	}
}

func TestStore_MountRejectsOversizedBoard(t *testing.T) {
	s, _ := newTestStore(t, 4)
	if _, err := s.Mount(ModeDraw, "task", 4096, 4); !errors.Is(err, canvas.ErrTooLarge) {
		t.Errorf("got %v, want canvas.ErrTooLarge", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len %d, want 0", s.Len())
	}
	if _, err := s.Mount(ModeChat, "task", 4096, 4); err != nil {
		t.Errorf("chat views have no board to bound: %v", err)
	}
}

func TestStore_TickPublishesRound(t *testing.T) {
	s, clock := newTestStore(t, 4)
	v := mount(t, s, ModeChat)
	events := subscribe(t, s, v.ID)

	tick(t, clock, events)
	if got := v.Timer.Display().SecondsLeft; got != round.Seconds-1 {
		t.Errorf("SecondsLeft %d, want %d", got, round.Seconds-1)
	}
}

func TestStore_ExpiryFreezesBoard(t *testing.T) {
	s, clock := newTestStore(t, 4)
	v := mount(t, s, ModeDraw)
	events := subscribe(t, s, v.ID)

	if !v.Board.Start(canvas.Point{X: 10, Y: 10}) {
		t.Fatal("stroke should start while running")
	}
	expire(t, clock, events)

	if v.Timer.Display().State != round.StateExpired {
		t.Fatalf("state %v, want expired", v.Timer.Display().State)
	}
	if v.Board.Enabled() {
		t.Error("board should be disabled after expiry")
	}
	if v.Board.Drawing() {
		t.Error("expiry should end the stroke in progress")
	}
	if v.Board.Start(canvas.Point{X: 20, Y: 20}) {
		t.Error("new strokes should be ignored after expiry")
	}
	if v.Timer.Ticking() {
		t.Error("expiry should cancel the tick")
	}
}

func TestStore_Remount(t *testing.T) {
	s, clock := newTestStore(t, 4)
	v := mount(t, s, ModeDraw)
	events := subscribe(t, s, v.ID)
	fresh := v.Board.Snapshot()

	v.SetDraft("unsent")
	v.Board.Start(canvas.Point{X: 10, Y: 10})
	v.Board.Move(canvas.Point{X: 100, Y: 100})
	expire(t, clock, events)

	got, err := s.Remount(v.ID)
	if err != nil {
		t.Fatalf("Remount: %v", err)
	}
	if got != v {
		t.Error("Remount should keep the view")
	}
	snap := v.Snapshot()
	if snap.Draft != "" {
		t.Errorf("draft %q, want empty", snap.Draft)
	}
	if snap.Display.State != round.StateRunning || snap.Display.SecondsLeft != round.Seconds {
		t.Errorf("display %+v, want a fresh running round", snap.Display)
	}
	if !snap.BoardEnabled {
		t.Error("board should be enabled again")
	}
	if string(fresh.Pix) != string(v.Board.Snapshot().Pix) {
		t.Error("remount should clear the raster")
	}

	if _, err := s.Remount("nonexistent"); !errors.Is(err, ErrViewNotFound) {
		t.Errorf("got %v, want ErrViewNotFound", err)
	}
}

func TestStore_UnmountStopsTimer(t *testing.T) {
	s, _ := newTestStore(t, 4)
	v := mount(t, s, ModeChat)
	events, _, err := s.Subscribe(v.ID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := s.Unmount(v.ID); err != nil {
		t.Fatalf("Unmount: %v", err)
	}
	if v.Timer.Ticking() {
		t.Error("unmount should cancel the tick")
	}
	if _, open := <-events; open {
		t.Error("unmount should close subscriptions")
	}
	if _, err := s.Get(v.ID); !errors.Is(err, ErrViewNotFound) {
		t.Errorf("got %v, want ErrViewNotFound", err)
	}
	if err := s.Unmount(v.ID); !errors.Is(err, ErrViewNotFound) {
		t.Errorf("second Unmount got %v, want ErrViewNotFound", err)
	}
}

func TestStore_EvictionUnmountsOldest(t *testing.T) {
	s, _ := newTestStore(t, 1)
	first := mount(t, s, ModeDraw)
	second := mount(t, s, ModeChat)

	if first.Timer.Ticking() {
		t.Error("evicted view should stop ticking")
	}
	if first.Board.Enabled() {
		t.Error("evicted board should be disabled")
	}
	if _, err := s.Get(first.ID); !errors.Is(err, ErrViewNotFound) {
		t.Errorf("got %v, want ErrViewNotFound", err)
	}
	if !second.Timer.Ticking() {
		t.Error("newest view should keep ticking")
	}
}

func TestStore_Close(t *testing.T) {
	s, _ := newTestStore(t, 4)
	a := mount(t, s, ModeChat)
	b := mount(t, s, ModeDraw)

	s.Close()
	if s.Len() != 0 {
		t.Errorf("Len %d, want 0", s.Len())
	}
	if a.Timer.Ticking() || b.Timer.Ticking() {
		t.Error("Close should stop every tick")
	}
}
