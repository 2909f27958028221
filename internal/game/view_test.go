package game

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"nothuman/internal/round"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "chat", want: ModeChat},
		{in: " Draw ", want: ModeDraw},
		{in: "", wantErr: true},
		{in: "sing", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMode(%q) should fail", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestView_SendAccepted(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewStore(4, WithClock(clockwork.NewFakeClock()), WithLogger(zerolog.New(&buf)))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(s.Close)
	v := mount(t, s, ModeChat)

	v.SetDraft("  I am definitely human  ")
	if !v.Snapshot().CanSend {
		t.Error("non-empty draft should be sendable while running")
	}
	text, ok := v.Send(context.Background())
	if !ok {
		t.Fatal("Send should accept while running")
	}
	if text != "I am definitely human" {
		t.Errorf("got %q, want trimmed text", text)
	}
	snap := v.Snapshot()
	if snap.Draft != "" || snap.Sent != 1 {
		t.Errorf("draft %q sent %d, want empty and 1", snap.Draft, snap.Sent)
	}
	if !strings.Contains(buf.String(), "message sent") || !strings.Contains(buf.String(), "I am definitely human") {
		t.Errorf("log %q should record the message", buf.String())
	}
}

func TestView_SendUsesRequestLogger(t *testing.T) {
	s, _ := newTestStore(t, 4)
	v := mount(t, s, ModeChat)

	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())
	v.SetDraft("hello")
	if _, ok := v.Send(ctx); !ok {
		t.Fatal("Send should accept")
	}
	if !strings.Contains(buf.String(), v.ID) {
		t.Errorf("request log %q should carry the view id", buf.String())
	}
}

func TestView_SendRejectsWhitespace(t *testing.T) {
	s, _ := newTestStore(t, 4)
	v := mount(t, s, ModeChat)

	v.SetDraft("   ")
	if v.Snapshot().CanSend {
		t.Error("blank draft should not be sendable")
	}
	if _, ok := v.Send(context.Background()); ok {
		t.Error("blank draft should be rejected")
	}
	if got := v.Snapshot().Draft; got != "   " {
		t.Errorf("draft %q should be kept", got)
	}
}

func TestView_SendAfterExpiry(t *testing.T) {
	s, clock := newTestStore(t, 4)
	v := mount(t, s, ModeChat)
	events := subscribe(t, s, v.ID)
	expire(t, clock, events)

	v.SetDraft("too late")
	snap := v.Snapshot()
	if snap.CanSend || snap.Display.InputEnabled {
		t.Error("input should be disabled after expiry")
	}
	if snap.Display.Hint != v.Timer.Display().Hint || snap.Display.State != round.StateExpired {
		t.Errorf("display %+v, want expired", snap.Display)
	}
	if _, ok := v.Send(context.Background()); ok {
		t.Error("Send after expiry should be rejected")
	}
	if got := v.Snapshot().Draft; got != "too late" {
		t.Errorf("draft %q should be kept", got)
	}
}

func TestView_SnapshotDraw(t *testing.T) {
	s, _ := newTestStore(t, 4)
	v, err := s.Mount(ModeDraw, "Draw lion with horns", 1000, 1.5)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	snap := v.Snapshot()
	if snap.Task != "Draw lion with horns" || snap.Mode != ModeDraw {
		t.Errorf("snapshot %+v", snap)
	}
	if snap.CSSWidth != 1000 || snap.CSSHeight != 600 || snap.DPR != 1.5 {
		t.Errorf("size %dx%d@%v, want 1000x600@1.5", snap.CSSWidth, snap.CSSHeight, snap.DPR)
	}
	if snap.Brush.Color != "#1f2937" || snap.Brush.Width != 6 || snap.Brush.Eraser {
		t.Errorf("brush %+v, want defaults", snap.Brush)
	}
}
