package game

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"nothuman/internal/canvas"
	"nothuman/internal/round"
)

// Mode selects the kind of round a view hosts.
type Mode string

const (
	ModeChat Mode = "chat"
	ModeDraw Mode = "draw"
)

// ParseMode accepts "chat" or "draw", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeChat, ModeDraw:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// View is one mounted round: the countdown, the unsent message and, for
// draw rounds, the board.
type View struct {
	ID        string
	Mode      Mode
	Task      string
	CreatedAt time.Time
	Timer     *round.Timer
	Board     *canvas.Board

	mu     sync.Mutex
	draft  round.Draft
	sent   int
	logger zerolog.Logger
}

// Snapshot is a consistent read of a view for rendering.
type Snapshot struct {
	ID      string
	Mode    Mode
	Task    string
	Display round.Display
	Draft   string
	CanSend bool
	Sent    int

	Brush        canvas.Brush
	BoardEnabled bool
	CSSWidth     int
	CSSHeight    int
	DPR          float64
}

// SetDraft replaces the unsent text. Typing is allowed at any time; the
// gate applies on Send.
func (v *View) SetDraft(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.draft.Set(text)
}

// Send submits the draft through the round's gate. An accepted message is
// trimmed, logged and cleared from the draft; a rejected one is left as is.
func (v *View) Send(ctx context.Context) (string, bool) {
	v.mu.Lock()
	text, ok := v.draft.Send(v.Timer)
	if ok {
		v.sent++
	}
	v.mu.Unlock()

	if ok {
		v.log(ctx).Info().
			Str("view_id", v.ID).
			Str("mode", string(v.Mode)).
			Str("text", text).
			Msg("message sent")
	}
	return text, ok
}

func (v *View) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &v.logger
}

// reset drops the draft and resets the board for a remount.
func (v *View) reset() {
	v.mu.Lock()
	v.draft = round.Draft{}
	v.mu.Unlock()
	if v.Board != nil {
		v.Board.Reset()
	}
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	draft, ready := v.draft.Text(), v.draft.Ready()
	sent := v.sent
	v.mu.Unlock()

	display := v.Timer.Display()
	snap := Snapshot{
		ID:      v.ID,
		Mode:    v.Mode,
		Task:    v.Task,
		Display: display,
		Draft:   draft,
		CanSend: display.InputEnabled && ready,
		Sent:    sent,
	}
	if v.Board != nil {
		snap.Brush = v.Board.Brush()
		snap.BoardEnabled = v.Board.Enabled()
		snap.CSSWidth, snap.CSSHeight, _, _ = v.Board.Size()
		snap.DPR = v.Board.DevicePixelRatio()
	}
	return snap
}
