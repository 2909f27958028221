package game

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"nothuman/internal/canvas"
	"nothuman/internal/round"
	"nothuman/pkg/realtime"
)

// EventRound is published whenever a view's countdown changes.
const EventRound = "round"

var (
	ErrViewNotFound = errors.New("view not found")
	ErrInvalidMode  = errors.New("invalid mode")
)

// Store holds mounted views and delegates to realtime.RoomStore for
// eviction and broadcast. Evicting or unmounting a view stops its tick.
type Store struct {
	r      *realtime.RoomStore[*View, string]
	clock  clockwork.Clock
	logger zerolog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock drives every view's timer from clock.
func WithClock(clock clockwork.Clock) StoreOption {
	return func(s *Store) {
		s.clock = clock
	}
}

// WithLogger sets the logger used outside request scope.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an in-memory view store holding at most maxViews views.
func NewStore(maxViews int, opts ...StoreOption) (*Store, error) {
	s := &Store{
		clock:  clockwork.NewRealClock(),
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	rooms, err := realtime.NewRoomStore[*View, string](maxViews, s.release)
	if err != nil {
		return nil, fmt.Errorf("new view store: %w", err)
	}
	s.r = rooms
	return s, nil
}

func (s *Store) release(id string, v *View) {
	v.Timer.Stop()
	if v.Board != nil {
		v.Board.SetEnabled(false)
	}
	s.logger.Debug().Str("view_id", id).Msg("view unmounted")
}

// Mount creates a view and starts its round. width and dpr size the board
// of a draw view and are ignored for chat. A board too large to allocate
// fails with canvas.ErrTooLarge.
func (s *Store) Mount(mode Mode, task string, width, dpr float64) (*View, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if mode == ModeDraw {
		if err := canvas.CheckSize(width, dpr); err != nil {
			return nil, fmt.Errorf("mount draw view: %w", err)
		}
	}
	v := &View{
		ID:        uuid.NewString(),
		Mode:      mode,
		Task:      task,
		CreatedAt: s.clock.Now().UTC(),
	}
	v.logger = s.logger.With().Str("view_id", v.ID).Logger()
	v.Timer = round.NewTimer(
		round.WithClock(s.clock),
		round.OnChange(func(d round.Display) { s.changed(v, d) }),
	)
	if mode == ModeDraw {
		v.Board = canvas.NewBoard(width, dpr)
	}
	s.r.Create(v.ID, v)
	v.Timer.Start()

	v.logger.Info().Str("mode", string(mode)).Str("task", task).Msg("view mounted")
	return v, nil
}

// changed follows the countdown: draw boards accept strokes only while
// input is enabled, and subscribers are told to re-render.
func (s *Store) changed(v *View, d round.Display) {
	if v.Board != nil {
		v.Board.SetEnabled(d.InputEnabled)
	}
	if d.State == round.StateExpired {
		v.logger.Info().Msg("round expired")
	}
	s.r.Publish(v.ID, EventRound)
}

// Get returns a mounted view.
func (s *Store) Get(id string) (*View, error) {
	room, ok := s.r.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	return room.State, nil
}

// Remount restarts the view's round from scratch: draft and board are reset
// and a fresh 30-second countdown begins.
func (s *Store) Remount(id string) (*View, error) {
	v, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	v.reset()
	v.Timer.Restart()
	v.logger.Info().Msg("view remounted")
	return v, nil
}

// Unmount stops the view's round and forgets it.
func (s *Store) Unmount(id string) error {
	if !s.r.Remove(id) {
		return fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	return nil
}

// Subscribe returns a channel of events for the view and a func that ends
// the subscription. The channel closes when the view is unmounted.
func (s *Store) Subscribe(id string) (<-chan string, func(), error) {
	room, ok := s.r.Get(id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	hub := room.Broadcaster()
	ch := hub.Subscribe()
	return ch, func() { hub.Unsubscribe(ch) }, nil
}

// Publish notifies subscribers of a view update.
func (s *Store) Publish(id string, event string) {
	s.r.Publish(id, event)
}

// Len is the number of mounted views.
func (s *Store) Len() int {
	return s.r.Len()
}

// Close unmounts every view.
func (s *Store) Close() {
	s.r.Purge()
}
