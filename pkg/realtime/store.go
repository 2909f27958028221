package realtime

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// Room holds state and a broadcaster for one room.
type Room[T, E any] struct {
	ID    string
	State T
	hub   *Broadcaster[E]
}

// Broadcaster returns the room's broadcaster.
func (r *Room[T, E]) Broadcaster() *Broadcaster[E] {
	return r.hub
}

// RoomStore keeps a bounded set of rooms. The least recently used room is
// evicted when the store is full; eviction and removal close the room's
// broadcaster and then call the release hook.
type RoomStore[T, E any] struct {
	rooms   *lru.Cache
	release func(id string, state T)
}

// NewRoomStore creates an empty room store holding at most size rooms.
// release may be nil.
func NewRoomStore[T, E any](size int, release func(id string, state T)) (*RoomStore[T, E], error) {
	s := &RoomStore[T, E]{release: release}
	rooms, err := lru.NewWithEvict(size, s.evicted)
	if err != nil {
		return nil, fmt.Errorf("lru new room cache: %w", err)
	}
	s.rooms = rooms
	return s, nil
}

func (s *RoomStore[T, E]) evicted(_ interface{}, value interface{}) {
	room, ok := value.(*Room[T, E])
	if !ok {
		return
	}
	room.hub.Close()
	if s.release != nil {
		s.release(room.ID, room.State)
	}
}

// Create adds a room with the given id and state, and a new Broadcaster.
func (s *RoomStore[T, E]) Create(id string, state T) *Room[T, E] {
	r := &Room[T, E]{ID: id, State: state, hub: NewBroadcaster[E]()}
	s.rooms.Add(id, r)
	return r
}

// Get returns the room by ID if it exists and marks it recently used.
func (s *RoomStore[T, E]) Get(id string) (*Room[T, E], bool) {
	v, ok := s.rooms.Get(id)
	if !ok {
		return nil, false
	}
	r, ok := v.(*Room[T, E])
	return r, ok
}

// Remove releases the room. It reports whether the room existed.
func (s *RoomStore[T, E]) Remove(id string) bool {
	return s.rooms.Remove(id)
}

// Publish notifies subscribers of the room's broadcaster. It does not
// refresh the room's recency.
func (s *RoomStore[T, E]) Publish(id string, event E) {
	v, ok := s.rooms.Peek(id)
	if !ok {
		return
	}
	if r, ok := v.(*Room[T, E]); ok {
		r.hub.Publish(event)
	}
}

// Len is the number of live rooms.
func (s *RoomStore[T, E]) Len() int {
	return s.rooms.Len()
}

// Purge releases every room.
func (s *RoomStore[T, E]) Purge() {
	s.rooms.Purge()
}
