package game

import (
	"sync"

	"github.com/google/uuid"
)

// RoomStore is the in-memory registry of live rooms, indexed by internal ID
// and by public join code.
type RoomStore struct {
	mu     sync.Mutex
	rooms  map[uuid.UUID]*Room
	byCode map[string]*Room
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms:  make(map[uuid.UUID]*Room),
		byCode: make(map[string]*Room),
	}
}

// CreateRoom mints a room with a fresh join code, retrying on the rare
// collision with a live room.
func (s *RoomStore) CreateRoom() *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	var code string
	for {
		code = NewRoomCode()
		if _, taken := s.byCode[code]; !taken {
			break
		}
	}
	r := NewRoom(code)
	s.rooms[r.ID] = r
	s.byCode[r.Code] = r
	return r
}

func (s *RoomStore) GetRoom(id uuid.UUID) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, exists := s.rooms[id]
	return r, exists
}

func (s *RoomStore) GetRoomByCode(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, exists := s.byCode[code]
	return r, exists
}

func (s *RoomStore) DeleteRoom(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, exists := s.rooms[id]; exists {
		delete(s.byCode, r.Code)
		delete(s.rooms, id)
	}
}

// RoomIDs snapshots the IDs of all live rooms. Callers iterate and re-fetch
// each room so the store lock is never held across per-room work.
func (s *RoomStore) RoomIDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of live rooms.
func (s *RoomStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}
