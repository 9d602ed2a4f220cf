package registry

import (
	"context"
	"sync"

	"github.com/auramusic/syncroom/internal/domain"
)

// MemoryStore backs tests and single-node dev mode. The map lock only
// guards map access, not the whole read-modify-write cycle, matching
// the redis store's last-write-wins behavior.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[domain.RoomCode]*domain.Room
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[domain.RoomCode]*domain.Room)}
}

func (s *MemoryStore) get(code domain.RoomCode) (*domain.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[code]
	if !ok {
		return nil, false
	}
	cp := *r
	cp.Participants = append([]domain.UserID(nil), r.Participants...)
	cp.Kings = append([]domain.UserID(nil), r.Kings...)
	cp.Queue = append([]domain.SongID(nil), r.Queue...)
	return &cp, true
}

func (s *MemoryStore) put(r *domain.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[r.RoomCode] = r
}

func (s *MemoryStore) GetOrCreate(ctx context.Context, code domain.RoomCode, host domain.UserID) (*domain.Room, error) {
	if r, ok := s.get(code); ok {
		return r, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[code]; ok {
		cp := *r
		return &cp, nil
	}
	r := domain.NewRoom(code, host)
	s.rooms[code] = r
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) Get(ctx context.Context, code domain.RoomCode) (*domain.Room, bool, error) {
	r, ok := s.get(code)
	return r, ok, nil
}

func (s *MemoryStore) mutate(code domain.RoomCode, fn func(*domain.Room)) (*domain.Room, bool, error) {
	r, ok := s.get(code)
	if !ok {
		return nil, false, nil
	}
	fn(r)
	s.put(r)
	cp := *r
	return &cp, true, nil
}

func (s *MemoryStore) AddParticipant(ctx context.Context, code domain.RoomCode, id domain.UserID) (*domain.Room, bool, error) {
	return s.mutate(code, func(r *domain.Room) { addParticipant(r, id) })
}

func (s *MemoryStore) RemoveParticipant(ctx context.Context, code domain.RoomCode, id domain.UserID) (*domain.Room, bool, error) {
	return s.mutate(code, func(r *domain.Room) { removeParticipant(r, id) })
}

func (s *MemoryStore) SetKing(ctx context.Context, code domain.RoomCode, id domain.UserID, enabled bool) (*domain.Room, bool, error) {
	return s.mutate(code, func(r *domain.Room) { setKing(r, id, enabled) })
}

func (s *MemoryStore) SetCollaborative(ctx context.Context, code domain.RoomCode, enabled bool) (*domain.Room, bool, error) {
	return s.mutate(code, func(r *domain.Room) { r.IsCollaborative = enabled })
}

func (s *MemoryStore) ApplyPlayback(ctx context.Context, code domain.RoomCode, d PlaybackDelta) (*domain.Room, bool, error) {
	return s.mutate(code, func(r *domain.Room) { applyPlayback(r, d) })
}

func (s *MemoryStore) SetQueue(ctx context.Context, code domain.RoomCode, queue []domain.SongID) (*domain.Room, bool, error) {
	return s.mutate(code, func(r *domain.Room) { r.Queue = queue })
}
