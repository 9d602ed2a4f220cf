package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/auramusic/syncroom/internal/domain"
)

// RedisStore persists rooms as JSON blobs, one key per room code.
// Mutations are get-mutate-set without WATCH: the last write wins,
// which is the accepted consistency level for this domain.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func roomKey(code domain.RoomCode) string {
	return fmt.Sprintf("rooms:%s", code)
}

func (s *RedisStore) GetOrCreate(ctx context.Context, code domain.RoomCode, host domain.UserID) (*domain.Room, error) {
	room, ok, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if ok {
		return room, nil
	}

	room = domain.NewRoom(code, host)
	b, err := json.Marshal(room)
	if err != nil {
		return nil, err
	}
	// NX so a concurrent creator is not overwritten; on conflict the
	// existing room is re-read and returned.
	created, err := s.rdb.SetNX(ctx, roomKey(code), b, 0).Result()
	if err != nil {
		return nil, err
	}
	if !created {
		room, _, err = s.Get(ctx, code)
		return room, err
	}
	log.Info().Str("module", "registry").Str("room", string(code)).Str("host", string(host)).Msg("room created")
	return room, nil
}

func (s *RedisStore) Get(ctx context.Context, code domain.RoomCode) (*domain.Room, bool, error) {
	val, err := s.rdb.Get(ctx, roomKey(code)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var r domain.Room
	if err := json.Unmarshal(val, &r); err != nil {
		return nil, false, err
	}
	return &r, true, nil
}

// mutate runs the read-modify-write cycle shared by every mutation.
// An absent room is a no-op.
func (s *RedisStore) mutate(ctx context.Context, code domain.RoomCode, fn func(*domain.Room)) (*domain.Room, bool, error) {
	room, ok, err := s.Get(ctx, code)
	if err != nil || !ok {
		return nil, false, err
	}
	fn(room)
	b, err := json.Marshal(room)
	if err != nil {
		return nil, false, err
	}
	if err := s.rdb.Set(ctx, roomKey(code), b, 0).Err(); err != nil {
		return nil, false, err
	}
	return room, true, nil
}

func (s *RedisStore) AddParticipant(ctx context.Context, code domain.RoomCode, id domain.UserID) (*domain.Room, bool, error) {
	return s.mutate(ctx, code, func(r *domain.Room) { addParticipant(r, id) })
}

func (s *RedisStore) RemoveParticipant(ctx context.Context, code domain.RoomCode, id domain.UserID) (*domain.Room, bool, error) {
	return s.mutate(ctx, code, func(r *domain.Room) { removeParticipant(r, id) })
}

func (s *RedisStore) SetKing(ctx context.Context, code domain.RoomCode, id domain.UserID, enabled bool) (*domain.Room, bool, error) {
	return s.mutate(ctx, code, func(r *domain.Room) { setKing(r, id, enabled) })
}

func (s *RedisStore) SetCollaborative(ctx context.Context, code domain.RoomCode, enabled bool) (*domain.Room, bool, error) {
	return s.mutate(ctx, code, func(r *domain.Room) { r.IsCollaborative = enabled })
}

func (s *RedisStore) ApplyPlayback(ctx context.Context, code domain.RoomCode, d PlaybackDelta) (*domain.Room, bool, error) {
	return s.mutate(ctx, code, func(r *domain.Room) { applyPlayback(r, d) })
}

func (s *RedisStore) SetQueue(ctx context.Context, code domain.RoomCode, queue []domain.SongID) (*domain.Room, bool, error) {
	return s.mutate(ctx, code, func(r *domain.Room) { r.Queue = queue })
}
