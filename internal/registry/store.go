// Package registry is pure storage for Room entities keyed by room
// code. No policy lives here; authority checks belong to the caller.
package registry

import (
	"context"

	"github.com/auramusic/syncroom/internal/domain"
)

// PlaybackDelta is the persisted slice of a playback_update. An empty
// SongID means "song unchanged".
type PlaybackDelta struct {
	IsPlaying   bool
	CurrentTime float64
	SongID      domain.SongID
}

// Store is the Room Registry. Every mutation is a read-modify-write of
// the keyed entity; no mutation holds a room-level lock across the
// cycle, so two concurrent writers race and the later write wins.
// Mutations against an absent room return found=false and nil error:
// an unknown room is a no-op, not a failure.
type Store interface {
	// GetOrCreate returns the room, creating it with host as the sole
	// participant when the code is unknown.
	GetOrCreate(ctx context.Context, code domain.RoomCode, host domain.UserID) (*domain.Room, error)
	Get(ctx context.Context, code domain.RoomCode) (*domain.Room, bool, error)

	// AddParticipant is idempotent; a second add of the same id is a no-op.
	AddParticipant(ctx context.Context, code domain.RoomCode, id domain.UserID) (*domain.Room, bool, error)
	// RemoveParticipant also strips king status so the king set cannot
	// dangle behind an explicit leave.
	RemoveParticipant(ctx context.Context, code domain.RoomCode, id domain.UserID) (*domain.Room, bool, error)

	SetKing(ctx context.Context, code domain.RoomCode, id domain.UserID, enabled bool) (*domain.Room, bool, error)
	SetCollaborative(ctx context.Context, code domain.RoomCode, enabled bool) (*domain.Room, bool, error)
	ApplyPlayback(ctx context.Context, code domain.RoomCode, d PlaybackDelta) (*domain.Room, bool, error)
	SetQueue(ctx context.Context, code domain.RoomCode, queue []domain.SongID) (*domain.Room, bool, error)
}

func addParticipant(r *domain.Room, id domain.UserID) {
	if id == "" || r.HasParticipant(id) {
		return
	}
	r.Participants = append(r.Participants, id)
}

func removeParticipant(r *domain.Room, id domain.UserID) {
	out := r.Participants[:0]
	for _, p := range r.Participants {
		if p != id {
			out = append(out, p)
		}
	}
	r.Participants = out
	setKing(r, id, false)
}

func setKing(r *domain.Room, id domain.UserID, enabled bool) {
	if enabled {
		if id != "" && !r.HasKing(id) {
			r.Kings = append(r.Kings, id)
		}
		return
	}
	out := r.Kings[:0]
	for _, k := range r.Kings {
		if k != id {
			out = append(out, k)
		}
	}
	r.Kings = out
}

func applyPlayback(r *domain.Room, d PlaybackDelta) {
	r.IsPlaying = d.IsPlaying
	r.CurrentTime = d.CurrentTime
	if d.SongID != "" {
		r.CurrentSong = d.SongID
	}
}
