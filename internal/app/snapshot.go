package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/auramusic/syncroom/internal/domain"
	"github.com/auramusic/syncroom/internal/songs"
)

// Snapshot is the full room state sent on every membership or role
// change. CurrentSong is populated so a late joiner can start playback
// straight from the snapshot without a second catalog round-trip.
type Snapshot struct {
	RoomCode        domain.RoomCode `json:"roomCode"`
	Host            domain.UserID   `json:"host"`
	Participants    []domain.UserID `json:"participants"`
	Kings           []domain.UserID `json:"kings"`
	CurrentSong     *domain.Song    `json:"currentSong"`
	IsPlaying       bool            `json:"isPlaying"`
	CurrentTime     float64         `json:"currentTime"`
	Queue           []domain.SongID `json:"queue"`
	IsCollaborative bool            `json:"isCollaborative"`
	IsActive        bool            `json:"isActive"`
}

func buildSnapshot(ctx context.Context, catalog songs.Lookup, room *domain.Room) *Snapshot {
	snap := &Snapshot{
		RoomCode:        room.RoomCode,
		Host:            room.Host,
		Participants:    room.Participants,
		Kings:           room.Kings,
		IsPlaying:       room.IsPlaying,
		CurrentTime:     room.CurrentTime,
		Queue:           room.Queue,
		IsCollaborative: room.IsCollaborative,
		IsActive:        room.IsActive,
	}
	if room.CurrentSong != "" && catalog != nil {
		song, err := catalog.Lookup(ctx, room.CurrentSong)
		if err != nil {
			// A snapshot with an unpopulated song is still useful;
			// followers fall back to looking the id up themselves.
			log.Warn().Err(err).Str("module", "app").Str("song", string(room.CurrentSong)).Msg("snapshot song lookup failed")
			snap.CurrentSong = &domain.Song{ID: room.CurrentSong}
		} else {
			snap.CurrentSong = song
		}
	}
	return snap
}
