package gateway

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/auramusic/syncroom/internal/domain"
	"github.com/auramusic/syncroom/internal/registry"
)

type playbackSyncMsg struct {
	Type        string        `json:"type"`
	IsPlaying   bool          `json:"isPlaying"`
	CurrentTime float64       `json:"currentTime"`
	SongID      domain.SongID `json:"songId,omitempty"`
	UserID      domain.UserID `json:"userId"`
}

type queueUpdatedMsg struct {
	Type  string          `json:"type"`
	Queue []domain.SongID `json:"queue"`
}

func (ctl *Controller) handlePlaybackUpdate(ctx context.Context, conn *WsConn, data []byte) {
	var p struct {
		Type        string  `json:"type"`
		RoomCode    string  `json:"roomCode"`
		IsPlaying   bool    `json:"isPlaying"`
		CurrentTime float64 `json:"currentTime"`
		SongID      string  `json:"songId"`
		UserID      string  `json:"userId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "gateway").Msg("bad playback_update payload")
		return
	}
	code := domain.RoomCode(p.RoomCode)

	userID, applied, err := ctl.Playback.Apply(ctx, code, p.UserID, registry.PlaybackDelta{
		IsPlaying:   p.IsPlaying,
		CurrentTime: p.CurrentTime,
		SongID:      domain.SongID(p.SongID),
	})
	if err != nil {
		log.Error().Err(err).Str("module", "gateway").Str("room", p.RoomCode).Msg("playback_update failed")
		return
	}
	if !applied {
		return
	}

	// Excluding the sender's connection is half the echo story; the
	// follower also drops messages carrying its own user id, covering
	// an actor listening through a second connection.
	ctl.Hub.BroadcastExcept(code, conn, playbackSyncMsg{
		Type:        "playback_sync",
		IsPlaying:   p.IsPlaying,
		CurrentTime: p.CurrentTime,
		SongID:      domain.SongID(p.SongID),
		UserID:      userID,
	})
}

func (ctl *Controller) handleUpdateQueue(ctx context.Context, conn *WsConn, data []byte) {
	var p struct {
		Type     string   `json:"type"`
		RoomCode string   `json:"roomCode"`
		Queue    []string `json:"queue"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "gateway").Msg("bad update_queue payload")
		return
	}
	code := domain.RoomCode(p.RoomCode)

	queue := make([]domain.SongID, 0, len(p.Queue))
	for _, id := range p.Queue {
		queue = append(queue, domain.SongID(id))
	}

	_, found, err := ctl.Store.SetQueue(ctx, code, queue)
	if err != nil {
		log.Error().Err(err).Str("module", "gateway").Str("room", p.RoomCode).Msg("update_queue failed")
		return
	}
	if found {
		ctl.Hub.BroadcastExcept(code, conn, queueUpdatedMsg{Type: "queue_updated", Queue: queue})
	}
}
