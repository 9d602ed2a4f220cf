package gateway

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/auramusic/syncroom/internal/app"
	"github.com/auramusic/syncroom/internal/domain"
)

type roomDataMsg struct {
	Type string `json:"type"`
	*app.Snapshot
}

type roomUpdateMsg struct {
	Type            string `json:"type"`
	IsCollaborative bool   `json:"isCollaborative"`
}

func (ctl *Controller) handleJoin(ctx context.Context, conn *WsConn, data []byte) {
	var p struct {
		Type     string `json:"type"`
		RoomCode string `json:"roomCode"`
		UserID   string `json:"userId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "gateway").Msg("bad join_room payload")
		return
	}
	code := domain.RoomCode(p.RoomCode)
	if err := domain.ValidateRoomCode(code); err != nil {
		log.Warn().Err(err).Str("module", "gateway").Msg("join_room rejected")
		return
	}
	if p.UserID == "" {
		// An anonymous joiner still gets a stable identity for the
		// session; the directory passes it through untouched.
		p.UserID = "guest-" + uuid.NewString()
	}

	snap, userID, err := ctl.Members.Join(ctx, code, p.UserID)
	if err != nil {
		log.Error().Err(err).Str("module", "gateway").Str("room", p.RoomCode).Msg("join_room failed")
		return
	}

	// Subscribe before broadcasting so the joiner hears its own
	// room_data; the snapshot goes to the whole room because existing
	// members must learn about the new participant.
	ctl.Hub.Subscribe(code, conn, userID)
	ctl.Hub.Broadcast(code, roomDataMsg{Type: "room_data", Snapshot: snap})
}

func (ctl *Controller) handleLeave(ctx context.Context, conn *WsConn, data []byte) {
	var p struct {
		Type     string `json:"type"`
		RoomCode string `json:"roomCode"`
		UserID   string `json:"userId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "gateway").Msg("bad leave_room payload")
		return
	}
	code := domain.RoomCode(p.RoomCode)

	// A guest that joined with an empty userId was assigned one
	// server-side; recover it from the subscription so the leave can
	// still remove the right participant.
	if p.UserID == "" {
		if id, ok := ctl.Hub.UserOf(code, conn); ok {
			p.UserID = string(id)
		}
	}

	ctl.Hub.Unsubscribe(code, conn)

	snap, found, err := ctl.Members.Leave(ctx, code, p.UserID)
	if err != nil {
		log.Error().Err(err).Str("module", "gateway").Str("room", p.RoomCode).Msg("leave_room failed")
		return
	}
	if found {
		ctl.Hub.Broadcast(code, roomDataMsg{Type: "room_data", Snapshot: snap})
	}
}

func (ctl *Controller) handleToggleCollaborative(ctx context.Context, data []byte) {
	var p struct {
		Type     string `json:"type"`
		RoomCode string `json:"roomCode"`
		UserID   string `json:"userId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "gateway").Msg("bad toggle_collaborative payload")
		return
	}
	code := domain.RoomCode(p.RoomCode)

	collaborative, applied, err := ctl.Moderation.ToggleCollaborative(ctx, code, p.UserID)
	if err != nil {
		log.Error().Err(err).Str("module", "gateway").Str("room", p.RoomCode).Msg("toggle_collaborative failed")
		return
	}
	if applied {
		ctl.Hub.Broadcast(code, roomUpdateMsg{Type: "room_update", IsCollaborative: collaborative})
	}
}

func (ctl *Controller) handleToggleKing(ctx context.Context, data []byte) {
	var p struct {
		Type         string `json:"type"`
		RoomCode     string `json:"roomCode"`
		TargetUserID string `json:"targetUserId"`
		RequesterID  string `json:"requesterId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "gateway").Msg("bad toggle_king payload")
		return
	}
	code := domain.RoomCode(p.RoomCode)

	snap, applied, err := ctl.Moderation.ToggleKing(ctx, code, p.TargetUserID, p.RequesterID)
	if err != nil {
		log.Error().Err(err).Str("module", "gateway").Str("room", p.RoomCode).Msg("toggle_king failed")
		return
	}
	if applied {
		ctl.Hub.Broadcast(code, roomDataMsg{Type: "room_data", Snapshot: snap})
	}
}
