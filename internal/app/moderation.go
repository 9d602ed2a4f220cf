package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/auramusic/syncroom/internal/directory"
	"github.com/auramusic/syncroom/internal/domain"
	"github.com/auramusic/syncroom/internal/registry"
	"github.com/auramusic/syncroom/internal/songs"
)

// ModerationService handles the host-only role-management surface:
// crowning kings and toggling collaborative mode.
type ModerationService struct {
	store   registry.Store
	dir     directory.Directory
	catalog songs.Lookup
}

func NewModerationService(store registry.Store, dir directory.Directory, catalog songs.Lookup) *ModerationService {
	return &ModerationService{store: store, dir: dir, catalog: catalog}
}

// ToggleCollaborative flips the room-wide collaborative flag. Non-host
// callers are silently dropped.
func (m *ModerationService) ToggleCollaborative(ctx context.Context, code domain.RoomCode, rawUserID string) (collaborative bool, applied bool, err error) {
	userID := m.dir.Resolve(ctx, rawUserID)

	room, ok, err := m.store.Get(ctx, code)
	if err != nil || !ok {
		return false, false, err
	}
	if !domain.CanManageRoom(room, userID) {
		log.Debug().Str("module", "app.moderation").Str("room", string(code)).Str("user", string(userID)).Msg("toggle_collaborative dropped: not host")
		return false, false, nil
	}

	room, ok, err = m.store.SetCollaborative(ctx, code, !room.IsCollaborative)
	if err != nil || !ok {
		return false, false, err
	}
	log.Info().Str("module", "app.moderation").Str("room", string(code)).Bool("collaborative", room.IsCollaborative).Msg("collaborative mode toggled")
	return room.IsCollaborative, true, nil
}

// ToggleKing grants or revokes playback authority for the target user.
// The toggle is read-modify-write: the current king set decides the
// direction. Membership of the target is deliberately not checked,
// matching the registry's loose king-set invariant.
func (m *ModerationService) ToggleKing(ctx context.Context, code domain.RoomCode, rawTargetID, rawRequesterID string) (*Snapshot, bool, error) {
	targetID := m.dir.Resolve(ctx, rawTargetID)
	requesterID := m.dir.Resolve(ctx, rawRequesterID)

	room, ok, err := m.store.Get(ctx, code)
	if err != nil || !ok {
		return nil, false, err
	}
	if !domain.CanManageRoom(room, requesterID) {
		log.Debug().Str("module", "app.moderation").Str("room", string(code)).Str("user", string(requesterID)).Msg("toggle_king dropped: not host")
		return nil, false, nil
	}

	enabled := !room.HasKing(targetID)
	room, ok, err = m.store.SetKing(ctx, code, targetID, enabled)
	if err != nil || !ok {
		return nil, false, err
	}
	log.Info().Str("module", "app.moderation").Str("room", string(code)).Str("target", string(targetID)).Bool("king", enabled).Msg("king toggled")
	return buildSnapshot(ctx, m.catalog, room), true, nil
}
