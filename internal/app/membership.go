package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/auramusic/syncroom/internal/directory"
	"github.com/auramusic/syncroom/internal/domain"
	"github.com/auramusic/syncroom/internal/registry"
	"github.com/auramusic/syncroom/internal/songs"
)

// MembershipManager resolves identities and moves users in and out of
// rooms. Its outputs are full snapshots; the gateway decides who hears
// them.
type MembershipManager struct {
	store   registry.Store
	dir     directory.Directory
	catalog songs.Lookup
}

func NewMembershipManager(store registry.Store, dir directory.Directory, catalog songs.Lookup) *MembershipManager {
	return &MembershipManager{store: store, dir: dir, catalog: catalog}
}

// Join creates the room on first contact (joiner becomes host) or
// idempotently adds the resolved id to an existing one. The returned
// snapshot goes to the whole room: existing members must learn about
// the new participant too.
func (m *MembershipManager) Join(ctx context.Context, code domain.RoomCode, rawUserID string) (*Snapshot, domain.UserID, error) {
	userID := m.dir.Resolve(ctx, rawUserID)

	room, ok, err := m.store.Get(ctx, code)
	if err != nil {
		return nil, userID, err
	}
	if !ok {
		room, err = m.store.GetOrCreate(ctx, code, userID)
		if err != nil {
			return nil, userID, err
		}
		log.Info().Str("module", "app.membership").Str("room", string(code)).Str("host", string(userID)).Msg("room created on join")
	} else if userID != "" && !room.HasParticipant(userID) {
		room, _, err = m.store.AddParticipant(ctx, code, userID)
		if err != nil {
			return nil, userID, err
		}
	}

	return buildSnapshot(ctx, m.catalog, room), userID, nil
}

// Leave removes participant and king status. The host is never
// auto-replaced; the room simply keeps its host id. An unknown room is
// a no-op with no snapshot.
func (m *MembershipManager) Leave(ctx context.Context, code domain.RoomCode, rawUserID string) (*Snapshot, bool, error) {
	userID := m.dir.Resolve(ctx, rawUserID)

	room, ok, err := m.store.RemoveParticipant(ctx, code, userID)
	if err != nil || !ok {
		return nil, false, err
	}
	log.Info().Str("module", "app.membership").Str("room", string(code)).Str("user", string(userID)).Msg("participant left")
	return buildSnapshot(ctx, m.catalog, room), true, nil
}

// SnapshotOf rebuilds the snapshot for an existing room, used after
// role changes.
func (m *MembershipManager) SnapshotOf(ctx context.Context, room *domain.Room) *Snapshot {
	return buildSnapshot(ctx, m.catalog, room)
}
