package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/auramusic/syncroom/internal/directory"
	"github.com/auramusic/syncroom/internal/domain"
	"github.com/auramusic/syncroom/internal/registry"
)

// PlaybackService is the playback state machine: it gates, applies and
// persists playback-mutating commands. A denied or malformed command
// is silently dropped; the caller's own client-side lock should have
// prevented it, so this path is a backstop, not a user-facing error.
type PlaybackService struct {
	store registry.Store
	dir   directory.Directory
}

func NewPlaybackService(store registry.Store, dir directory.Directory) *PlaybackService {
	return &PlaybackService{store: store, dir: dir}
}

// Apply validates and persists a playback_update. The authority check
// runs fresh against current room state on every call. Returns the
// canonical sender id and whether the delta was applied.
func (p *PlaybackService) Apply(ctx context.Context, code domain.RoomCode, rawUserID string, d registry.PlaybackDelta) (domain.UserID, bool, error) {
	userID := p.dir.Resolve(ctx, rawUserID)

	if d.CurrentTime < 0 {
		log.Warn().Str("module", "app.playback").Str("room", string(code)).Float64("time", d.CurrentTime).Msg("dropping negative playback time")
		return userID, false, nil
	}

	room, ok, err := p.store.Get(ctx, code)
	if err != nil {
		return userID, false, err
	}
	if !ok {
		return userID, false, nil
	}
	if !domain.CanControlPlayback(room, userID) {
		log.Debug().Str("module", "app.playback").Str("room", string(code)).Str("user", string(userID)).Msg("playback update dropped: not authorized")
		return userID, false, nil
	}

	if _, ok, err = p.store.ApplyPlayback(ctx, code, d); err != nil || !ok {
		return userID, false, err
	}
	return userID, true, nil
}
