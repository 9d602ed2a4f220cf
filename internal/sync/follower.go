package sync

import (
	"context"
	"errors"
	gosync "sync"

	"github.com/rs/zerolog/log"

	"github.com/auramusic/syncroom/internal/domain"
	"github.com/auramusic/syncroom/internal/songs"
)

// ErrControlsLocked means a user-initiated mutation was refused because
// the user lacks playback authority in a non-collaborative room. This
// lock is UX-side only; the server re-checks authority regardless.
var ErrControlsLocked = errors.New("playback controls locked")

// Player is the local playback surface the follower drives. Clock
// implements it; a real client would wrap an audio element the same
// way.
type Player interface {
	Song() (domain.SongID, bool)
	Playing() bool
	Position() float64
	Load(domain.Song)
	SetPlaying(bool)
	Seek(float64)
}

// SyncMessage is an inbound playback_sync as the follower sees it.
type SyncMessage struct {
	IsPlaying   bool
	CurrentTime float64
	SongID      domain.SongID
	UserID      domain.UserID
}

// Follower applies inbound reconciliation against the local player.
//
// Every mutation funnels through one path carrying a forced flag:
// user-initiated calls pass forced=false and hit the control lock,
// inbound reconciliation passes forced=true and bypasses it. The lock
// that stops an unauthorized outbound action must never stop the
// inbound correction the follower is supposed to obey.
type Follower struct {
	mu      gosync.Mutex
	self    domain.UserID
	player  Player
	catalog songs.Lookup

	// canControl reports the current permission flag; re-read at the
	// point of invocation, never cached across role changes.
	canControl func() bool

	applyThreshold float64

	// lastLoadStarted guards against a duplicate fetch when two sync
	// messages naming the same new track land close together.
	lastLoadStarted domain.SongID
}

func NewFollower(self domain.UserID, player Player, catalog songs.Lookup, canControl func() bool, applyThreshold float64) *Follower {
	return &Follower{
		self:           self,
		player:         player,
		catalog:        catalog,
		canControl:     canControl,
		applyThreshold: applyThreshold,
	}
}

// SetPlaying is the single play/pause mutation path.
func (f *Follower) SetPlaying(playing, forced bool) error {
	if !forced && !f.canControl() {
		return ErrControlsLocked
	}
	if f.player.Playing() != playing {
		f.player.SetPlaying(playing)
	}
	return nil
}

// Seek is the single seek mutation path.
func (f *Follower) Seek(pos float64, forced bool) error {
	if !forced && !f.canControl() {
		return ErrControlsLocked
	}
	f.player.Seek(pos)
	return nil
}

// LoadSong is the single track-change mutation path.
func (f *Follower) LoadSong(ctx context.Context, id domain.SongID, forced bool) error {
	if !forced && !f.canControl() {
		return ErrControlsLocked
	}
	return f.load(ctx, id)
}

func (f *Follower) load(ctx context.Context, id domain.SongID) error {
	song, err := f.catalog.Lookup(ctx, id)
	if err != nil {
		f.mu.Lock()
		if f.lastLoadStarted == id {
			// Allow a later message to retry the same track.
			f.lastLoadStarted = ""
		}
		f.mu.Unlock()
		return err
	}
	f.player.Load(*song)
	return nil
}

// ApplySync reconciles one inbound playback_sync.
func (f *Follower) ApplySync(ctx context.Context, msg SyncMessage) error {
	if msg.UserID != "" && msg.UserID == f.self {
		// Echo: our own broadcast routed back through another
		// connection. Reacting would fight our own clock.
		return nil
	}
	return f.reconcile(ctx, msg.SongID, nil, msg.IsPlaying, msg.CurrentTime)
}

// ApplySnapshot performs the initial sync from a room_data snapshot.
// The snapshot may carry populated song metadata, saving the catalog
// round-trip a bare id would need.
func (f *Follower) ApplySnapshot(ctx context.Context, song *domain.Song, isPlaying bool, currentTime float64) error {
	var id domain.SongID
	if song != nil {
		id = song.ID
		if song.AudioURL == "" {
			song = nil // unpopulated, fall back to lookup
		}
	}
	if id == "" {
		return nil
	}
	return f.reconcile(ctx, id, song, isPlaying, currentTime)
}

func (f *Follower) reconcile(ctx context.Context, id domain.SongID, populated *domain.Song, isPlaying bool, currentTime float64) error {
	if id != "" {
		loaded, hasLoaded := f.player.Song()
		f.mu.Lock()
		needsLoad := (!hasLoaded || id != loaded) && id != f.lastLoadStarted
		if needsLoad {
			f.lastLoadStarted = id
		}
		f.mu.Unlock()

		if needsLoad {
			if populated != nil {
				f.player.Load(*populated)
			} else if err := f.load(ctx, id); err != nil {
				log.Warn().Err(err).Str("module", "sync.follower").Str("song", string(id)).Msg("sync load failed")
				return err
			}
		}
	}

	// Only flip play state on an actual change; redundant pause/resume
	// calls are audible on real players.
	if err := f.SetPlaying(isPlaying, true); err != nil {
		return err
	}

	// Tolerate sub-threshold jitter instead of constantly re-seeking.
	// The threshold sits below the actor's broadcast suppression
	// threshold so every correction that does get emitted is large
	// enough to act on.
	if abs(currentTime-f.player.Position()) > f.applyThreshold {
		return f.Seek(currentTime, true)
	}
	return nil
}
