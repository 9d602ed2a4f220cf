package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auramusic/syncroom/internal/directory"
	"github.com/auramusic/syncroom/internal/domain"
	"github.com/auramusic/syncroom/internal/registry"
)

func newPlayback(t *testing.T) (*PlaybackService, *ModerationService, registry.Store) {
	t.Helper()
	store := registry.NewMemoryStore()
	dir := directory.Static{}
	_, err := store.GetOrCreate(context.Background(), "AB12", "h1")
	require.NoError(t, err)
	_, _, err = store.AddParticipant(context.Background(), "AB12", "p1")
	require.NoError(t, err)
	return NewPlaybackService(store, dir), NewModerationService(store, dir, testCatalog), store
}

func TestApplyFromHost(t *testing.T) {
	pb, _, store := newPlayback(t)
	ctx := context.Background()

	userID, applied, err := pb.Apply(ctx, "AB12", "h1", registry.PlaybackDelta{IsPlaying: true, CurrentTime: 0, SongID: "s1"})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, domain.UserID("h1"), userID)

	room, _, _ := store.Get(ctx, "AB12")
	assert.True(t, room.IsPlaying)
	assert.Equal(t, domain.SongID("s1"), room.CurrentSong)
}

func TestApplyFromPlainParticipantIsDropped(t *testing.T) {
	pb, _, store := newPlayback(t)
	ctx := context.Background()

	_, applied, err := pb.Apply(ctx, "AB12", "p1", registry.PlaybackDelta{IsPlaying: true, CurrentTime: 10})
	require.NoError(t, err)
	assert.False(t, applied)

	room, _, _ := store.Get(ctx, "AB12")
	assert.False(t, room.IsPlaying, "unauthorized update must not persist")
	assert.Zero(t, room.CurrentTime)
}

func TestApplyFromParticipantInCollaborativeRoom(t *testing.T) {
	pb, _, store := newPlayback(t)
	ctx := context.Background()
	_, _, err := store.SetCollaborative(ctx, "AB12", true)
	require.NoError(t, err)

	_, applied, err := pb.Apply(ctx, "AB12", "p1", registry.PlaybackDelta{IsPlaying: true, CurrentTime: 10})
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestApplyNegativeTimeIsDropped(t *testing.T) {
	pb, _, store := newPlayback(t)
	ctx := context.Background()

	_, applied, err := pb.Apply(ctx, "AB12", "h1", registry.PlaybackDelta{CurrentTime: -3})
	require.NoError(t, err)
	assert.False(t, applied)

	room, _, _ := store.Get(ctx, "AB12")
	assert.Zero(t, room.CurrentTime)
}

func TestApplyUnknownRoomIsNoOp(t *testing.T) {
	pb, _, _ := newPlayback(t)

	_, applied, err := pb.Apply(context.Background(), "NOPE", "h1", registry.PlaybackDelta{IsPlaying: true})
	assert.NoError(t, err)
	assert.False(t, applied)
}

// Promotion grants playback authority immediately; demotion revokes it
// just as immediately, with the gate re-evaluated on each event.
func TestKingPromotionDemotionCycle(t *testing.T) {
	pb, mod, _ := newPlayback(t)
	ctx := context.Background()

	_, applied, err := pb.Apply(ctx, "AB12", "p1", registry.PlaybackDelta{IsPlaying: true})
	require.NoError(t, err)
	require.False(t, applied, "before promotion p1 has no authority")

	snap, ok, err := mod.ToggleKing(ctx, "AB12", "p1", "h1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, snap.Kings, domain.UserID("p1"))

	_, applied, err = pb.Apply(ctx, "AB12", "p1", registry.PlaybackDelta{IsPlaying: true, CurrentTime: 5})
	require.NoError(t, err)
	assert.True(t, applied, "king p1 may control playback")

	snap, ok, err = mod.ToggleKing(ctx, "AB12", "p1", "h1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, snap.Kings, domain.UserID("p1"))

	_, applied, err = pb.Apply(ctx, "AB12", "p1", registry.PlaybackDelta{IsPlaying: false, CurrentTime: 6})
	require.NoError(t, err)
	assert.False(t, applied, "demoted p1 is dropped again")
}
