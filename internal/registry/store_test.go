package registry

import (
	"context"
	gosync "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auramusic/syncroom/internal/domain"
)

func TestGetOrCreate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	room, err := s.GetOrCreate(ctx, "AB12", "host-1")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("host-1"), room.Host)
	assert.Equal(t, []domain.UserID{"host-1"}, room.Participants)

	// Second call returns the existing room untouched.
	again, err := s.GetOrCreate(ctx, "AB12", "late-rival")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("host-1"), again.Host)
}

func TestAddParticipantIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.GetOrCreate(ctx, "AB12", "host-1")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, found, err := s.AddParticipant(ctx, "AB12", "p1")
		require.NoError(t, err)
		require.True(t, found)
	}
	room, _, err := s.Get(ctx, "AB12")
	require.NoError(t, err)
	assert.Equal(t, []domain.UserID{"host-1", "p1"}, room.Participants)
}

func TestParticipantsNeverDuplicateUnderConcurrentJoins(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.GetOrCreate(ctx, "AB12", "host-1")
	require.NoError(t, err)

	var wg gosync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = s.AddParticipant(ctx, "AB12", "p1")
			_, _, _ = s.RemoveParticipant(ctx, "AB12", "p1")
			_, _, _ = s.AddParticipant(ctx, "AB12", "p1")
		}()
	}
	wg.Wait()

	room, _, err := s.Get(ctx, "AB12")
	require.NoError(t, err)
	seen := map[domain.UserID]int{}
	for _, p := range room.Participants {
		seen[p]++
		assert.LessOrEqual(t, seen[p], 1, "duplicate participant %s", p)
	}
	assert.True(t, room.HasParticipant("host-1"))
}

func TestRemoveParticipantDemotesKing(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.GetOrCreate(ctx, "AB12", "host-1")
	require.NoError(t, err)
	_, _, err = s.AddParticipant(ctx, "AB12", "p1")
	require.NoError(t, err)
	_, _, err = s.SetKing(ctx, "AB12", "p1", true)
	require.NoError(t, err)

	room, found, err := s.RemoveParticipant(ctx, "AB12", "p1")
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, room.HasParticipant("p1"))
	assert.False(t, room.HasKing("p1"), "leaving must strip king status")
}

func TestUnknownRoomMutationIsNoOp(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, found, err := s.RemoveParticipant(ctx, "NOPE", "p1")
	assert.NoError(t, err)
	assert.False(t, found)

	_, found, err = s.ApplyPlayback(ctx, "NOPE", PlaybackDelta{IsPlaying: true})
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestApplyPlayback(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.GetOrCreate(ctx, "AB12", "host-1")
	require.NoError(t, err)

	room, found, err := s.ApplyPlayback(ctx, "AB12", PlaybackDelta{IsPlaying: true, CurrentTime: 42.5, SongID: "s1"})
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, room.IsPlaying)
	assert.Equal(t, 42.5, room.CurrentTime)
	assert.Equal(t, domain.SongID("s1"), room.CurrentSong)

	// Empty song id means "unchanged".
	room, _, err = s.ApplyPlayback(ctx, "AB12", PlaybackDelta{IsPlaying: false, CurrentTime: 50})
	require.NoError(t, err)
	assert.Equal(t, domain.SongID("s1"), room.CurrentSong)
	assert.False(t, room.IsPlaying)
}

func TestSetQueue(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.GetOrCreate(ctx, "AB12", "host-1")
	require.NoError(t, err)

	queue := []domain.SongID{"s1", "s2", "s3"}
	room, found, err := s.SetQueue(ctx, "AB12", queue)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, queue, room.Queue)
}

func TestSetKingAllowsNonParticipant(t *testing.T) {
	// The king set deliberately does not enforce membership; crowning
	// an id that never joined leaves a dangling reference the resolver
	// still honors.
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.GetOrCreate(ctx, "AB12", "host-1")
	require.NoError(t, err)

	room, found, err := s.SetKing(ctx, "AB12", "ghost", true)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, room.HasKing("ghost"))
	assert.False(t, room.HasParticipant("ghost"))
}
