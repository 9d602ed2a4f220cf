package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstOfferAlwaysEmits(t *testing.T) {
	b := NewBroadcaster(1.0)
	assert.True(t, b.Offer(State{IsPlaying: true, SongID: "s1", CurrentTime: 0}))
}

func TestSteadyPlaybackIsSuppressed(t *testing.T) {
	b := NewBroadcaster(1.0)

	assert.True(t, b.Offer(State{IsPlaying: true, SongID: "s1", CurrentTime: 10.0}))
	// Heartbeat fires again a moment later with only sub-threshold
	// clock advance: exactly one emission for the pair.
	assert.False(t, b.Offer(State{IsPlaying: true, SongID: "s1", CurrentTime: 10.4}))
}

func TestPlayStateChangeEmits(t *testing.T) {
	b := NewBroadcaster(1.0)

	assert.True(t, b.Offer(State{IsPlaying: true, SongID: "s1", CurrentTime: 10}))
	assert.True(t, b.Offer(State{IsPlaying: false, SongID: "s1", CurrentTime: 10.1}))
}

func TestSongChangeEmits(t *testing.T) {
	b := NewBroadcaster(1.0)

	assert.True(t, b.Offer(State{IsPlaying: true, SongID: "s1", CurrentTime: 200}))
	assert.True(t, b.Offer(State{IsPlaying: true, SongID: "s2", CurrentTime: 200.2}))
}

// Seek discipline: 100.2 then 100.6 suppresses the second update,
// while a jump to 102.0 clears the threshold and emits.
func TestSeekThreshold(t *testing.T) {
	b := NewBroadcaster(1.0)

	assert.True(t, b.Offer(State{IsPlaying: true, SongID: "s1", CurrentTime: 100.2}))
	assert.False(t, b.Offer(State{IsPlaying: true, SongID: "s1", CurrentTime: 100.6}))
	assert.True(t, b.Offer(State{IsPlaying: true, SongID: "s1", CurrentTime: 102.0}))
}

func TestSuppressionComparesAgainstLastSent(t *testing.T) {
	b := NewBroadcaster(1.0)

	assert.True(t, b.Offer(State{IsPlaying: true, SongID: "s1", CurrentTime: 10.0}))
	// Each suppressed offer drifts a little further from the last
	// *sent* state; drift accumulates until the gate opens.
	assert.False(t, b.Offer(State{IsPlaying: true, SongID: "s1", CurrentTime: 10.6}))
	assert.True(t, b.Offer(State{IsPlaying: true, SongID: "s1", CurrentTime: 11.2}))
}

func TestResetForgetsSnapshot(t *testing.T) {
	b := NewBroadcaster(1.0)

	assert.True(t, b.Offer(State{IsPlaying: true, SongID: "s1", CurrentTime: 10}))
	b.Reset()
	assert.True(t, b.Offer(State{IsPlaying: true, SongID: "s1", CurrentTime: 10}))
}
