package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auramusic/syncroom/internal/domain"
)

func TestClockAdvancesOnlyWhilePlaying(t *testing.T) {
	c := NewClock()
	c.Load(domain.Song{ID: "s1"})
	c.Seek(10)

	assert.InDelta(t, 10, c.Position(), 0.01, "paused clock holds position")

	c.SetPlaying(true)
	time.Sleep(50 * time.Millisecond)
	playing := c.Position()
	assert.Greater(t, playing, 10.0)

	c.SetPlaying(false)
	held := c.Position()
	time.Sleep(30 * time.Millisecond)
	assert.InDelta(t, held, c.Position(), 0.01, "pausing freezes the position")
}

func TestClockLoadRewinds(t *testing.T) {
	c := NewClock()
	c.Load(domain.Song{ID: "s1"})
	c.Seek(120)
	c.Load(domain.Song{ID: "s2"})

	id, ok := c.Song()
	require.True(t, ok)
	assert.Equal(t, domain.SongID("s2"), id)
	assert.InDelta(t, 0, c.Position(), 0.01)
}

func TestClockRedundantSetPlayingKeepsPosition(t *testing.T) {
	c := NewClock()
	c.Load(domain.Song{ID: "s1"})
	c.Seek(42)

	c.SetPlaying(false)
	c.SetPlaying(false)
	assert.InDelta(t, 42, c.Position(), 0.01)
}

func TestClockSnapshot(t *testing.T) {
	c := NewClock()
	c.Load(domain.Song{ID: "s1"})
	c.Seek(5)
	c.SetPlaying(true)

	s := c.Snapshot()
	assert.True(t, s.IsPlaying)
	assert.Equal(t, domain.SongID("s1"), s.SongID)
	assert.InDelta(t, 5, s.CurrentTime, 0.2)
}
