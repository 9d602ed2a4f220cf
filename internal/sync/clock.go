package sync

import (
	"sync"
	"time"

	"github.com/auramusic/syncroom/internal/domain"
)

// Clock is a local playback position that advances in real time while
// playing. It is the follower's (and actor's) model of the audio
// element: no media is touched, only position/state bookkeeping.
type Clock struct {
	mu      sync.Mutex
	song    *domain.Song
	playing bool
	base    float64   // position at the last state change
	since   time.Time // when base was captured
}

func NewClock() *Clock { return &Clock{} }

func (c *Clock) Song() (domain.SongID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.song == nil {
		return "", false
	}
	return c.song.ID, true
}

func (c *Clock) CurrentSong() *domain.Song {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.song
}

func (c *Clock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

func (c *Clock) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position()
}

// position assumes c.mu is held.
func (c *Clock) position() float64 {
	if !c.playing {
		return c.base
	}
	return c.base + time.Since(c.since).Seconds()
}

// Load swaps the track and rewinds to zero. Play/pause state is kept,
// mirroring a player that keeps rolling across a track change.
func (c *Clock) Load(song domain.Song) {
	c.mu.Lock()
	c.song = &song
	c.base = 0
	c.since = time.Now()
	c.mu.Unlock()
}

func (c *Clock) SetPlaying(playing bool) {
	c.mu.Lock()
	if c.playing != playing {
		// Fold the elapsed run into base before flipping state.
		c.base = c.position()
		c.since = time.Now()
		c.playing = playing
	}
	c.mu.Unlock()
}

func (c *Clock) Seek(pos float64) {
	c.mu.Lock()
	c.base = pos
	c.since = time.Now()
	c.mu.Unlock()
}

// Snapshot returns the broadcastable state in one locked read.
func (c *Clock) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := State{IsPlaying: c.playing, CurrentTime: c.position()}
	if c.song != nil {
		s.SongID = c.song.ID
	}
	return s
}
