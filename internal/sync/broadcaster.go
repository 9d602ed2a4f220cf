// Package sync implements both halves of the reconciliation protocol:
// the actor-side broadcast discipline and the follower-side
// application of inbound updates against a locally advancing clock.
// The protocol is best-effort and eventually consistent; the last
// authorized writer's broadcast wins.
package sync

import (
	"sync"

	"github.com/auramusic/syncroom/internal/domain"
)

// State is the actor's view of playback at one instant.
type State struct {
	IsPlaying   bool
	SongID      domain.SongID
	CurrentTime float64
}

// Broadcaster decides whether an emission is worth sending. It keeps
// the last snapshot this actor broadcast and suppresses anything that
// differs only by sub-threshold clock advance, so steady-state playing
// costs one message per heartbeat interval instead of one per tick.
type Broadcaster struct {
	mu        sync.Mutex
	threshold float64
	last      State
	primed    bool
}

// NewBroadcaster creates a broadcaster with the given drift threshold
// in seconds. The first offer always emits.
func NewBroadcaster(threshold float64) *Broadcaster {
	return &Broadcaster{threshold: threshold}
}

// Offer compares the state against the last emitted snapshot and
// reports whether to send. An accepted offer becomes the new snapshot;
// a suppressed one leaves it untouched, so drift accumulates against
// the last actually-sent state rather than the last attempt.
func (b *Broadcaster) Offer(s State) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.primed &&
		s.IsPlaying == b.last.IsPlaying &&
		s.SongID == b.last.SongID &&
		abs(s.CurrentTime-b.last.CurrentTime) <= b.threshold {
		return false
	}
	b.last = s
	b.primed = true
	return true
}

// Reset forgets the last snapshot, e.g. after leaving a room.
func (b *Broadcaster) Reset() {
	b.mu.Lock()
	b.primed = false
	b.last = State{}
	b.mu.Unlock()
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
