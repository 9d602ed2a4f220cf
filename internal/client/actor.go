package client

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/auramusic/syncroom/internal/domain"
	"github.com/auramusic/syncroom/internal/sync"
)

// heartbeat re-offers the local state every interval while playing.
// Only connections with playback authority run the emission; the offer
// gate keeps steady-state chatter to one message per interval.
func (l *Listener) heartbeat(ctx context.Context) {
	interval := l.opts.HeartbeatInterval
	if interval <= 0 {
		interval = 2500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !l.CanControl() || !l.player.Playing() {
				continue
			}
			l.broadcast(l.player.Snapshot())
		}
	}
}

// broadcast pushes state through the suppression gate and, if it
// passes, onto the wire.
func (l *Listener) broadcast(s sync.State) {
	if !l.caster.Offer(s) {
		return
	}
	if err := l.send(map[string]any{
		"type":        "playback_update",
		"roomCode":    l.opts.RoomCode,
		"isPlaying":   s.IsPlaying,
		"currentTime": s.CurrentTime,
		"songId":      s.SongID,
		"userId":      l.opts.UserID,
	}); err != nil {
		log.Warn().Err(err).Str("module", "client").Msg("playback_update send failed")
	}
}

// Play, Pause, Seek and PlaySong are the user-facing controls. Each
// goes through the follower's locked mutation path with forced=false,
// then triggers an immediate broadcast attempt.

func (l *Listener) Play() error {
	if err := l.follower.SetPlaying(true, false); err != nil {
		return err
	}
	l.broadcast(l.player.Snapshot())
	return nil
}

func (l *Listener) Pause() error {
	if err := l.follower.SetPlaying(false, false); err != nil {
		return err
	}
	l.broadcast(l.player.Snapshot())
	return nil
}

func (l *Listener) Seek(pos float64) error {
	if err := l.follower.Seek(pos, false); err != nil {
		return err
	}
	l.broadcast(l.player.Snapshot())
	return nil
}

func (l *Listener) PlaySong(ctx context.Context, id domain.SongID) error {
	if err := l.follower.LoadSong(ctx, id, false); err != nil {
		return err
	}
	if err := l.follower.SetPlaying(true, false); err != nil {
		return err
	}
	l.broadcast(l.player.Snapshot())
	return nil
}

// SendChat relays a chat line; delivery comes back via new_message.
func (l *Listener) SendChat(text string) error {
	return l.send(map[string]any{
		"type":     "send_message",
		"roomCode": l.opts.RoomCode,
		"message":  text,
		"user":     l.opts.UserName,
	})
}
