// Package client is a headless room member: it dials the sync server,
// follows inbound reconciliation against a local playback clock, and,
// when it holds playback authority, drives the actor-side heartbeat.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	gosync "sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/auramusic/syncroom/internal/app"
	"github.com/auramusic/syncroom/internal/domain"
	"github.com/auramusic/syncroom/internal/songs"
	"github.com/auramusic/syncroom/internal/sync"
)

// maxChatHistory bounds retained chat; the room protocol itself sets
// no cap, so the client must.
const maxChatHistory = 500

type Options struct {
	ServerURL string // ws:// or wss:// base, e.g. ws://localhost:8080
	RoomCode  domain.RoomCode
	UserID    domain.UserID
	UserName  string

	HeartbeatInterval  time.Duration
	BroadcastThreshold float64
	ApplyThreshold     float64

	Catalog songs.Lookup
}

// Listener is one connection's worth of state: the local player, both
// reconciliation halves, and the role flags learned from snapshots.
type Listener struct {
	opts    Options
	conn    *websocket.Conn
	writeMu gosync.Mutex

	player   *sync.Clock
	follower *sync.Follower
	caster   *sync.Broadcaster

	mu              gosync.Mutex
	isHost          bool
	isKing          bool
	isCollaborative bool
	messages        []domain.ChatMessage
	participants    []domain.UserID
	kings           []domain.UserID
}

func New(opts Options) *Listener {
	l := &Listener{
		opts:   opts,
		player: sync.NewClock(),
		caster: sync.NewBroadcaster(opts.BroadcastThreshold),
	}
	l.follower = sync.NewFollower(opts.UserID, l.player, opts.Catalog, l.CanControl, opts.ApplyThreshold)
	return l
}

// CanControl reports the current permission flag; local controls check
// it at the point of invocation. It is UX convenience only — the
// server gates every mutating event regardless.
func (l *Listener) CanControl() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isHost || l.isKing || l.isCollaborative
}

func (l *Listener) Messages() []domain.ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.ChatMessage(nil), l.messages...)
}

func (l *Listener) Player() *sync.Clock { return l.player }

// Run dials, joins the room and blocks in the read loop until the
// context ends or the connection drops.
func (l *Listener) Run(ctx context.Context) error {
	url := fmt.Sprintf("%s/api/ws/sync", l.opts.ServerURL)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	l.conn = conn
	defer conn.Close()

	if err := l.send(map[string]any{
		"type":     "join_room",
		"roomCode": l.opts.RoomCode,
		"userId":   l.opts.UserID,
	}); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go l.heartbeat(ctx)

	// The read loop blocks in ReadMessage, so cancellation must close
	// the connection out from under it; a courtesy leave_room goes out
	// first while the socket is still writable.
	go func() {
		<-ctx.Done()
		l.leave()
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		l.handle(ctx, data)
	}
}

func (l *Listener) send(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	return l.conn.WriteMessage(websocket.TextMessage, b)
}

func (l *Listener) leave() {
	_ = l.send(map[string]any{
		"type":     "leave_room",
		"roomCode": l.opts.RoomCode,
		"userId":   l.opts.UserID,
	})
}

func (l *Listener) handle(ctx context.Context, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "client").Msg("bad json")
		return
	}

	switch env.Type {
	case "room_data":
		l.handleRoomData(ctx, data)
	case "room_update":
		l.handleRoomUpdate(data)
	case "playback_sync":
		l.handlePlaybackSync(ctx, data)
	case "new_message":
		l.handleNewMessage(data)
	case "queue_updated", "pong":
		// queue presentation is up to the embedding UI
	default:
		log.Warn().Str("module", "client").Str("type", env.Type).Msg("unknown event")
	}
}

func (l *Listener) handleRoomData(ctx context.Context, data []byte) {
	var snap struct {
		Type string `json:"type"`
		app.Snapshot
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Error().Err(err).Str("module", "client").Msg("bad room_data")
		return
	}

	l.mu.Lock()
	l.isHost = snap.Host == l.opts.UserID
	l.isKing = false
	for _, k := range snap.Kings {
		if k == l.opts.UserID {
			l.isKing = true
		}
	}
	l.isCollaborative = snap.IsCollaborative
	l.participants = snap.Participants
	l.kings = snap.Kings
	isActor := l.isHost || l.isKing
	l.mu.Unlock()

	// Actors keep their own clock authoritative; only plain followers
	// take the snapshot's playback state.
	if !isActor {
		if err := l.follower.ApplySnapshot(ctx, snap.CurrentSong, snap.IsPlaying, snap.CurrentTime); err != nil {
			log.Warn().Err(err).Str("module", "client").Msg("initial sync failed")
		}
	}
}

func (l *Listener) handleRoomUpdate(data []byte) {
	var p struct {
		Type            string `json:"type"`
		IsCollaborative bool   `json:"isCollaborative"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	l.mu.Lock()
	l.isCollaborative = p.IsCollaborative
	l.mu.Unlock()
}

func (l *Listener) handlePlaybackSync(ctx context.Context, data []byte) {
	var p struct {
		Type        string        `json:"type"`
		IsPlaying   bool          `json:"isPlaying"`
		CurrentTime float64       `json:"currentTime"`
		SongID      domain.SongID `json:"songId"`
		UserID      domain.UserID `json:"userId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "client").Msg("bad playback_sync")
		return
	}
	if err := l.follower.ApplySync(ctx, sync.SyncMessage{
		IsPlaying:   p.IsPlaying,
		CurrentTime: p.CurrentTime,
		SongID:      p.SongID,
		UserID:      p.UserID,
	}); err != nil {
		log.Warn().Err(err).Str("module", "client").Msg("sync apply failed")
	}
}

func (l *Listener) handleNewMessage(data []byte) {
	var msg struct {
		Type string `json:"type"`
		domain.ChatMessage
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	l.mu.Lock()
	l.messages = append(l.messages, msg.ChatMessage)
	if len(l.messages) > maxChatHistory {
		l.messages = l.messages[len(l.messages)-maxChatHistory:]
	}
	l.mu.Unlock()
}
