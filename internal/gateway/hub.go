// Package gateway maps transport connections to room channels and
// fans outbound events to room members. It is constructed once at
// process start and passed by reference; there is no module-level
// connection state.
package gateway

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/auramusic/syncroom/internal/domain"
)

// Hub tracks which connections are subscribed to which room channels.
// A connection may subscribe to several rooms, and a user may hold
// several connections; neither is coupled to Room entity lifetime.
type Hub struct {
	mu    sync.RWMutex
	rooms map[domain.RoomCode]map[Sender]domain.UserID
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[domain.RoomCode]map[Sender]domain.UserID)}
}

func (h *Hub) Subscribe(code domain.RoomCode, conn Sender, user domain.UserID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[code]
	if !ok {
		members = make(map[Sender]domain.UserID)
		h.rooms[code] = members
	}
	members[conn] = user
	log.Info().Str("module", "gateway.hub").Str("room", string(code)).Str("user", string(user)).Msg("subscribed")
}

func (h *Hub) Unsubscribe(code domain.RoomCode, conn Sender) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(code, conn)
}

// Drop removes the connection from every channel it joined. Called on
// transport close; it does not touch room membership — only an
// explicit leave does that.
func (h *Hub) Drop(conn Sender) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for code := range h.rooms {
		h.drop(code, conn)
	}
}

// drop assumes h.mu is held.
func (h *Hub) drop(code domain.RoomCode, conn Sender) {
	members, ok := h.rooms[code]
	if !ok {
		return
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(h.rooms, code)
	}
}

// UserOf reports the user id a connection subscribed to the room with.
func (h *Hub) UserOf(code domain.RoomCode, conn Sender) (domain.UserID, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	user, ok := h.rooms[code][conn]
	return user, ok
}

func (h *Hub) MemberCount(code domain.RoomCode) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[code])
}

// Broadcast sends to every connection in the room, sender included.
func (h *Hub) Broadcast(code domain.RoomCode, v any) {
	h.send(code, nil, v)
}

// BroadcastExcept skips the sender's own connection; used for
// playback_sync and queue_updated so the actor does not hear itself on
// the connection that spoke.
func (h *Hub) BroadcastExcept(code domain.RoomCode, except Sender, v any) {
	h.send(code, except, v)
}

func (h *Hub) send(code domain.RoomCode, except Sender, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "gateway.hub").Msg("broadcast marshal")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	sent, dropped := 0, 0
	for conn, user := range h.rooms[code] {
		if conn == except {
			continue
		}
		if err := conn.TrySend(b); err != nil {
			dropped++
			log.Warn().Err(err).Str("module", "gateway.hub").Str("room", string(code)).Str("user", string(user)).Msg("send dropped")
			continue
		}
		sent++
	}
	log.Debug().Str("module", "gateway.hub").Str("room", string(code)).Int("sent_to", sent).Int("dropped", dropped).Msg("broadcast result")
}
