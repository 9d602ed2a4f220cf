package gateway

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/auramusic/syncroom/internal/domain"
)

type newMessageMsg struct {
	Type string `json:"type"`
	domain.ChatMessage
}

// handleSendMessage relays a chat message to the whole room, sender
// included: the sender's own UI renders it from the broadcast rather
// than optimistically. Nothing is persisted and late joiners get no
// backlog.
func (ctl *Controller) handleSendMessage(data []byte) {
	var p struct {
		Type     string `json:"type"`
		RoomCode string `json:"roomCode"`
		Message  string `json:"message"`
		User     string `json:"user"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "gateway").Msg("bad send_message payload")
		return
	}

	ctl.Hub.Broadcast(domain.RoomCode(p.RoomCode), newMessageMsg{
		Type: "new_message",
		ChatMessage: domain.ChatMessage{
			Text:      p.Message,
			User:      p.User,
			Timestamp: time.Now(),
		},
	})
}
