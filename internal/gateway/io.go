package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *Controller) writePump(ctx context.Context, c *WsConn) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "gateway").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "gateway").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, token string, c *WsConn) {
	defer func() {
		log.Info().Str("module", "gateway").Str("conn", token).Msg("readPump closing")
		// Fan-out only: membership in the room entity survives an
		// abrupt disconnect; only an explicit leave removes it.
		ctl.Hub.Drop(c)
		cancel()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "gateway").Str("conn", token).Msg("readPump read error")
				}
				return
			}
			ctl.handleEvent(ctx, c, data)
		}
	}
}

func (ctl *Controller) handleEvent(ctx context.Context, c *WsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "gateway").Msg("bad json")
		return
	}

	switch env.Type {
	case "join_room":
		ctl.handleJoin(ctx, c, data)
	case "leave_room":
		ctl.handleLeave(ctx, c, data)
	case "playback_update":
		ctl.handlePlaybackUpdate(ctx, c, data)
	case "toggle_collaborative":
		ctl.handleToggleCollaborative(ctx, data)
	case "toggle_king":
		ctl.handleToggleKing(ctx, data)
	case "update_queue":
		ctl.handleUpdateQueue(ctx, c, data)
	case "send_message":
		ctl.handleSendMessage(data)
	case "ping":
		ctl.sendJSON(c, map[string]any{"type": "pong"})
	default:
		log.Warn().Str("module", "gateway").Str("type", env.Type).Msg("unknown event")
	}
}

func (ctl *Controller) sendJSON(c *WsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "gateway").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
