package gateway

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/auramusic/syncroom/internal/app"
	"github.com/auramusic/syncroom/internal/config"
	"github.com/auramusic/syncroom/internal/registry"
)

// Controller owns the websocket event surface. One read pump per
// connection delivers inbound events to the services; the hub fans the
// resulting broadcasts back out.
type Controller struct {
	Hub        *Hub
	Members    *app.MembershipManager
	Playback   *app.PlaybackService
	Moderation *app.ModerationService
	Store      registry.Store

	cfg *config.Config
}

func NewController(cfg *config.Config, hub *Hub, members *app.MembershipManager, playback *app.PlaybackService, moderation *app.ModerationService, store registry.Store) *Controller {
	return &Controller{
		Hub:        hub,
		Members:    members,
		Playback:   playback,
		Moderation: moderation,
		Store:      store,
		cfg:        cfg,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades the connection and starts its pumps. The client
// token cookie identifies the connection, not the user; user identity
// arrives with each event and is resolved server-side.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")
	if token == "" {
		token = uuid.NewString()
	}
	log.Info().Str("module", "gateway").Str("conn", token).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "gateway").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.cfg.ReadLimit)

	conn := NewWsConn(ws, ctl.cfg.SendBuffer)
	ctx, cancel := context.WithCancel(ctx)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, token, conn)
}
