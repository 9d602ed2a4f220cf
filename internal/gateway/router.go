package gateway

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/auramusic/syncroom/internal/config"
	"github.com/auramusic/syncroom/internal/domain"
)

// ClientTokenMiddleware pins a stable token to each browser via the
// "ct" cookie. It identifies connections for logging, not users.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("SyncroomSessions", store))
	r.Use(ClientTokenMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Read-only room info for the UI; all mutation flows through the
	// websocket event surface.
	api.GET("/rooms/:code", func(c *gin.Context) {
		code := domain.RoomCode(c.Param("code"))
		room, ok, err := ctl.Store.Get(c.Request.Context(), code)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"roomCode":        room.RoomCode,
			"participants":    len(room.Participants),
			"isPlaying":       room.IsPlaying,
			"isCollaborative": room.IsCollaborative,
			"connections":     ctl.Hub.MemberCount(code),
		})
	})

	api.GET("/ws/sync", func(c *gin.Context) {
		log.Info().Str("module", "gateway").Str("conn", c.GetString("client_token")).Msg("ws sync endpoint hit")
		ctl.HandleWS(ctx, c)
	})

	return r
}
