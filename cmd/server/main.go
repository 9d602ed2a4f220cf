package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/auramusic/syncroom/internal/app"
	"github.com/auramusic/syncroom/internal/config"
	"github.com/auramusic/syncroom/internal/directory"
	"github.com/auramusic/syncroom/internal/gateway"
	"github.com/auramusic/syncroom/internal/registry"
	"github.com/auramusic/syncroom/internal/songs"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var store registry.Store
	var dir directory.Directory

	switch cfg.Store {
	case "memory":
		store = registry.NewMemoryStore()
		dir = directory.Static{}
		log.Info().Msg("using in-memory room store")
	default:
		rdb := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			PoolSize:     10,
			MinIdleConns: 5,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
		}
		store = registry.NewRedisStore(rdb)
		dir = directory.NewRedisDirectory(rdb, cfg.IdentityPrefix)
		log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
	}

	var catalog songs.Lookup
	if cfg.SongLookupURL != "" {
		catalog = songs.NewHTTPCatalog(cfg.SongLookupURL)
	} else {
		catalog = songs.StaticCatalog{}
		log.Warn().Msg("no song_lookup_url configured, snapshots will carry bare song ids")
	}

	hub := gateway.NewHub()
	members := app.NewMembershipManager(store, dir, catalog)
	playback := app.NewPlaybackService(store, dir)
	moderation := app.NewModerationService(store, dir, catalog)
	ctl := gateway.NewController(cfg, hub, members, playback, moderation, store)

	r := gateway.SetupRouter(ctx, cfg, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("syncroom server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
