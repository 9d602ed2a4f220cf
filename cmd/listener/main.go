// The listener joins a room as a headless member: it follows the
// room's playback against a simulated local clock and logs what it
// hears. With --song it acts, starting a track and heartbeating.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/auramusic/syncroom/internal/client"
	"github.com/auramusic/syncroom/internal/domain"
	"github.com/auramusic/syncroom/internal/songs"
)

func main() {
	server := pflag.String("server", "ws://localhost:8080", "sync server base URL")
	room := pflag.String("room", "", "room code to join")
	user := pflag.String("user", "", "user id (empty means guest)")
	name := pflag.String("name", "listener", "display name for chat")
	songID := pflag.String("song", "", "song id to start playing on join")
	catalogURL := pflag.String("catalog", "", "song catalog base URL (empty uses a built-in demo catalog)")
	pflag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *room == "" {
		log.Fatal().Msg("--room is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var catalog songs.Lookup
	if *catalogURL != "" {
		catalog = songs.NewHTTPCatalog(*catalogURL)
	} else {
		catalog = songs.StaticCatalog{
			"demo-1": {ID: "demo-1", Title: "Demo One", Artist: "Aura", AudioURL: "file://demo-1", Duration: 240},
			"demo-2": {ID: "demo-2", Title: "Demo Two", Artist: "Aura", AudioURL: "file://demo-2", Duration: 187},
		}
	}

	l := client.New(client.Options{
		ServerURL:          *server,
		RoomCode:           domain.RoomCode(*room),
		UserID:             domain.UserID(*user),
		UserName:           *name,
		HeartbeatInterval:  2500 * time.Millisecond,
		BroadcastThreshold: 1.0,
		ApplyThreshold:     0.5,
		Catalog:            catalog,
	})

	if *songID != "" {
		go func() {
			// Give the join round-trip a moment so role flags from
			// room_data are in place before acting.
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			if err := l.PlaySong(ctx, domain.SongID(*songID)); err != nil {
				log.Error().Err(err).Msg("failed to start song")
			}
		}()
	}

	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s := l.Player().Snapshot()
				log.Info().Bool("playing", s.IsPlaying).Str("song", string(s.SongID)).Float64("position", s.CurrentTime).Msg("local state")
			}
		}
	}()

	if err := l.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("listener exited")
		os.Exit(1)
	}
	log.Info().Msg("listener stopped")
}
