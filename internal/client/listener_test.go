package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auramusic/syncroom/internal/songs"
)

// recorderServer accepts one websocket and forwards every inbound
// frame; it never pushes anything, so the listener's read loop stays
// parked in ReadMessage.
func recorderServer(t *testing.T) (*httptest.Server, chan map[string]any) {
	t.Helper()
	msgs := make(chan map[string]any, 8)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var m map[string]any
			if err := conn.ReadJSON(&m); err != nil {
				return
			}
			msgs <- m
		}
	}))
	t.Cleanup(srv.Close)
	return srv, msgs
}

func recv(t *testing.T, msgs chan map[string]any) map[string]any {
	t.Helper()
	select {
	case m := <-msgs:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")
		return nil
	}
}

func TestRunReturnsOnCancel(t *testing.T) {
	srv, msgs := recorderServer(t)

	l := New(Options{
		ServerURL: "ws" + strings.TrimPrefix(srv.URL, "http"),
		RoomCode:  "AB12",
		UserID:    "U",
		Catalog:   songs.StaticCatalog{},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	join := recv(t, msgs)
	require.Equal(t, "join_room", join["type"])

	// Cancellation must unblock the read loop even though the server
	// never sends a frame.
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancel")
	}

	leave := recv(t, msgs)
	assert.Equal(t, "leave_room", leave["type"])
	assert.Equal(t, "U", leave["userId"])
}
