// Package songs is the boundary to the song catalog collaborator.
// Followers resolve a song id to playable metadata here on track
// change; the sync core is otherwise unaware of what a song is.
package songs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/auramusic/syncroom/internal/domain"
)

var ErrNotFound = errors.New("song not found")

type Lookup interface {
	Lookup(ctx context.Context, id domain.SongID) (*domain.Song, error)
}

// HTTPCatalog fetches song metadata from the catalog service.
type HTTPCatalog struct {
	base   string
	client *http.Client
}

func NewHTTPCatalog(base string) *HTTPCatalog {
	return &HTTPCatalog{
		base:   base,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *HTTPCatalog) Lookup(ctx context.Context, id domain.SongID) (*domain.Song, error) {
	url := fmt.Sprintf("%s/api/songs/%s", c.base, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("song lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("song lookup: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Song domain.Song `json:"song"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("song lookup: %w", err)
	}
	return &body.Song, nil
}

// StaticCatalog serves a fixed set of songs; used by tests and the
// listener's offline mode.
type StaticCatalog map[domain.SongID]domain.Song

func (s StaticCatalog) Lookup(_ context.Context, id domain.SongID) (*domain.Song, error) {
	song, ok := s[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &song, nil
}
