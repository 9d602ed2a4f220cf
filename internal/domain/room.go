// Package domain contains entities without logic, just meta-data.
package domain

import (
	"errors"
	"time"
)

const MaxRoomCodeLen = 16

var (
	ErrRoomCodeEmpty   = errors.New("room code empty")
	ErrRoomCodeTooLong = errors.New("room code too long")
	ErrNegativeTime    = errors.New("negative playback time")
)

type (
	RoomCode string
	UserID   string
	SongID   string
)

// Room is the persisted unit of synchronized playback state.
// It is stored as a single JSON blob keyed by RoomCode; every mutation
// is a read-modify-write of the whole entity.
type Room struct {
	RoomCode        RoomCode `json:"roomCode"`
	Host            UserID   `json:"host"`
	Participants    []UserID `json:"participants"`
	Kings           []UserID `json:"kings"`
	CurrentSong     SongID   `json:"currentSong,omitempty"`
	IsPlaying       bool     `json:"isPlaying"`
	CurrentTime     float64  `json:"currentTime"`
	Queue           []SongID `json:"queue"`
	IsCollaborative bool     `json:"isCollaborative"`
	IsActive        bool     `json:"isActive"`
	CreatedAt       int64    `json:"createdAt"`
}

// NewRoom builds a fresh room with the creator as host and sole
// participant. Host membership is the creation invariant.
func NewRoom(code RoomCode, host UserID) *Room {
	r := &Room{
		RoomCode:  code,
		Host:      host,
		Kings:     []UserID{},
		Queue:     []SongID{},
		IsActive:  true,
		CreatedAt: time.Now().Unix(),
	}
	if host != "" {
		r.Participants = []UserID{host}
	} else {
		r.Participants = []UserID{}
	}
	return r
}

func ValidateRoomCode(code RoomCode) error {
	if code == "" {
		return ErrRoomCodeEmpty
	}
	if len(code) > MaxRoomCodeLen {
		return ErrRoomCodeTooLong
	}
	return nil
}

// HasParticipant reports membership; the participant set carries no order.
func (r *Room) HasParticipant(id UserID) bool {
	for _, p := range r.Participants {
		if p == id {
			return true
		}
	}
	return false
}

func (r *Room) HasKing(id UserID) bool {
	for _, k := range r.Kings {
		if k == id {
			return true
		}
	}
	return false
}

// Song is playable metadata resolved through the catalog collaborator.
// Duration is advisory; playback positions are never validated against it.
type Song struct {
	ID       SongID  `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	AudioURL string  `json:"audioUrl"`
	Duration float64 `json:"duration,omitempty"`
}

// ChatMessage is transient; it exists only between receipt and fan-out.
type ChatMessage struct {
	Text      string    `json:"text"`
	User      string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
}
