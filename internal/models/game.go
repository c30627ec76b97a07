package models

import (
	"time"

	"github.com/google/uuid"
)

// GameMode defines how a game was started.
type GameMode string

const (
	GameModeSolo      GameMode = "SOLO"
	GameModeChallenge GameMode = "CHALLENGE"
)

// GameStatus defines the persisted status of a game.
type GameStatus string

const (
	GameStatusWaiting  GameStatus = "WAITING"
	GameStatusResolved GameStatus = "RESOLVED"
	GameStatusExpired  GameStatus = "EXPIRED"
)

// UntimedDuration is the sentinel for games with no time limit.
const UntimedDuration = -1

// Game represents one item-collection match. Player2ID is nil until an
// opponent joins a challenge; WinnerID is nil until resolution and is
// written at most once.
type Game struct {
	ID              uuid.UUID  `json:"id"`
	Mode            GameMode   `json:"mode"`
	Status          GameStatus `json:"status"`
	Player1ID       *uuid.UUID `json:"player1_id,omitempty"`
	Player2ID       *uuid.UUID `json:"player2_id,omitempty"`
	WinnerID        *uuid.UUID `json:"winner_id,omitempty"`
	Items           []string   `json:"items"`
	DurationSeconds int        `json:"duration_seconds"`
	CreatedAt       time.Time  `json:"created_at"`
}
