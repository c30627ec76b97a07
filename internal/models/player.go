package models

import (
	"time"

	"github.com/google/uuid"
)

// Player represents a registered player and their lifetime counters
type Player struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Wins      int       `json:"wins"`
	Losses    int       `json:"losses"`
	CreatedAt time.Time `json:"created_at"`
}
