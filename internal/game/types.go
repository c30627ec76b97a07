package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/Tylerea12/trash-panda-pickup/internal/models"
)

// CreateGameRequest carries everything the repository needs to persist a
// new game row.
type CreateGameRequest struct {
	ID              uuid.UUID
	Mode            models.GameMode
	Player1ID       uuid.UUID
	Items           []string
	DurationSeconds int
}

// PlayView is the payload the presentation layer renders into a playable
// view.
type PlayView struct {
	SessionID       string    `json:"sessionId"`
	AccountName     string    `json:"accountName"`
	Items           []string  `json:"items"`
	DurationSeconds int       `json:"durationSeconds"`
	StartTimestamp  time.Time `json:"startTimestamp"`
}
