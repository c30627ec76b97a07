package eventbus

import (
	"context"
	"encoding/json"
	"time"
)

// Event is the JSON envelope carried on the game event stream.
type Event struct {
	ID        string          `json:"eventId"`
	Type      string          `json:"eventType"`
	GameID    string          `json:"gameId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Publisher publishes game events to the stream.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
