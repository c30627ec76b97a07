// Package events defines the payloads carried on the game event stream.
// They live in their own package so the game app, the event bus, and the
// gateway can share them without import cycles.
package events

import "time"

// Event type names used on the stream.
const (
	TypeGameResolved = "GameResolved"
	TypeGameExpired  = "GameExpired"
)

// GameResolvedPayload is emitted exactly once when a game's winner is
// recorded. Winner carries the account name so gateways can exclude the
// reporter's connections from the loss broadcast.
type GameResolvedPayload struct {
	GameID     string    `json:"game_id"`
	Winner     string    `json:"winner"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// GameExpiredPayload is emitted when the sweeper expires a challenge game
// that never found an opponent.
type GameExpiredPayload struct {
	GameID    string    `json:"game_id"`
	ExpiredAt time.Time `json:"expired_at"`
}
