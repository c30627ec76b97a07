package gateway

import "encoding/json"

// EventType names the events the server emits on a room channel.
type EventType string

const (
	// EventTypeWaiting is sent to the first player while the room waits
	// for an opponent.
	EventTypeWaiting EventType = "waiting"

	// EventTypeStartGame is broadcast to the room when the second
	// distinct player joins.
	EventTypeStartGame EventType = "start_game"

	// EventTypeOpponentLost is broadcast to the room, excluding the
	// winner, when a win is recorded.
	EventTypeOpponentLost EventType = "opponent_lost"
)

// Client message types received on a room channel.
const (
	MessageTypeJoinRoom  = "join_room"
	MessageTypePlayerWon = "player_won"
)

// ServerEvent is the wire format for events emitted to clients.
type ServerEvent struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ClientMessage is the wire format for messages received from clients.
type ClientMessage struct {
	Type    string `json:"type"`
	Room    string `json:"room"`
	Account string `json:"account"`
}
