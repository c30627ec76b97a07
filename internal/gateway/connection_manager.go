package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WinReporter resolves a win reported over the real-time channel.
type WinReporter interface {
	ResolveWin(ctx context.Context, gameID uuid.UUID, username string) error
}

// ConnectionManager manages WebSocket connections for game rooms
type ConnectionManager struct {
	// Connection pools organized by room ID
	roomConnections map[uuid.UUID]map[*Connection]bool
	mu              sync.RWMutex

	// Upgrader for WebSocket connections
	upgrader websocket.Upgrader

	// Connection configuration
	config ConnectionConfig

	// Event broadcasting
	broadcastCh chan BroadcastMessage

	// Per-room presence and phase
	tracker *RoomTracker

	// Win resolution
	wins WinReporter
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID      string
	Account string
	RoomID  uuid.UUID
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	// Set once the client has sent join_room
	joined atomic.Bool

	// Connection metadata
	ConnectedAt time.Time
	LastPing    time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	ResolveTimeout  time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// BroadcastMessage represents a message to broadcast to a room
type BroadcastMessage struct {
	RoomID uuid.UUID
	Event  *ServerEvent
	// Optional: if set, connections for this account are skipped
	ExcludeAccount string
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		ResolveTimeout:  5 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig, wins WinReporter) *ConnectionManager {
	return &ConnectionManager{
		roomConnections: make(map[uuid.UUID]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan BroadcastMessage, 1000),
		tracker:     NewRoomTracker(),
		wins:        wins,
	}
}

// Start begins processing broadcast messages
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, account string, roomID uuid.UUID) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Account:     account,
		RoomID:      roomID,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Manager:     cm,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("account", account).
		Str("room_id", roomID.String()).
		Msg("WebSocket connection established")

	return nil
}

// registerConnection adds a connection to the manager
func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.roomConnections[conn.RoomID] == nil {
		cm.roomConnections[conn.RoomID] = make(map[*Connection]bool)
	}
	cm.roomConnections[conn.RoomID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("room_id", conn.RoomID.String()).
		Int("total_connections", len(cm.roomConnections[conn.RoomID])).
		Msg("connection registered")
}

// unregisterConnection removes a connection from the manager and, if it
// had joined the room, its presence from the tracker.
func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	connections, exists := cm.roomConnections[conn.RoomID]
	if exists {
		if _, ok := connections[conn]; ok {
			delete(connections, conn)
			close(conn.Send)

			if len(connections) == 0 {
				delete(cm.roomConnections, conn.RoomID)
			}

			log.Info().
				Str("connection_id", conn.ID).
				Str("account", conn.Account).
				Str("room_id", conn.RoomID.String()).
				Msg("connection unregistered")
		} else {
			exists = false
		}
	}
	cm.mu.Unlock()

	if exists && conn.joined.Load() {
		cm.tracker.Leave(conn.RoomID, conn.Account)
	}
}

// BroadcastToRoom sends an event to all connections in a room
func (cm *ConnectionManager) BroadcastToRoom(roomID uuid.UUID, event *ServerEvent) {
	cm.enqueue(BroadcastMessage{RoomID: roomID, Event: event})
}

// BroadcastToRoomExcept sends an event to all connections in a room
// except those belonging to the given account.
func (cm *ConnectionManager) BroadcastToRoomExcept(roomID uuid.UUID, account string, event *ServerEvent) {
	cm.enqueue(BroadcastMessage{RoomID: roomID, Event: event, ExcludeAccount: account})
}

func (cm *ConnectionManager) enqueue(message BroadcastMessage) {
	select {
	case cm.broadcastCh <- message:
	default:
		log.Warn().
			Str("room_id", message.RoomID.String()).
			Str("event_type", string(message.Event.Type)).
			Msg("broadcast channel full, dropping message")
	}
}

// HandleResolved marks the room terminal and broadcasts the loss to
// everyone in it except the winner's connections.
func (cm *ConnectionManager) HandleResolved(roomID uuid.UUID, winner string) {
	if !cm.tracker.MarkResolved(roomID) {
		log.Debug().Str("room_id", roomID.String()).Msg("room already resolved, skipping loss broadcast")
		return
	}
	cm.BroadcastToRoomExcept(roomID, winner, &ServerEvent{Type: EventTypeOpponentLost})
}

// handleBroadcast processes a broadcast message
func (cm *ConnectionManager) handleBroadcast(message BroadcastMessage) {
	cm.mu.RLock()
	connections, exists := cm.roomConnections[message.RoomID]
	if !exists {
		cm.mu.RUnlock()
		return
	}

	// Snapshot connections to avoid holding the lock during the sends
	var targets []*Connection
	for conn := range connections {
		if message.ExcludeAccount != "" && conn.Account == message.ExcludeAccount {
			continue
		}
		targets = append(targets, conn)
	}
	cm.mu.RUnlock()

	eventData, err := json.Marshal(message.Event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	for _, conn := range targets {
		select {
		case conn.Send <- eventData:
		default:
			// Connection is slow/dead, close it
			log.Warn().
				Str("connection_id", conn.ID).
				Str("account", conn.Account).
				Msg("connection send buffer full, closing connection")
			cm.unregisterConnection(conn)
			conn.Conn.Close()
		}
	}

	log.Debug().
		Str("event_type", string(message.Event.Type)).
		Str("room_id", message.RoomID.String()).
		Int("connections", len(targets)).
		Msg("event broadcasted")
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() map[string]any {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	totalConnections := 0
	roomCounts := make(map[string]int)

	for roomID, connections := range cm.roomConnections {
		count := len(connections)
		totalConnections += count
		roomCounts[roomID.String()] = count
	}

	return map[string]any{
		"total_connections": totalConnections,
		"active_rooms":      len(cm.roomConnections),
		"room_connections":  roomCounts,
	}
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				// Channel was closed
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
			c.LastPing = time.Now()
		}
	}
}

// readPump handles reading messages from the WebSocket connection
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		c.LastPing = time.Now()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		c.handleClientMessage(message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}

// handleClientMessage processes messages received from the client
func (c *Connection) handleClientMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Warn().
			Err(err).
			Str("connection_id", c.ID).
			Msg("unparseable client message, ignoring")
		return
	}

	switch msg.Type {
	case MessageTypeJoinRoom:
		c.handleJoinRoom(msg)
	case MessageTypePlayerWon:
		c.handlePlayerWon(msg)
	default:
		log.Debug().
			Str("connection_id", c.ID).
			Str("message_type", msg.Type).
			Msg("unknown client message type, ignoring")
	}
}

func (c *Connection) handleJoinRoom(msg ClientMessage) {
	if msg.Account != "" && msg.Account != c.Account {
		log.Warn().
			Str("connection_id", c.ID).
			Str("account", c.Account).
			Str("message_account", msg.Account).
			Msg("join_room account does not match connection, using connection account")
	}
	if c.joined.Swap(true) {
		// Duplicate join_room on the same connection is a no-op.
		return
	}

	result := c.Manager.tracker.Join(c.RoomID, c.Account)

	switch {
	case result.Started:
		c.Manager.BroadcastToRoom(c.RoomID, &ServerEvent{Type: EventTypeStartGame})
	case result.Phase == PhaseWaiting:
		c.sendEvent(&ServerEvent{Type: EventTypeWaiting})
	case result.Phase == PhaseActive:
		// Reconnecting player or spectator joining mid-game: resync.
		c.sendEvent(&ServerEvent{Type: EventTypeStartGame})
	}

	log.Debug().
		Str("connection_id", c.ID).
		Str("account", c.Account).
		Str("room_id", c.RoomID.String()).
		Str("phase", result.Phase.String()).
		Bool("spectator", result.Spectator).
		Msg("joined room")
}

func (c *Connection) handlePlayerWon(msg ClientMessage) {
	account := msg.Account
	if account == "" {
		account = c.Account
	}

	// Resolution is idempotent downstream, so a duplicate or invalid
	// report is dropped there; the transport has no response channel.
	ctx, cancel := context.WithTimeout(context.Background(), c.Manager.config.ResolveTimeout)
	defer cancel()

	if err := c.Manager.wins.ResolveWin(ctx, c.RoomID, account); err != nil {
		log.Error().
			Err(err).
			Str("room_id", c.RoomID.String()).
			Str("account", account).
			Msg("failed to resolve win report")
		return
	}
	// The loss broadcast arrives through the event stream so every
	// gateway instance delivers it.
}

func (c *Connection) sendEvent(event *ServerEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event")
		return
	}
	select {
	case c.Send <- data:
	default:
		log.Warn().
			Str("connection_id", c.ID).
			Str("event_type", string(event.Type)).
			Msg("send buffer full, dropping event")
	}
}
