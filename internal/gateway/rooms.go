package gateway

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// RoomPhase is the live coordination state of a room.
type RoomPhase int

const (
	PhaseEmpty RoomPhase = iota
	PhaseWaiting
	PhaseActive
	PhaseResolved
)

func (p RoomPhase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseWaiting:
		return "waiting"
	case PhaseActive:
		return "active"
	case PhaseResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// JoinResult describes the effect of registering a connection in a room.
type JoinResult struct {
	Phase     RoomPhase // phase after the join
	Started   bool      // this join moved the room from waiting to active
	Spectator bool      // the account is not one of the two players
}

// RoomTracker tracks live presence per room by distinct account, not by
// raw connection count: a player reconnecting, or a spectator connecting,
// never re-triggers the start signal. Membership is removed explicitly
// when an account's last connection goes away.
type RoomTracker struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*roomState
}

type roomState struct {
	phase RoomPhase
	conns map[string]int // account -> live connection count
	// the first two distinct accounts, in join order
	players []string
}

// NewRoomTracker creates a new RoomTracker
func NewRoomTracker() *RoomTracker {
	return &RoomTracker{
		rooms: make(map[uuid.UUID]*roomState),
	}
}

// Join registers one connection for an account and returns the resulting
// transition. The first account moves the room to waiting; the second
// distinct account moves it to active exactly once.
func (t *RoomTracker) Join(roomID uuid.UUID, account string) JoinResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	rs := t.rooms[roomID]
	if rs == nil {
		rs = &roomState{phase: PhaseEmpty, conns: make(map[string]int)}
		t.rooms[roomID] = rs
	}

	rs.conns[account]++

	var started bool
	if !slices.Contains(rs.players, account) {
		switch rs.phase {
		case PhaseEmpty:
			rs.players = append(rs.players, account)
			rs.phase = PhaseWaiting
		case PhaseWaiting:
			rs.players = append(rs.players, account)
			rs.phase = PhaseActive
			started = true
		}
		// Active and resolved rooms accept further accounts as
		// spectators only.
	}

	return JoinResult{
		Phase:     rs.phase,
		Started:   started,
		Spectator: !slices.Contains(rs.players, account),
	}
}

// Leave unregisters one connection for an account. A waiting player whose
// last connection drops gives up their slot so someone else can take it;
// players of active games keep their slot for reconnects.
func (t *RoomTracker) Leave(roomID uuid.UUID, account string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rs := t.rooms[roomID]
	if rs == nil {
		return
	}

	rs.conns[account]--
	if rs.conns[account] > 0 {
		return
	}
	delete(rs.conns, account)

	if rs.phase == PhaseWaiting {
		if i := slices.Index(rs.players, account); i >= 0 {
			rs.players = slices.Delete(rs.players, i, i+1)
		}
		if len(rs.players) == 0 {
			rs.phase = PhaseEmpty
		}
	}

	if len(rs.conns) == 0 && (rs.phase == PhaseEmpty || rs.phase == PhaseResolved) {
		delete(t.rooms, roomID)
	}
}

// MarkResolved moves a room to its terminal phase. Returns false if the
// room was already resolved.
func (t *RoomTracker) MarkResolved(roomID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rs := t.rooms[roomID]
	if rs == nil {
		// Resolution from another gateway instance for a room with no
		// local members: nothing to track.
		return true
	}
	if rs.phase == PhaseResolved {
		return false
	}
	rs.phase = PhaseResolved
	return true
}

// Phase reports the current phase of a room.
func (t *RoomTracker) Phase(roomID uuid.UUID) RoomPhase {
	t.mu.Lock()
	defer t.mu.Unlock()

	if rs := t.rooms[roomID]; rs != nil {
		return rs.phase
	}
	return PhaseEmpty
}
