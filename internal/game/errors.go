package game

import "errors"

var (
	// ErrNotFound is returned when no game exists for the given id.
	ErrNotFound = errors.New("game not found")

	// ErrSessionFull is returned when a third account tries to join a
	// game whose opponent slot is already taken.
	ErrSessionFull = errors.New("game already has two players")

	// ErrAlreadyResolved is returned by the repository when a winner is
	// already recorded. The app layer treats it as a no-op.
	ErrAlreadyResolved = errors.New("game already resolved")
)
