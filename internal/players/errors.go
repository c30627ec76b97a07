package players

import "errors"

// ErrNotFound is returned when no player exists for the given username.
var ErrNotFound = errors.New("player not found")
