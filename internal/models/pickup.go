package models

import "github.com/google/uuid"

// PickupCount is the cumulative number of times a player reported
// collecting a given item.
type PickupCount struct {
	PlayerID uuid.UUID `json:"player_id"`
	Item     string    `json:"item"`
	Count    int64     `json:"count"`
}
