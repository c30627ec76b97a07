package players

// PlayerStats is the win/loss summary returned by the stats surface.
type PlayerStats struct {
	Username string `json:"username"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}
