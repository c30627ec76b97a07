package players

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Tylerea12/trash-panda-pickup/internal/models"
)

// PlayersRepository defines what the app layer needs from the repository
type PlayersRepository interface {
	UpsertPlayer(ctx context.Context, username string) (*models.Player, error)
	GetPlayerByUsername(ctx context.Context, username string) (*models.Player, error)
	IncrementWins(ctx context.Context, id uuid.UUID) error
	IncrementLosses(ctx context.Context, id uuid.UUID) error
}

// App handles player business logic
type App struct {
	repo PlayersRepository
}

// NewApp creates a new players App
func NewApp(repo PlayersRepository) *App {
	return &App{
		repo: repo,
	}
}

// EnsurePlayer returns the player for a username, creating the row on
// first use. Registration-on-first-use matches the game start flow.
func (a *App) EnsurePlayer(ctx context.Context, username string) (*models.Player, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	player, err := a.repo.UpsertPlayer(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure player: %w", err)
	}
	return player, nil
}

// GetPlayerByUsername retrieves a player by username
func (a *App) GetPlayerByUsername(ctx context.Context, username string) (*models.Player, error) {
	return a.repo.GetPlayerByUsername(ctx, username)
}

// RecordWin increments the player's win counter.
func (a *App) RecordWin(ctx context.Context, id uuid.UUID) error {
	if err := a.repo.IncrementWins(ctx, id); err != nil {
		return err
	}
	log.Debug().Str("player_id", id.String()).Msg("recorded win")
	return nil
}

// RecordLoss increments the player's loss counter.
func (a *App) RecordLoss(ctx context.Context, id uuid.UUID) error {
	if err := a.repo.IncrementLosses(ctx, id); err != nil {
		return err
	}
	log.Debug().Str("player_id", id.String()).Msg("recorded loss")
	return nil
}

// GetStats returns the win/loss summary for a username.
func (a *App) GetStats(ctx context.Context, username string) (*PlayerStats, error) {
	player, err := a.repo.GetPlayerByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return &PlayerStats{
		Username: player.Username,
		Wins:     player.Wins,
		Losses:   player.Losses,
	}, nil
}
