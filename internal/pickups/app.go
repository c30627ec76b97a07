package pickups

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Tylerea12/trash-panda-pickup/internal/models"
)

// PickupsRepository defines what the app layer needs from the repository
type PickupsRepository interface {
	RecordPickup(ctx context.Context, playerID uuid.UUID, item string) error
	GetItemCounts(ctx context.Context, playerID uuid.UUID) (map[string]int64, error)
}

// PlayerDirectory resolves account names to players.
type PlayerDirectory interface {
	GetPlayerByUsername(ctx context.Context, username string) (*models.Player, error)
}

// App handles pickup counter business logic
type App struct {
	repo    PickupsRepository
	players PlayerDirectory
}

// NewApp creates a new pickups App
func NewApp(repo PickupsRepository, players PlayerDirectory) *App {
	return &App{
		repo:    repo,
		players: players,
	}
}

// ReportPickups increments the player's counter once per reported item.
// Item ids are recorded as sent: the catalog is not consulted, so unknown
// ids still count.
func (a *App) ReportPickups(ctx context.Context, username string, items []string) error {
	player, err := a.players.GetPlayerByUsername(ctx, username)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := a.repo.RecordPickup(ctx, player.ID, item); err != nil {
			return fmt.Errorf("failed to report pickup of %q: %w", item, err)
		}
	}

	log.Debug().
		Str("account", username).
		Int("items", len(items)).
		Msg("pickups reported")

	return nil
}

// GetItemStats returns the item-to-count mapping for an account.
func (a *App) GetItemStats(ctx context.Context, username string) (map[string]int64, error) {
	player, err := a.players.GetPlayerByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return a.repo.GetItemCounts(ctx, player.ID)
}
