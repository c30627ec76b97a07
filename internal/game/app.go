package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/Tylerea12/trash-panda-pickup/internal/catalog"
	"github.com/Tylerea12/trash-panda-pickup/internal/eventbus"
	"github.com/Tylerea12/trash-panda-pickup/internal/game/events"
	"github.com/Tylerea12/trash-panda-pickup/internal/models"
	"github.com/Tylerea12/trash-panda-pickup/internal/players"
)

// GameRepository defines what the app layer needs from the repository
type GameRepository interface {
	CreateGame(ctx context.Context, req CreateGameRequest) (*models.Game, error)
	GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error)
	ClaimOpponentSlot(ctx context.Context, gameID, playerID uuid.UUID) (*models.Game, error)
	ResolveWinner(ctx context.Context, gameID, winnerID uuid.UUID) (*models.Game, error)
	ExpireStale(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
}

// PlayerDirectory defines what the app layer needs from the players app
type PlayerDirectory interface {
	EnsurePlayer(ctx context.Context, username string) (*models.Player, error)
	GetPlayerByUsername(ctx context.Context, username string) (*models.Player, error)
	RecordWin(ctx context.Context, id uuid.UUID) error
	RecordLoss(ctx context.Context, id uuid.UUID) error
}

// App orchestrates the game lifecycle: creation, joining, and the
// exactly-once resolution of a match outcome.
type App struct {
	repo    GameRepository
	players PlayerDirectory
	bus     eventbus.Publisher
	clock   clockwork.Clock
}

// NewApp creates a new game App
func NewApp(repo GameRepository, players PlayerDirectory, bus eventbus.Publisher, clock clockwork.Clock) *App {
	return &App{
		repo:    repo,
		players: players,
		bus:     bus,
		clock:   clock,
	}
}

// StartSolo creates a session with no opponent. durationSeconds of -1
// denotes an untimed game.
func (a *App) StartSolo(ctx context.Context, username string, tier catalog.SizeTier, durationSeconds int) (*models.Game, error) {
	return a.startGame(ctx, username, tier, durationSeconds, models.GameModeSolo)
}

// StartChallenge creates a session intended for a second participant to
// join; the returned game id doubles as the invite reference.
func (a *App) StartChallenge(ctx context.Context, username string, tier catalog.SizeTier, durationSeconds int) (*models.Game, error) {
	return a.startGame(ctx, username, tier, durationSeconds, models.GameModeChallenge)
}

func (a *App) startGame(ctx context.Context, username string, tier catalog.SizeTier, durationSeconds int, mode models.GameMode) (*models.Game, error) {
	player, err := a.players.EnsurePlayer(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure player: %w", err)
	}

	items, err := catalog.Sample(tier.ItemCount())
	if err != nil {
		return nil, err
	}

	g, err := a.repo.CreateGame(ctx, CreateGameRequest{
		ID:              uuid.New(),
		Mode:            mode,
		Player1ID:       player.ID,
		Items:           items,
		DurationSeconds: durationSeconds,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("game_id", g.ID.String()).
		Str("mode", string(mode)).
		Str("player", username).
		Int("items", len(items)).
		Int("duration_seconds", durationSeconds).
		Msg("game created")

	return g, nil
}

// GetGame retrieves a game by id.
func (a *App) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	return a.repo.GetGame(ctx, id)
}

// JoinGame claims the opponent slot of a challenge game for the given
// account. Joining a game you already occupy is a no-op.
func (a *App) JoinGame(ctx context.Context, gameID uuid.UUID, username string) (*models.Game, error) {
	player, err := a.players.EnsurePlayer(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure player: %w", err)
	}

	g, err := a.repo.ClaimOpponentSlot(ctx, gameID, player.ID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("game_id", gameID.String()).
		Str("player", username).
		Msg("player joined game")

	return g, nil
}

// ResolveWin records the winner of a game exactly once, updates both
// ledgers, and publishes the resolution. Duplicate reports and reports
// for unknown accounts or games are logged and dropped: the real-time
// transport has no response channel to surface them on.
func (a *App) ResolveWin(ctx context.Context, gameID uuid.UUID, username string) error {
	winner, err := a.players.GetPlayerByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, players.ErrNotFound) {
			log.Warn().
				Str("game_id", gameID.String()).
				Str("account", username).
				Msg("win reported for unknown account, ignoring")
			return nil
		}
		return fmt.Errorf("failed to look up winner: %w", err)
	}

	g, err := a.repo.ResolveWinner(ctx, gameID, winner.ID)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyResolved):
			log.Debug().
				Str("game_id", gameID.String()).
				Str("account", username).
				Msg("game already resolved, ignoring duplicate win report")
			return nil
		case errors.Is(err, ErrNotFound):
			log.Warn().
				Str("game_id", gameID.String()).
				Str("account", username).
				Msg("win report did not match an open game, ignoring")
			return nil
		default:
			return err
		}
	}

	// The conditional update succeeded, so this caller owns the single
	// resolution: counter updates below run exactly once per game.
	if err := a.players.RecordWin(ctx, winner.ID); err != nil {
		return fmt.Errorf("failed to record win: %w", err)
	}

	if opponentID := opponentOf(g, winner.ID); opponentID != nil {
		if err := a.players.RecordLoss(ctx, *opponentID); err != nil {
			return fmt.Errorf("failed to record loss: %w", err)
		}
	}

	if err := a.publishResolved(ctx, g.ID, username); err != nil {
		// The outcome is already durable; a lost event only delays the
		// loss notification.
		log.Error().Err(err).Str("game_id", g.ID.String()).Msg("failed to publish resolution event")
	}

	log.Info().
		Str("game_id", g.ID.String()).
		Str("winner", username).
		Msg("game resolved")

	return nil
}

func (a *App) publishResolved(ctx context.Context, gameID uuid.UUID, winner string) error {
	payload, err := json.Marshal(events.GameResolvedPayload{
		GameID:     gameID.String(),
		Winner:     winner,
		ResolvedAt: a.clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal resolution payload: %w", err)
	}

	return a.bus.Publish(ctx, eventbus.Event{
		ID:        uuid.New().String(),
		Type:      events.TypeGameResolved,
		GameID:    gameID.String(),
		Timestamp: a.clock.Now(),
		Payload:   payload,
	})
}

func opponentOf(g *models.Game, winnerID uuid.UUID) *uuid.UUID {
	if g.Player1ID != nil && *g.Player1ID != winnerID {
		return g.Player1ID
	}
	if g.Player2ID != nil && *g.Player2ID != winnerID {
		return g.Player2ID
	}
	return nil
}
