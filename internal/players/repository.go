package players

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Tylerea12/trash-panda-pickup/internal/models"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements player data access operations
type Repository struct {
	db Querier
}

// NewRepository creates a new players repository
func NewRepository(db Querier) *Repository {
	return &Repository{
		db: db,
	}
}

const upsertPlayerSQL = `
INSERT INTO players (id, username)
VALUES ($1, $2)
ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
RETURNING id, username, wins, losses, created_at`

// UpsertPlayer creates the player row for a username if it does not exist
// and returns the current row either way.
func (r *Repository) UpsertPlayer(ctx context.Context, username string) (*models.Player, error) {
	row := r.db.QueryRow(ctx, upsertPlayerSQL, uuid.New(), username)

	player, err := scanPlayer(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert player: %w", err)
	}
	return player, nil
}

const getPlayerByUsernameSQL = `
SELECT id, username, wins, losses, created_at
FROM players
WHERE username = $1`

// GetPlayerByUsername retrieves a player by username
func (r *Repository) GetPlayerByUsername(ctx context.Context, username string) (*models.Player, error) {
	row := r.db.QueryRow(ctx, getPlayerByUsernameSQL, username)

	player, err := scanPlayer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player by username: %w", err)
	}
	return player, nil
}

// IncrementWins adds one win to the player's counter.
func (r *Repository) IncrementWins(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `UPDATE players SET wins = wins + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to increment wins: %w", err)
	}
	return nil
}

// IncrementLosses adds one loss to the player's counter.
func (r *Repository) IncrementLosses(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `UPDATE players SET losses = losses + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to increment losses: %w", err)
	}
	return nil
}

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var p models.Player
	if err := row.Scan(&p.ID, &p.Username, &p.Wins, &p.Losses, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
