package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Tylerea12/trash-panda-pickup/internal/models"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements game data access operations. All state
// transitions are conditional updates so concurrent callers serialize in
// the database rather than in application code.
type Repository struct {
	db Querier
}

// NewRepository creates a new game repository
func NewRepository(db Querier) *Repository {
	return &Repository{
		db: db,
	}
}

const gameColumns = `id, mode, status, player1_id, player2_id, winner_id, items, duration_seconds, created_at`

const createGameSQL = `
INSERT INTO games (id, mode, status, player1_id, items, duration_seconds)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + gameColumns

// CreateGame persists a new game with no opponent and no winner.
func (r *Repository) CreateGame(ctx context.Context, req CreateGameRequest) (*models.Game, error) {
	row := r.db.QueryRow(ctx, createGameSQL,
		req.ID, req.Mode, models.GameStatusWaiting, req.Player1ID, req.Items, req.DurationSeconds)

	g, err := scanGame(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return g, nil
}

const getGameSQL = `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

// GetGame retrieves a game by id.
func (r *Repository) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	g, err := scanGame(r.db.QueryRow(ctx, getGameSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return g, nil
}

const claimOpponentSlotSQL = `
UPDATE games
SET player2_id = $2
WHERE id = $1
  AND mode = 'CHALLENGE'
  AND status = 'WAITING'
  AND player1_id IS DISTINCT FROM $2
  AND (player2_id IS NULL OR player2_id = $2)
RETURNING ` + gameColumns

// ClaimOpponentSlot sets player2 if the slot is vacant or already held by
// the same player. Joining a game you already occupy is a no-op; a third
// distinct player gets ErrSessionFull.
func (r *Repository) ClaimOpponentSlot(ctx context.Context, gameID, playerID uuid.UUID) (*models.Game, error) {
	g, err := scanGame(r.db.QueryRow(ctx, claimOpponentSlotSQL, gameID, playerID))
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to claim opponent slot: %w", err)
	}

	// The conditional update matched nothing: the game is missing, the
	// joiner is already player1, the room expired, or the slot is taken.
	existing, getErr := r.GetGame(ctx, gameID)
	if getErr != nil {
		return nil, getErr
	}
	if existing.Status == models.GameStatusExpired {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, gameID)
	}
	if existing.Player1ID != nil && *existing.Player1ID == playerID {
		return existing, nil
	}
	if existing.Player2ID != nil && *existing.Player2ID == playerID {
		return existing, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSessionFull, gameID)
}

const resolveWinnerSQL = `
UPDATE games
SET winner_id = $2, status = 'RESOLVED'
WHERE id = $1
  AND winner_id IS NULL
  AND status <> 'EXPIRED'
  AND (player1_id = $2 OR player2_id = $2)
RETURNING ` + gameColumns

// ResolveWinner records the winner at most once. The WHERE guard makes
// concurrent resolutions race in the database: exactly one caller gets
// the updated row, every other caller gets ErrAlreadyResolved. A winner
// that is not a participant never matches, preserving the invariant that
// winner equals player1 or player2.
func (r *Repository) ResolveWinner(ctx context.Context, gameID, winnerID uuid.UUID) (*models.Game, error) {
	g, err := scanGame(r.db.QueryRow(ctx, resolveWinnerSQL, gameID, winnerID))
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to resolve winner: %w", err)
	}

	existing, getErr := r.GetGame(ctx, gameID)
	if getErr != nil {
		return nil, getErr
	}
	if existing.WinnerID != nil || existing.Status == models.GameStatusExpired {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyResolved, gameID)
	}
	// Winner is not one of the participants.
	return nil, fmt.Errorf("%w: winner %s is not a participant of %s", ErrNotFound, winnerID, gameID)
}

const expireStaleSQL = `
UPDATE games
SET status = 'EXPIRED'
WHERE mode = 'CHALLENGE'
  AND status = 'WAITING'
  AND player2_id IS NULL
  AND winner_id IS NULL
  AND created_at < $1
RETURNING id`

// ExpireStale marks challenge games that never found an opponent before
// the cutoff and returns their ids.
func (r *Repository) ExpireStale(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, expireStaleSQL, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to expire stale games: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan expired game id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read expired game ids: %w", err)
	}
	return ids, nil
}

func scanGame(row pgx.Row) (*models.Game, error) {
	var g models.Game
	if err := row.Scan(
		&g.ID, &g.Mode, &g.Status,
		&g.Player1ID, &g.Player2ID, &g.WinnerID,
		&g.Items, &g.DurationSeconds, &g.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &g, nil
}
