package pickups

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository implements pickup counter data access. Counters are
// per-(player, item) rows created lazily on first report.
type Repository struct {
	db Querier
}

// NewRepository creates a new pickups repository
func NewRepository(db Querier) *Repository {
	return &Repository{
		db: db,
	}
}

const recordPickupSQL = `
INSERT INTO pickups (player_id, item, count)
VALUES ($1, $2, 1)
ON CONFLICT (player_id, item) DO UPDATE SET count = pickups.count + 1`

// RecordPickup increments the counter for one reported pickup.
func (r *Repository) RecordPickup(ctx context.Context, playerID uuid.UUID, item string) error {
	if _, err := r.db.Exec(ctx, recordPickupSQL, playerID, item); err != nil {
		return fmt.Errorf("failed to record pickup: %w", err)
	}
	return nil
}

const getItemCountsSQL = `
SELECT item, count
FROM pickups
WHERE player_id = $1`

// GetItemCounts returns every item counter for a player.
func (r *Repository) GetItemCounts(ctx context.Context, playerID uuid.UUID) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, getItemCountsSQL, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			item  string
			count int64
		)
		if err := rows.Scan(&item, &count); err != nil {
			return nil, fmt.Errorf("failed to scan item count: %w", err)
		}
		counts[item] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read item counts: %w", err)
	}
	return counts, nil
}
