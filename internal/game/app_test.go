package game

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tylerea12/trash-panda-pickup/internal/catalog"
	"github.com/Tylerea12/trash-panda-pickup/internal/eventbus"
	"github.com/Tylerea12/trash-panda-pickup/internal/game/events"
	"github.com/Tylerea12/trash-panda-pickup/internal/models"
	"github.com/Tylerea12/trash-panda-pickup/internal/players"
)

// fakeGameRepo mirrors the conditional-update semantics of the Postgres
// repository so app-level behavior can be tested without a database.
type fakeGameRepo struct {
	mu    sync.Mutex
	games map[uuid.UUID]*models.Game
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[uuid.UUID]*models.Game)}
}

func (r *fakeGameRepo) CreateGame(ctx context.Context, req CreateGameRequest) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p1 := req.Player1ID
	g := &models.Game{
		ID:              req.ID,
		Mode:            req.Mode,
		Status:          models.GameStatusWaiting,
		Player1ID:       &p1,
		Items:           req.Items,
		DurationSeconds: req.DurationSeconds,
		CreatedAt:       time.Now(),
	}
	r.games[g.ID] = g
	return copyGame(g), nil
}

func (r *fakeGameRepo) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return copyGame(g), nil
}

func (r *fakeGameRepo) ClaimOpponentSlot(ctx context.Context, gameID, playerID uuid.UUID) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.games[gameID]
	if !ok || g.Status == models.GameStatusExpired {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, gameID)
	}
	if g.Player1ID != nil && *g.Player1ID == playerID {
		return copyGame(g), nil
	}
	if g.Player2ID != nil {
		if *g.Player2ID == playerID {
			return copyGame(g), nil
		}
		return nil, fmt.Errorf("%w: %s", ErrSessionFull, gameID)
	}
	if g.Mode != models.GameModeChallenge || g.Status != models.GameStatusWaiting {
		return nil, fmt.Errorf("%w: %s", ErrSessionFull, gameID)
	}
	p2 := playerID
	g.Player2ID = &p2
	return copyGame(g), nil
}

func (r *fakeGameRepo) ResolveWinner(ctx context.Context, gameID, winnerID uuid.UUID) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, gameID)
	}
	if g.WinnerID != nil || g.Status == models.GameStatusExpired {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyResolved, gameID)
	}
	participant := (g.Player1ID != nil && *g.Player1ID == winnerID) ||
		(g.Player2ID != nil && *g.Player2ID == winnerID)
	if !participant {
		return nil, fmt.Errorf("%w: winner %s is not a participant of %s", ErrNotFound, winnerID, gameID)
	}
	w := winnerID
	g.WinnerID = &w
	g.Status = models.GameStatusResolved
	return copyGame(g), nil
}

func (r *fakeGameRepo) ExpireStale(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []uuid.UUID
	for _, g := range r.games {
		if g.Mode == models.GameModeChallenge && g.Status == models.GameStatusWaiting &&
			g.Player2ID == nil && g.CreatedAt.Before(cutoff) {
			g.Status = models.GameStatusExpired
			ids = append(ids, g.ID)
		}
	}
	return ids, nil
}

func copyGame(g *models.Game) *models.Game {
	c := *g
	return &c
}

// fakeDirectory is an in-memory player directory with win/loss counters.
type fakeDirectory struct {
	mu     sync.Mutex
	byName map[string]*models.Player
	wins   map[uuid.UUID]int
	losses map[uuid.UUID]int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		byName: make(map[string]*models.Player),
		wins:   make(map[uuid.UUID]int),
		losses: make(map[uuid.UUID]int),
	}
}

func (d *fakeDirectory) EnsurePlayer(ctx context.Context, username string) (*models.Player, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.byName[username]; ok {
		return p, nil
	}
	p := &models.Player{ID: uuid.New(), Username: username}
	d.byName[username] = p
	return p, nil
}

func (d *fakeDirectory) GetPlayerByUsername(ctx context.Context, username string) (*models.Player, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.byName[username]
	if !ok {
		return nil, fmt.Errorf("%w: %s", players.ErrNotFound, username)
	}
	return p, nil
}

func (d *fakeDirectory) RecordWin(ctx context.Context, id uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wins[id]++
	return nil
}

func (d *fakeDirectory) RecordLoss(ctx context.Context, id uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.losses[id]++
	return nil
}

// captureBus records published events.
type captureBus struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (b *captureBus) Publish(ctx context.Context, event eventbus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *captureBus) published() []eventbus.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]eventbus.Event(nil), b.events...)
}

func newTestApp(t *testing.T) (*App, *fakeGameRepo, *fakeDirectory, *captureBus) {
	t.Helper()
	repo := newFakeGameRepo()
	dir := newFakeDirectory()
	bus := &captureBus{}
	app := NewApp(repo, dir, bus, clockwork.NewFakeClock())
	return app, repo, dir, bus
}

func TestStartSoloCreatesGame(t *testing.T) {
	app, _, dir, _ := newTestApp(t)
	ctx := context.Background()

	g, err := app.StartSolo(ctx, "rocky", catalog.TierMedium, 300)
	require.NoError(t, err)

	assert.Equal(t, models.GameModeSolo, g.Mode)
	assert.Equal(t, models.GameStatusWaiting, g.Status)
	assert.Len(t, g.Items, 10)
	assert.Equal(t, 300, g.DurationSeconds)
	require.NotNil(t, g.Player1ID)
	assert.Nil(t, g.Player2ID)
	assert.Nil(t, g.WinnerID)

	// Starting a game registers the account on first use.
	p, err := dir.GetPlayerByUsername(ctx, "rocky")
	require.NoError(t, err)
	assert.Equal(t, *g.Player1ID, p.ID)
}

func TestStartGameTiers(t *testing.T) {
	tests := []struct {
		tier  catalog.SizeTier
		items int
	}{
		{catalog.TierSnack, 5},
		{catalog.TierMedium, 10},
		{catalog.TierFeast, 15},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			app, _, _, _ := newTestApp(t)

			g, err := app.StartChallenge(context.Background(), "rocky", tt.tier, models.UntimedDuration)
			require.NoError(t, err)
			assert.Len(t, g.Items, tt.items)
			assert.Equal(t, models.UntimedDuration, g.DurationSeconds)
		})
	}
}

func TestJoinGame(t *testing.T) {
	app, _, _, _ := newTestApp(t)
	ctx := context.Background()

	g, err := app.StartChallenge(ctx, "rocky", catalog.TierMedium, 300)
	require.NoError(t, err)

	joined, err := app.JoinGame(ctx, g.ID, "bandit")
	require.NoError(t, err)
	require.NotNil(t, joined.Player2ID)

	// Re-joining the same game is a no-op, not an error.
	again, err := app.JoinGame(ctx, g.ID, "bandit")
	require.NoError(t, err)
	assert.Equal(t, *joined.Player2ID, *again.Player2ID)

	// A third distinct account is rejected.
	_, err = app.JoinGame(ctx, g.ID, "dumpster_dan")
	assert.ErrorIs(t, err, ErrSessionFull)
}

func TestJoinGameNotFound(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	_, err := app.JoinGame(context.Background(), uuid.New(), "bandit")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveWinUpdatesLedgers(t *testing.T) {
	app, _, dir, bus := newTestApp(t)
	ctx := context.Background()

	g, err := app.StartChallenge(ctx, "rocky", catalog.TierMedium, 300)
	require.NoError(t, err)
	_, err = app.JoinGame(ctx, g.ID, "bandit")
	require.NoError(t, err)

	require.NoError(t, app.ResolveWin(ctx, g.ID, "rocky"))

	winner, _ := dir.GetPlayerByUsername(ctx, "rocky")
	loser, _ := dir.GetPlayerByUsername(ctx, "bandit")
	assert.Equal(t, 1, dir.wins[winner.ID])
	assert.Equal(t, 0, dir.losses[winner.ID])
	assert.Equal(t, 1, dir.losses[loser.ID])
	assert.Equal(t, 0, dir.wins[loser.ID])

	published := bus.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.TypeGameResolved, published[0].Type)
	assert.Equal(t, g.ID.String(), published[0].GameID)
}

func TestResolveWinSoloNoLoss(t *testing.T) {
	app, _, dir, _ := newTestApp(t)
	ctx := context.Background()

	g, err := app.StartSolo(ctx, "rocky", catalog.TierSnack, models.UntimedDuration)
	require.NoError(t, err)

	require.NoError(t, app.ResolveWin(ctx, g.ID, "rocky"))

	winner, _ := dir.GetPlayerByUsername(ctx, "rocky")
	assert.Equal(t, 1, dir.wins[winner.ID])
	assert.Empty(t, dir.losses)
}

func TestResolveWinDuplicateIsDropped(t *testing.T) {
	app, _, dir, bus := newTestApp(t)
	ctx := context.Background()

	g, err := app.StartChallenge(ctx, "rocky", catalog.TierMedium, 300)
	require.NoError(t, err)
	_, err = app.JoinGame(ctx, g.ID, "bandit")
	require.NoError(t, err)

	require.NoError(t, app.ResolveWin(ctx, g.ID, "rocky"))
	// Duplicate from the loser after the fact changes nothing.
	require.NoError(t, app.ResolveWin(ctx, g.ID, "bandit"))

	winner, _ := dir.GetPlayerByUsername(ctx, "rocky")
	loser, _ := dir.GetPlayerByUsername(ctx, "bandit")
	assert.Equal(t, 1, dir.wins[winner.ID])
	assert.Equal(t, 0, dir.wins[loser.ID])
	assert.Equal(t, 1, dir.losses[loser.ID])
	assert.Len(t, bus.published(), 1)
}

func TestResolveWinUnknownAccountIsDropped(t *testing.T) {
	app, repo, dir, bus := newTestApp(t)
	ctx := context.Background()

	g, err := app.StartSolo(ctx, "rocky", catalog.TierMedium, 300)
	require.NoError(t, err)

	require.NoError(t, app.ResolveWin(ctx, g.ID, "nobody"))

	stored, err := repo.GetGame(ctx, g.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.WinnerID)
	assert.Empty(t, dir.wins)
	assert.Empty(t, bus.published())
}

func TestResolveWinNonParticipantIsDropped(t *testing.T) {
	app, repo, dir, _ := newTestApp(t)
	ctx := context.Background()

	g, err := app.StartChallenge(ctx, "rocky", catalog.TierMedium, 300)
	require.NoError(t, err)
	_, err = app.JoinGame(ctx, g.ID, "bandit")
	require.NoError(t, err)

	// A registered account that is not in this game cannot win it.
	_, err = app.StartSolo(ctx, "dumpster_dan", catalog.TierSnack, 300)
	require.NoError(t, err)
	require.NoError(t, app.ResolveWin(ctx, g.ID, "dumpster_dan"))

	stored, err := repo.GetGame(ctx, g.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.WinnerID)
	assert.Empty(t, dir.wins)
}

func TestResolveWinConcurrentExactlyOnce(t *testing.T) {
	app, repo, dir, bus := newTestApp(t)
	ctx := context.Background()

	g, err := app.StartChallenge(ctx, "rocky", catalog.TierMedium, 300)
	require.NoError(t, err)
	_, err = app.JoinGame(ctx, g.ID, "bandit")
	require.NoError(t, err)

	// Both players report a win at the same time; exactly one resolution
	// must stick.
	var wg sync.WaitGroup
	for _, account := range []string{"rocky", "bandit", "rocky", "bandit"} {
		wg.Add(1)
		go func(account string) {
			defer wg.Done()
			assert.NoError(t, app.ResolveWin(ctx, g.ID, account))
		}(account)
	}
	wg.Wait()

	stored, err := repo.GetGame(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.WinnerID)
	assert.Equal(t, models.GameStatusResolved, stored.Status)

	rocky, _ := dir.GetPlayerByUsername(ctx, "rocky")
	bandit, _ := dir.GetPlayerByUsername(ctx, "bandit")
	totalWins := dir.wins[rocky.ID] + dir.wins[bandit.ID]
	totalLosses := dir.losses[rocky.ID] + dir.losses[bandit.ID]
	assert.Equal(t, 1, totalWins)
	assert.Equal(t, 1, totalLosses)
	assert.Len(t, bus.published(), 1)
}
