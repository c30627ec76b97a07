// Package sweeper expires challenge rooms that never found an opponent.
package sweeper

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/Tylerea12/trash-panda-pickup/internal/eventbus"
	"github.com/Tylerea12/trash-panda-pickup/internal/game/events"
)

// Store defines what the sweeper needs from the game repository
type Store interface {
	ExpireStale(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
}

// Config holds sweeper timing settings.
type Config struct {
	Interval time.Duration // how often to sweep
	TTL      time.Duration // how long a waiting room may sit unjoined
}

// DefaultConfig returns the default sweeper timing.
func DefaultConfig() Config {
	return Config{
		Interval: time.Minute,
		TTL:      30 * time.Minute,
	}
}

// Sweeper periodically marks stale waiting rooms as expired and publishes
// an expiry event per room.
type Sweeper struct {
	store  Store
	bus    eventbus.Publisher
	clock  clockwork.Clock
	config Config
}

// New creates a new Sweeper
func New(store Store, bus eventbus.Publisher, clock clockwork.Clock, config Config) *Sweeper {
	return &Sweeper{
		store:  store,
		bus:    bus,
		clock:  clock,
		config: config,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	log.Info().
		Dur("interval", s.config.Interval).
		Dur("ttl", s.config.TTL).
		Msg("room sweeper started")

	ticker := s.clock.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("room sweeper shutting down")
			return nil
		case <-ticker.Chan():
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := s.clock.Now().Add(-s.config.TTL)

	ids, err := s.store.ExpireStale(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("failed to expire stale rooms")
		return
	}
	if len(ids) == 0 {
		return
	}

	log.Info().
		Int("expired", len(ids)).
		Time("cutoff", cutoff).
		Msg("expired stale waiting rooms")

	for _, id := range ids {
		if err := s.publishExpired(ctx, id); err != nil {
			log.Error().Err(err).Str("game_id", id.String()).Msg("failed to publish expiry event")
		}
	}
}

func (s *Sweeper) publishExpired(ctx context.Context, gameID uuid.UUID) error {
	payload, err := json.Marshal(events.GameExpiredPayload{
		GameID:    gameID.String(),
		ExpiredAt: s.clock.Now(),
	})
	if err != nil {
		return err
	}

	return s.bus.Publish(ctx, eventbus.Event{
		ID:        uuid.New().String(),
		Type:      events.TypeGameExpired,
		GameID:    gameID.String(),
		Timestamp: s.clock.Now(),
		Payload:   payload,
	})
}
