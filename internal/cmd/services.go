package main

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/Tylerea12/trash-panda-pickup/internal/eventbus"
	"github.com/Tylerea12/trash-panda-pickup/internal/game"
	"github.com/Tylerea12/trash-panda-pickup/internal/game/sweeper"
	"github.com/Tylerea12/trash-panda-pickup/internal/gateway"
	"github.com/Tylerea12/trash-panda-pickup/internal/pickups"
	"github.com/Tylerea12/trash-panda-pickup/internal/players"
	"github.com/Tylerea12/trash-panda-pickup/internal/stats"
)

type Services struct {
	Game    *game.Service
	Stats   *stats.Service
	Gateway *gateway.Service
	Sweeper *sweeper.Sweeper

	publisher eventbus.Publisher
}

func setupServices(pool *pgxpool.Pool, config *Config) (*Services, error) {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer → Service layer
	clock := clockwork.NewRealClock()

	// Players
	playersRepo := players.NewRepository(pool)
	playersApp := players.NewApp(playersRepo)

	// Pickups
	pickupsRepo := pickups.NewRepository(pool)
	pickupsApp := pickups.NewApp(pickupsRepo, playersApp)

	// Stats REST surface
	statsService := stats.NewService(playersApp, pickupsApp)

	// Event bus: JetStream when NATS is enabled, otherwise an in-process
	// loopback that feeds the gateway directly.
	var bus eventbus.Publisher
	var localBus *eventbus.LocalPublisher
	if config.NATS.Enabled {
		jsConfig := eventbus.DefaultJetStreamConfig()
		jsConfig.URL = config.NATS.URL
		jsPublisher, err := eventbus.NewJetStreamPublisher(jsConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream publisher: %w", err)
		}
		bus = jsPublisher
	} else {
		localBus = eventbus.NewLocalPublisher()
		bus = localBus
	}

	// Games
	gameRepo := game.NewRepository(pool)
	gameApp := game.NewApp(gameRepo, playersApp, bus, clock)
	gameService := game.NewService(gameApp)

	// Gateway
	gatewayConfig := gateway.DefaultConfig()
	gatewayConfig.ConsumerEnabled = config.NATS.Enabled
	gatewayConfig.JetStreamConfig.URL = config.NATS.URL
	gatewayService, err := gateway.NewService(gatewayConfig, gameApp)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway service: %w", err)
	}
	if localBus != nil {
		localBus.SetHandler(gatewayService)
	}

	// Stale room sweeper
	gameSweeper := sweeper.New(gameRepo, bus, clock, sweeper.Config{
		Interval: config.sweepInterval(),
		TTL:      config.roomTTL(),
	})

	return &Services{
		Game:      gameService,
		Stats:     statsService,
		Gateway:   gatewayService,
		Sweeper:   gameSweeper,
		publisher: bus,
	}, nil
}

// Close releases service resources that outlive request handling.
func (s *Services) Close() {
	if p, ok := s.publisher.(*eventbus.JetStreamPublisher); ok {
		p.Close()
	}
}
