package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Tylerea12/trash-panda-pickup/internal/eventbus"
	"github.com/Tylerea12/trash-panda-pickup/internal/game/events"
)

// Service is the game gateway: it owns the WebSocket connection pools,
// the per-room match state, and the event stream consumer that fans
// resolutions out to clients.
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	eventConsumer     *EventConsumer
}

// Config holds configuration for the game gateway service
type Config struct {
	ConnectionConfig ConnectionConfig
	JetStreamConfig  JetStreamConsumerConfig

	// When false the gateway runs without a JetStream consumer and
	// expects events to be delivered in-process.
	ConsumerEnabled bool
}

// DefaultConfig returns default configuration for the game gateway
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		JetStreamConfig:  DefaultJetStreamConsumerConfig(),
		ConsumerEnabled:  true,
	}
}

// NewService creates a new game gateway service
func NewService(config Config, wins WinReporter) (*Service, error) {
	connectionManager := NewConnectionManager(config.ConnectionConfig, wins)
	wsHandler := NewWebSocketHandler(connectionManager)

	s := &Service{
		connectionManager: connectionManager,
		wsHandler:         wsHandler,
	}

	if config.ConsumerEnabled {
		eventConsumer, err := NewEventConsumer(s, config.JetStreamConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create event consumer: %w", err)
		}
		s.eventConsumer = eventConsumer
	}

	return s, nil
}

// Start begins the gateway service
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting game gateway service")

	go s.connectionManager.Start(ctx)

	if s.eventConsumer != nil {
		go func() {
			if err := s.eventConsumer.Start(ctx); err != nil {
				log.Error().Err(err).Msg("event consumer failed")
			}
		}()
	}

	<-ctx.Done()

	log.Info().Msg("game gateway service shutting down")
	return s.Stop()
}

// Stop gracefully shuts down the gateway service
func (s *Service) Stop() error {
	if s.eventConsumer != nil {
		if err := s.eventConsumer.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop event consumer")
		}
	}

	log.Info().Msg("game gateway service stopped")
	return nil
}

// RegisterRoutes registers the WebSocket HTTP routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	log.Info().Msg("game gateway routes registered")
}

// GetStats returns statistics about the gateway service
func (s *Service) GetStats() map[string]any {
	stats := s.connectionManager.GetConnectionStats()
	stats["service"] = "game_gateway"
	stats["status"] = "running"
	return stats
}

// HandleEvent dispatches a game event to the connected clients. It is
// fed either by the JetStream consumer or, in single-process mode, by
// the in-process publisher.
func (s *Service) HandleEvent(ctx context.Context, event eventbus.Event) error {
	switch event.Type {
	case events.TypeGameResolved:
		var payload events.GameResolvedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal %s payload: %w", event.Type, err)
		}
		gameID, err := uuid.Parse(payload.GameID)
		if err != nil {
			return fmt.Errorf("parse game ID: %w", err)
		}
		s.connectionManager.HandleResolved(gameID, payload.Winner)
		return nil

	case events.TypeGameExpired:
		// Expired rooms had no second player, so there is nobody to
		// notify beyond the existing waiting timeout on the client.
		log.Debug().Str("game_id", event.GameID).Msg("game expired")
		return nil

	default:
		log.Warn().Str("event_type", event.Type).Msg("unknown event type, ignoring")
		return nil
	}
}

// BroadcastEvent allows manual event broadcasting (useful for testing)
func (s *Service) BroadcastEvent(roomID uuid.UUID, event *ServerEvent) {
	s.connectionManager.BroadcastToRoom(roomID, event)
}
