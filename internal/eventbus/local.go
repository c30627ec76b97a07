package eventbus

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Handler consumes events from the stream.
type Handler interface {
	HandleEvent(ctx context.Context, event Event) error
}

// LocalPublisher delivers events synchronously to an in-process handler.
// Used when the process runs without NATS: a single instance needs no
// cross-process fan-out, so the gateway consumes its own events directly.
type LocalPublisher struct {
	handler Handler
}

func NewLocalPublisher() *LocalPublisher {
	return &LocalPublisher{}
}

// SetHandler attaches the consuming side. The publisher is constructed
// before the gateway, which in turn needs the publisher, so the handler
// is attached after wiring completes.
func (p *LocalPublisher) SetHandler(handler Handler) {
	p.handler = handler
}

func (p *LocalPublisher) Publish(ctx context.Context, event Event) error {
	if p.handler == nil {
		log.Warn().
			Str("event_id", event.ID).
			Str("event_type", event.Type).
			Msg("no event handler attached, dropping event")
		return nil
	}
	if err := p.handler.HandleEvent(ctx, event); err != nil {
		log.Error().
			Err(err).
			Str("event_id", event.ID).
			Str("event_type", event.Type).
			Msg("local event delivery failed")
		return err
	}
	return nil
}
