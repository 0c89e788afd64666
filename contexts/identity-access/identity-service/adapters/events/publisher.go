package events

import (
	"context"
	"log/slog"

	contractsv1 "civicpulse/contracts/gen/events/v1"
)

// Bus is the slice of the platform message bus this adapter needs.
type Bus interface {
	Publish(ctx context.Context, topic string, event contractsv1.Envelope) error
}

// Publisher maps the identity event port onto a bus topic.
type Publisher struct {
	Bus    Bus
	Topic  string
	Logger *slog.Logger
}

func (p Publisher) PublishUserRegistered(ctx context.Context, event contractsv1.Envelope) error {
	if err := p.Bus.Publish(ctx, p.Topic, event); err != nil {
		return err
	}
	if p.Logger != nil {
		p.Logger.Debug("identity event published",
			"event", "identity_event_published",
			"module", "identity-access/identity-service",
			"layer", "adapter",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"topic", p.Topic,
		)
	}
	return nil
}
