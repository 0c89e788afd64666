package events

import (
	"context"
	"log/slog"

	"civicpulse/contexts/civic-alerts/notification-service/ports"
)

// Bus is the slice of the platform message bus this adapter needs.
type Bus interface {
	Publish(ctx context.Context, topic string, event ports.AlertEvent) error
}

// Publisher maps the alert event port onto a bus topic.
type Publisher struct {
	Bus    Bus
	Topic  string
	Logger *slog.Logger
}

func (p Publisher) PublishAlertEvent(ctx context.Context, event ports.AlertEvent) error {
	if err := p.Bus.Publish(ctx, p.Topic, event); err != nil {
		return err
	}
	if p.Logger != nil {
		p.Logger.Debug("alert event published",
			"event", "alert_event_published",
			"module", "civic-alerts/notification-service",
			"layer", "adapter",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"topic", p.Topic,
		)
	}
	return nil
}
