package events

import (
	"context"
	"log/slog"

	"civicpulse/contexts/civic-issues/issue-service/ports"
)

// Bus is the slice of the platform message bus this adapter needs.
type Bus interface {
	Publish(ctx context.Context, topic string, event ports.IssueEvent) error
}

// Publisher maps the issue event port onto a bus topic.
type Publisher struct {
	Bus    Bus
	Topic  string
	Logger *slog.Logger
}

func (p Publisher) PublishIssueEvent(ctx context.Context, event ports.IssueEvent) error {
	if err := p.Bus.Publish(ctx, p.Topic, event); err != nil {
		return err
	}
	if p.Logger != nil {
		p.Logger.Debug("issue event published",
			"event", "issue_event_published",
			"module", "civic-issues/issue-service",
			"layer", "adapter",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"topic", p.Topic,
		)
	}
	return nil
}
