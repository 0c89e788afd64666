package ports

import (
	"context"

	contractsv1 "civicpulse/contracts/gen/events/v1"
)

// IssueEvent reuses the canonical cross-runtime envelope contract.
type IssueEvent = contractsv1.Envelope

// EventPublisher emits issue lifecycle events to the bus adapter.
type EventPublisher interface {
	PublishIssueEvent(ctx context.Context, event IssueEvent) error
}
