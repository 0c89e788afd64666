package ports

import (
	"context"

	contractsv1 "civicpulse/contracts/gen/events/v1"
)

// AlertEvent is the envelope shape relayed onto the bus.
type AlertEvent = contractsv1.Envelope

// EventPublisher pushes alert events onto the message bus.
type EventPublisher interface {
	PublishAlertEvent(ctx context.Context, event AlertEvent) error
}
