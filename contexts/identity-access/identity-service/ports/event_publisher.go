package ports

import (
	"context"

	contractsv1 "civicpulse/contracts/gen/events/v1"
)

// EventPublisher emits identity lifecycle events to the bus. Called by the
// outbox relay worker, never inline with registration: a bus failure must
// not fail registration.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event contractsv1.Envelope) error
}
