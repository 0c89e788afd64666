package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	alertevents "civicpulse/contexts/civic-alerts/notification-service/adapters/events"
	alertmemory "civicpulse/contexts/civic-alerts/notification-service/adapters/memory"
	alertapp "civicpulse/contexts/civic-alerts/notification-service/application"
	alertworkers "civicpulse/contexts/civic-alerts/notification-service/application/workers"
	issuememory "civicpulse/contexts/civic-issues/issue-service/adapters/memory"
	issueworkers "civicpulse/contexts/civic-issues/issue-service/application/workers"
	identityworkers "civicpulse/contexts/identity-access/identity-service/application/workers"
	identityports "civicpulse/contexts/identity-access/identity-service/ports"
	"civicpulse/internal/platform/messaging"
	"civicpulse/internal/shared/authctx"
)

// brokenOutbox fails every poll, standing in for an unreachable database.
type brokenOutbox struct{}

func (brokenOutbox) ListPendingOutbox(context.Context, int) ([]identityports.OutboxMessage, error) {
	return nil, errors.New("connection refused")
}

func (brokenOutbox) MarkOutboxPublished(context.Context, string, time.Time) error { return nil }
func (brokenOutbox) MarkOutboxFailed(context.Context, string, time.Time) error { return nil }

func TestWorkerRunSurvivesFailingRelay(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus, err := messaging.NewKafka(nil, logger)
	if err != nil {
		t.Fatalf("bus failed: %v", err)
	}

	alertStore := alertmemory.NewStore()
	service := alertapp.Service{
		Repo:           alertStore,
		Idempotency:    alertStore,
		Clock:          alertStore,
		IDs:            alertStore,
		IdempotencyTTL: time.Hour,
	}
	staff := authctx.Authenticated(authctx.Claims{SubjectID: "staff-1", Role: authctx.RoleMunicipalStaff})
	if _, err := service.Broadcast(context.Background(), staff, "idem-1", alertapp.BroadcastInput{
		District: "north",
		Title:    "Boil water advisory",
		Body:     "Until further notice.",
	}); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}

	app := &WorkerApp{
		bus: bus,
		identityRelay: identityworkers.OutboxRelay{
			Outbox: brokenOutbox{},
			Logger: logger,
		},
		issueRelay: issueworkers.OutboxRelay{
			Outbox: issuememory.NewStore(),
			Logger: logger,
		},
		alertRelay: alertworkers.OutboxRelay{
			Outbox: alertStore,
			Publisher: alertevents.Publisher{
				Bus:    bus,
				Topic:  topicAlerts,
				Logger: logger,
			},
			Clock:  alertStore,
			Logger: logger,
		},
		consumer: alertworkers.Consumer{
			Repo:   alertStore,
			Dedup:  alertStore,
			Clock:  alertStore,
			IDs:    alertStore,
			Logger: logger,
		},
		welcome:      true,
		pollInterval: 5 * time.Millisecond,
		logger:       logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := app.Run(ctx); err != nil {
		t.Fatalf("expected run to stop cleanly, got %v", err)
	}

	pending, err := alertStore.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected alert relay to drain despite failing identity relay, got %d rows", len(pending))
	}
}
