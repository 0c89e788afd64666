package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"civicpulse/contexts/civic-alerts/notification-service/adapters/memory"
	"civicpulse/contexts/civic-alerts/notification-service/application"
	"civicpulse/contexts/civic-alerts/notification-service/ports"
	"civicpulse/internal/shared/authctx"
)

type capturingPublisher struct {
	events []ports.AlertEvent
	fail   bool
}

func (p *capturingPublisher) PublishAlertEvent(_ context.Context, event ports.AlertEvent) error {
	if p.fail {
		return errors.New("bus unavailable")
	}
	p.events = append(p.events, event)
	return nil
}

func seedBroadcast(t *testing.T, store *memory.Store) {
	t.Helper()
	service := application.Service{
		Repo:           store,
		Idempotency:    store,
		Clock:          store,
		IDs:            store,
		IdempotencyTTL: 7 * 24 * time.Hour,
	}
	sender := authctx.Authenticated(authctx.Claims{SubjectID: "staff-1", Role: authctx.RoleMunicipalStaff})
	_, err := service.Broadcast(context.Background(), sender, "idem-1", application.BroadcastInput{
		Title: "Boil water advisory",
		Body:  "Until further notice.",
	})
	if err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}
}

func TestRelayPublishesPendingBroadcast(t *testing.T) {
	store := memory.NewStore()
	seedBroadcast(t, store)

	publisher := &capturingPublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once failed: %v", err)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.events))
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected drained outbox, got %d pending", len(pending))
	}
}

func TestRelayBoundedRetriesThenFailed(t *testing.T) {
	store := memory.NewStore()
	seedBroadcast(t, store)

	relay := OutboxRelay{Outbox: store, Publisher: &capturingPublisher{fail: true}, Clock: store, MaxAttempts: 3}

	// attempts 1 and 2 leave the row pending
	for i := 0; i < 2; i++ {
		if err := relay.RunOnce(context.Background()); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
		pending, err := store.ListPendingOutbox(context.Background(), 10)
		if err != nil {
			t.Fatalf("list pending failed: %v", err)
		}
		if len(pending) != 1 {
			t.Fatalf("expected row still pending after attempt %d, got %d", i+1, len(pending))
		}
	}

	// third attempt hits the limit and the row is marked failed
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("final run failed: %v", err)
	}
	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected row marked failed, got %d pending", len(pending))
	}
}
