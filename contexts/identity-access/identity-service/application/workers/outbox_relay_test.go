package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"civicpulse/contexts/identity-access/identity-service/adapters/memory"
	"civicpulse/contexts/identity-access/identity-service/adapters/password"
	"civicpulse/contexts/identity-access/identity-service/application"
	contractsv1 "civicpulse/contracts/gen/events/v1"
	"civicpulse/internal/shared/authctx"
)

type capturingPublisher struct {
	events []contractsv1.Envelope
	fail   bool
}

func (p *capturingPublisher) PublishUserRegistered(_ context.Context, event contractsv1.Envelope) error {
	if p.fail {
		return errors.New("bus unavailable")
	}
	p.events = append(p.events, event)
	return nil
}

func seedRegistration(t *testing.T, store *memory.Store) {
	t.Helper()
	tokens, err := authctx.NewResolver(authctx.Config{
		Secret:   []byte("identity-test-secret"),
		Issuer:   "civicpulse",
		TokenTTL: time.Hour,
	}, nil)
	if err != nil {
		t.Fatalf("resolver failed: %v", err)
	}
	service := application.Service{
		Repo:   store,
		Hasher: password.BcryptHasher{Cost: 4},
		Tokens: tokens,
		Clock:  store,
		IDs:    store,
	}
	if _, _, err := service.Register(context.Background(), application.RegisterInput{
		Username: "ada",
		Email:    "ada@example.org",
		Password: "correct-horse",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
}

func TestRunOncePublishesRegistrationRows(t *testing.T) {
	store := memory.NewStore()
	seedRegistration(t, store)

	publisher := &capturingPublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once failed: %v", err)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.events))
	}
	if publisher.events[0].EventType != contractsv1.EventTypeUserRegistered {
		t.Fatalf("unexpected event type %s", publisher.events[0].EventType)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected outbox drained, got %d rows", len(pending))
	}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected no re-delivery, got %d events", len(publisher.events))
	}
}

func TestRunOnceLeavesRowPendingOnPublishError(t *testing.T) {
	store := memory.NewStore()
	seedRegistration(t, store)

	publisher := &capturingPublisher{fail: true}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}

	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatal("expected publish error to surface")
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected row to stay pending, got %d rows", len(pending))
	}
}
