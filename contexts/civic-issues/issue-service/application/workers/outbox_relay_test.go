package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"civicpulse/contexts/civic-issues/issue-service/adapters/memory"
	"civicpulse/contexts/civic-issues/issue-service/application"
	"civicpulse/contexts/civic-issues/issue-service/domain/entities"
	"civicpulse/contexts/civic-issues/issue-service/ports"
	contractsv1 "civicpulse/contracts/gen/events/v1"
	"civicpulse/internal/shared/authctx"
)

type capturingPublisher struct {
	events []ports.IssueEvent
	fail   bool
}

func (p *capturingPublisher) PublishIssueEvent(_ context.Context, event ports.IssueEvent) error {
	if p.fail {
		return errors.New("bus unavailable")
	}
	p.events = append(p.events, event)
	return nil
}

func seedStatusChange(t *testing.T, store *memory.Store) {
	t.Helper()
	service := application.Service{
		Repo:        store,
		Idempotency: store,
		Clock:       store,
		IDs:         store,
	}
	reporter := authctx.Authenticated(authctx.Claims{SubjectID: "user-1", Role: authctx.RoleResident})
	issue, err := service.ReportIssue(context.Background(), reporter, "idem-1", application.ReportIssueInput{
		Title:       "Broken streetlight",
		Description: "Dark corner at 5th and Main",
		Category:    "streetlight",
	})
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	staff := authctx.Authenticated(authctx.Claims{SubjectID: "staff-1", Role: authctx.RoleMunicipalStaff})
	if _, err := service.UpdateStatus(context.Background(), staff, issue.IssueID, "in_review", ""); err != nil {
		t.Fatalf("update status failed: %v", err)
	}
}

func TestRunOncePublishesPendingRows(t *testing.T) {
	store := memory.NewStore()
	seedStatusChange(t, store)

	publisher := &capturingPublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once failed: %v", err)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.events))
	}
	if publisher.events[0].EventType != contractsv1.EventTypeIssueStatusChanged {
		t.Fatalf("unexpected event type %s", publisher.events[0].EventType)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected drained outbox, got %d pending", len(pending))
	}

	// second pass is a no-op
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected no re-delivery, got %d events", len(publisher.events))
	}
}

func TestRunOnceLeavesRowPendingOnPublishError(t *testing.T) {
	store := memory.NewStore()
	seedStatusChange(t, store)

	relay := OutboxRelay{Outbox: store, Publisher: &capturingPublisher{fail: true}, Clock: store}
	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatal("expected publish error to surface")
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected row to stay pending, got %d", len(pending))
	}
}

func TestRunOnceMarksUndecodableRowFailed(t *testing.T) {
	store := memory.NewStore()
	issue, err := store.CreateIssue(context.Background(), entities.Issue{
		IssueID:    "issue-1",
		ReporterID: "user-1",
		Status:     entities.StatusReported,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err = store.UpdateStatus(context.Background(), ports.StatusUpdateInput{
		IssueID:      issue.IssueID,
		ChangeID:     "change-1",
		OutboxID:     "outbox-1",
		NextStatus:   entities.StatusInReview,
		ActorID:      "staff-1",
		ChangedAt:    time.Now().UTC(),
		EventPayload: []byte("not-json"),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	publisher := &capturingPublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once failed: %v", err)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("expected no events, got %d", len(publisher.events))
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected failed row out of pending set, got %d", len(pending))
	}
}
