package memory

import (
	"context"
	"encoding/base64"
	"sort"
	"strconv"
	"sync"
	"time"

	"civicpulse/contexts/civic-issues/issue-service/domain/entities"
	domainerrors "civicpulse/contexts/civic-issues/issue-service/domain/errors"
	"civicpulse/contexts/civic-issues/issue-service/ports"

	"github.com/google/uuid"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
	outboxStatusFailed    = "failed"
)

// Store is an in-memory adapter implementing the repository, outbox,
// idempotency, clock, and id generator ports. Intended for tests and local
// development wiring.
type Store struct {
	mu sync.RWMutex

	issues      map[string]entities.Issue
	history     map[string][]entities.StatusChange
	outbox      map[string]outboxRow
	idempotency map[string]ports.IdempotencyRecord
}

type outboxRow struct {
	ports.OutboxMessage
	Status string
}

func NewStore() *Store {
	return &Store{
		issues:      make(map[string]entities.Issue),
		history:     make(map[string][]entities.StatusChange),
		outbox:      make(map[string]outboxRow),
		idempotency: make(map[string]ports.IdempotencyRecord),
	}
}

func (s *Store) Now() time.Time { return time.Now().UTC() }

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) CreateIssue(_ context.Context, issue entities.Issue) (entities.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issues[issue.IssueID] = issue
	return issue, nil
}

func (s *Store) GetIssue(_ context.Context, issueID string) (entities.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	issue, ok := s.issues[issueID]
	if !ok {
		return entities.Issue{}, domainerrors.ErrIssueNotFound
	}
	return issue, nil
}

func (s *Store) ListIssues(_ context.Context, filter ports.ListFilter) ([]entities.Issue, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	items := make([]entities.Issue, 0, len(s.issues))
	for _, issue := range s.issues {
		if filter.Status != "" && issue.Status != filter.Status {
			continue
		}
		if filter.Category != "" && issue.Category != filter.Category {
			continue
		}
		if filter.District != "" && issue.District != filter.District {
			continue
		}
		items = append(items, issue)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].IssueID < items[j].IssueID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	offset := decodeCursor(filter.Cursor)
	if offset < 0 || offset > len(items) {
		offset = 0
	}
	items = items[offset:]

	nextCursor := ""
	if len(items) > limit {
		nextCursor = encodeCursor(offset + limit)
		items = items[:limit]
	}
	return items, nextCursor, nil
}

func (s *Store) UpdateStatus(_ context.Context, input ports.StatusUpdateInput) (entities.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[input.IssueID]
	if !ok {
		return entities.Issue{}, domainerrors.ErrIssueNotFound
	}
	// Re-check under the lock: the caller validated against a read that may
	// be stale by the time the write lands.
	if !issue.Status.CanTransition(input.NextStatus) {
		return entities.Issue{}, domainerrors.ErrInvalidTransition
	}

	change := entities.StatusChange{
		ChangeID:   input.ChangeID,
		IssueID:    input.IssueID,
		FromStatus: issue.Status,
		ToStatus:   input.NextStatus,
		ActorID:    input.ActorID,
		Note:       input.Note,
		ChangedAt:  input.ChangedAt,
	}
	issue.Status = input.NextStatus
	issue.UpdatedAt = input.ChangedAt

	s.issues[input.IssueID] = issue
	s.history[input.IssueID] = append(s.history[input.IssueID], change)
	s.outbox[input.OutboxID] = outboxRow{
		OutboxMessage: ports.OutboxMessage{
			OutboxID:  input.OutboxID,
			EventType: "issue.status_changed",
			Payload:   input.EventPayload,
			CreatedAt: input.ChangedAt,
		},
		Status: outboxStatusPending,
	}
	return issue, nil
}

func (s *Store) AssignIssue(_ context.Context, issueID string, assigneeID string, now time.Time) (entities.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[issueID]
	if !ok {
		return entities.Issue{}, domainerrors.ErrIssueNotFound
	}
	issue.AssigneeID = assigneeID
	issue.UpdatedAt = now
	s.issues[issueID] = issue
	return issue, nil
}

func (s *Store) DeleteIssue(_ context.Context, issueID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.issues[issueID]; !ok {
		return domainerrors.ErrIssueNotFound
	}
	delete(s.issues, issueID)
	delete(s.history, issueID)
	return nil
}

func (s *Store) ListStatusHistory(_ context.Context, issueID string) ([]entities.StatusChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trail := append([]entities.StatusChange(nil), s.history[issueID]...)
	sort.Slice(trail, func(i, j int) bool {
		return trail[i].ChangedAt.Before(trail[j].ChangedAt)
	})
	return trail, nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]ports.OutboxMessage, 0, limit)
	for _, row := range s.outbox {
		if row.Status != outboxStatusPending {
			continue
		}
		items = append(items, row.OutboxMessage)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	return s.markOutbox(outboxID, outboxStatusPublished)
}

func (s *Store) MarkOutboxFailed(_ context.Context, outboxID string, _ time.Time) error {
	return s.markOutbox(outboxID, outboxStatusFailed)
}

func (s *Store) markOutbox(outboxID string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.outbox[outboxID]
	if !ok {
		return domainerrors.ErrInvalidRequest
	}
	row.Status = status
	s.outbox[outboxID] = row
	return nil
}

func (s *Store) Get(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.idempotency[key]
	if !ok || record.ExpiresAt.Before(now) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.idempotency[record.Key] = record
	return nil
}

func encodeCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

func decodeCursor(cursor string) int {
	if cursor == "" {
		return 0
	}
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0
	}
	offset, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0
	}
	return offset
}
