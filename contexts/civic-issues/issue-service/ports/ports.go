package ports

import (
	"context"
	"time"

	"civicpulse/contexts/civic-issues/issue-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for issues/history/outbox rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// IdempotencyRecord stores request hash and previous response payload.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	Payload     []byte
	ExpiresAt   time.Time
}

// IdempotencyStore guarantees replay/conflict behavior for mutating endpoints.
type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

// ListFilter narrows and paginates the public issue listing.
type ListFilter struct {
	Status   entities.Status
	Category entities.Category
	District string
	Cursor   string
	Limit    int
}

// StatusUpdateInput is persisted atomically with the history and outbox rows.
type StatusUpdateInput struct {
	IssueID    string
	ChangeID   string
	OutboxID   string
	NextStatus entities.Status
	ActorID    string
	Note       string
	ChangedAt  time.Time
	// EventPayload is the pre-marshaled envelope relayed by the worker.
	EventPayload []byte
}

// Repository is the write/read boundary for issue state.
type Repository interface {
	CreateIssue(ctx context.Context, issue entities.Issue) (entities.Issue, error)
	GetIssue(ctx context.Context, issueID string) (entities.Issue, error)
	ListIssues(ctx context.Context, filter ListFilter) ([]entities.Issue, string, error)
	UpdateStatus(ctx context.Context, input StatusUpdateInput) (entities.Issue, error)
	AssignIssue(ctx context.Context, issueID string, assigneeID string, now time.Time) (entities.Issue, error)
	DeleteIssue(ctx context.Context, issueID string) error
	ListStatusHistory(ctx context.Context, issueID string) ([]entities.StatusChange, error)
}

// OutboxMessage represents a pending relay message.
type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

// OutboxRepository supports worker relay polling and acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
	MarkOutboxFailed(ctx context.Context, outboxID string, failedAt time.Time) error
}
