package ports

import (
	"context"
	"time"

	"civicpulse/contexts/civic-alerts/notification-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for notification/broadcast/outbox rows.
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

// IdempotencyStore guarantees replay/conflict behavior for broadcasts.
type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

// BroadcastInput persists the broadcast row and its outbox event atomically.
type BroadcastInput struct {
	Broadcast    entities.Broadcast
	OutboxID     string
	EventPayload []byte
}

// Repository is the write/read boundary for inbox and broadcast state.
type Repository interface {
	CreateNotification(ctx context.Context, notification entities.Notification) (entities.Notification, error)
	GetNotification(ctx context.Context, notificationID string) (entities.Notification, error)
	ListNotifications(ctx context.Context, recipientID string, unreadOnly bool, cursor string, limit int) ([]entities.Notification, string, error)
	MarkRead(ctx context.Context, notificationID string, readAt time.Time) error
	MarkAllRead(ctx context.Context, recipientID string, readAt time.Time) (int, error)
	CreateBroadcast(ctx context.Context, input BroadcastInput) (entities.Broadcast, error)
}

// OutboxMessage represents a pending relay message with its attempt count.
type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	Attempts  int
	CreatedAt time.Time
}

// OutboxRepository supports relay polling with bounded retries: each failed
// publish records an attempt, and the relay gives up past a limit.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
	MarkOutboxFailed(ctx context.Context, outboxID string, failedAt time.Time) error
	RecordOutboxAttempt(ctx context.Context, outboxID string, attemptedAt time.Time) error
}

// DedupStore makes event consumption idempotent across redeliveries.
// MarkProcessed reports whether this is the first time the event was seen.
type DedupStore interface {
	MarkProcessed(ctx context.Context, eventID string, processedAt time.Time) (bool, error)
}
