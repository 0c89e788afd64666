package ports

import (
	"context"
	"time"

	"civicpulse/contexts/identity-access/identity-service/domain/entities"
	"civicpulse/internal/shared/authctx"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// PasswordHasher hides the hash algorithm from application code.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Compare(hash string, plaintext string) error
}

// ProfilePatch carries optional profile mutations; nil fields are untouched.
type ProfilePatch struct {
	Username *string
	Email    *string
	District *string
}

// CreateUserInput persists a user together with their registration event.
// The outbox row must land in the same transaction as the user record.
type CreateUserInput struct {
	User         entities.User
	OutboxID     string
	EventPayload []byte
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

// Repository is the persistence boundary for user records.
type Repository interface {
	CreateUser(ctx context.Context, input CreateUserInput) (entities.User, error)
	GetUser(ctx context.Context, userID string) (entities.User, error)
	GetUserByUsername(ctx context.Context, username string) (entities.User, error)
	ListUsers(ctx context.Context, role authctx.Role, limit int) ([]entities.User, error)
	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch, now time.Time) (entities.User, error)
	UpdateRole(ctx context.Context, userID string, role authctx.Role, now time.Time) (entities.User, error)
	DeleteUser(ctx context.Context, userID string) error
}
