package ports

import (
	"context"
	"time"

	"civicpulse/contexts/community-engagement/engagement-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for comment IDs.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// IssueDirectory is the cross-context lookup used to validate that
// engagement targets a real issue. Wired at bootstrap against the
// issue-service module.
type IssueDirectory interface {
	IssueExists(ctx context.Context, issueID string) (bool, error)
}

// Repository is the write/read boundary for engagement state.
type Repository interface {
	CreateComment(ctx context.Context, comment entities.Comment) (entities.Comment, error)
	GetComment(ctx context.Context, commentID string) (entities.Comment, error)
	ListComments(ctx context.Context, issueID string, cursor string, limit int) ([]entities.Comment, string, error)
	DeleteComment(ctx context.Context, commentID string) error

	AddUpvote(ctx context.Context, upvote entities.Upvote) error
	RemoveUpvote(ctx context.Context, issueID string, userID string) error

	AddEndorsement(ctx context.Context, endorsement entities.Endorsement) error
	ListEndorsements(ctx context.Context, issueID string) ([]entities.Endorsement, error)

	GetSummary(ctx context.Context, issueID string) (entities.Summary, error)
}
