package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"civicpulse/contexts/community-engagement/engagement-service/domain/entities"
	domainerrors "civicpulse/contexts/community-engagement/engagement-service/domain/errors"
	"civicpulse/contexts/community-engagement/engagement-service/ports"
	"civicpulse/internal/shared/authctx"
)

const maxCommentLength = 2000

type Service struct {
	Repo   ports.Repository
	Issues ports.IssueDirectory
	Clock  ports.Clock
	IDs    ports.IDGenerator
	Logger *slog.Logger
}

// AddComment posts a public comment on an existing issue. Any authenticated
// identity may comment.
func (s Service) AddComment(ctx context.Context, actor authctx.Context, issueID string, body string) (entities.Comment, error) {
	claims, err := authctx.RequireAuthenticated(actor)
	if err != nil {
		return entities.Comment{}, err
	}
	body = strings.TrimSpace(body)
	if body == "" || len(body) > maxCommentLength {
		return entities.Comment{}, domainerrors.ErrInvalidRequest
	}
	if err := s.checkIssue(ctx, issueID); err != nil {
		return entities.Comment{}, err
	}

	commentID, err := s.IDs.NewID(ctx)
	if err != nil {
		return entities.Comment{}, err
	}
	comment, err := s.Repo.CreateComment(ctx, entities.Comment{
		CommentID: commentID,
		IssueID:   issueID,
		AuthorID:  claims.SubjectID,
		Body:      body,
		CreatedAt: s.now(),
	})
	if err != nil {
		return entities.Comment{}, err
	}
	ResolveLogger(s.Logger).Info("comment added",
		"event", "comment_added",
		"module", "community-engagement/engagement-service",
		"layer", "application",
		"comment_id", comment.CommentID,
		"issue_id", issueID,
		"author_id", claims.SubjectID,
	)
	return comment, nil
}

// ListComments is public, newest first.
func (s Service) ListComments(ctx context.Context, issueID string, cursor string, limit int) ([]entities.Comment, string, error) {
	if strings.TrimSpace(issueID) == "" {
		return nil, "", domainerrors.ErrInvalidRequest
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.Repo.ListComments(ctx, issueID, cursor, limit)
}

// DeleteComment removes a comment. The author may always remove their own;
// staff and admins moderate everyone's.
func (s Service) DeleteComment(ctx context.Context, actor authctx.Context, commentID string) error {
	comment, err := s.Repo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	claims, err := authctx.RequireSelfOrRole(actor, comment.AuthorID, authctx.RoleAdmin, authctx.RoleMunicipalStaff)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("comment deleted",
		"event", "comment_deleted",
		"module", "community-engagement/engagement-service",
		"layer", "application",
		"comment_id", commentID,
		"actor_id", claims.SubjectID,
		"author_id", comment.AuthorID,
	)
	return nil
}

// Upvote records support for an issue, once per user per issue.
func (s Service) Upvote(ctx context.Context, actor authctx.Context, issueID string) error {
	claims, err := authctx.RequireAuthenticated(actor)
	if err != nil {
		return err
	}
	if err := s.checkIssue(ctx, issueID); err != nil {
		return err
	}
	return s.Repo.AddUpvote(ctx, entities.Upvote{
		IssueID:   issueID,
		UserID:    claims.SubjectID,
		CreatedAt: s.now(),
	})
}

// RemoveUpvote withdraws the caller's own upvote.
func (s Service) RemoveUpvote(ctx context.Context, actor authctx.Context, issueID string) error {
	claims, err := authctx.RequireAuthenticated(actor)
	if err != nil {
		return err
	}
	if strings.TrimSpace(issueID) == "" {
		return domainerrors.ErrInvalidRequest
	}
	return s.Repo.RemoveUpvote(ctx, issueID, claims.SubjectID)
}

// Endorse lends an advocate's weight to an issue. Advocates and admins only,
// one endorsement per advocate per issue.
func (s Service) Endorse(ctx context.Context, actor authctx.Context, issueID string, note string) error {
	claims, err := authctx.RequireRole(actor, authctx.RoleCommunityAdvocate, authctx.RoleAdmin)
	if err != nil {
		return err
	}
	if err := s.checkIssue(ctx, issueID); err != nil {
		return err
	}
	if err := s.Repo.AddEndorsement(ctx, entities.Endorsement{
		IssueID:    issueID,
		AdvocateID: claims.SubjectID,
		Note:       strings.TrimSpace(note),
		CreatedAt:  s.now(),
	}); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("issue endorsed",
		"event", "issue_endorsed",
		"module", "community-engagement/engagement-service",
		"layer", "application",
		"issue_id", issueID,
		"advocate_id", claims.SubjectID,
	)
	return nil
}

// ListEndorsements is public.
func (s Service) ListEndorsements(ctx context.Context, issueID string) ([]entities.Endorsement, error) {
	if strings.TrimSpace(issueID) == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	return s.Repo.ListEndorsements(ctx, issueID)
}

// GetSummary returns public engagement counts for an issue.
func (s Service) GetSummary(ctx context.Context, issueID string) (entities.Summary, error) {
	if err := s.checkIssue(ctx, issueID); err != nil {
		return entities.Summary{}, err
	}
	return s.Repo.GetSummary(ctx, issueID)
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (s Service) checkIssue(ctx context.Context, issueID string) error {
	if strings.TrimSpace(issueID) == "" {
		return domainerrors.ErrInvalidRequest
	}
	exists, err := s.Issues.IssueExists(ctx, issueID)
	if err != nil {
		return err
	}
	if !exists {
		return domainerrors.ErrIssueNotFound
	}
	return nil
}
