package httpadapter

import (
	"context"
	"log/slog"

	"civicpulse/contexts/community-engagement/engagement-service/application"
	"civicpulse/contexts/community-engagement/engagement-service/domain/entities"
	httptransport "civicpulse/contexts/community-engagement/engagement-service/transport/http"
	"civicpulse/internal/shared/authctx"
)

// Handler maps HTTP DTOs to application operations.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) AddCommentHandler(ctx context.Context, actor authctx.Context, issueID string, request httptransport.AddCommentRequest) (httptransport.CommentDTO, error) {
	comment, err := h.Service.AddComment(ctx, actor, issueID, request.Body)
	if err != nil {
		return httptransport.CommentDTO{}, err
	}
	return toCommentDTO(comment), nil
}

func (h Handler) ListCommentsHandler(ctx context.Context, issueID string, cursor string, limit int) (httptransport.ListCommentsResponse, error) {
	comments, nextCursor, err := h.Service.ListComments(ctx, issueID, cursor, limit)
	if err != nil {
		return httptransport.ListCommentsResponse{}, err
	}
	items := make([]httptransport.CommentDTO, 0, len(comments))
	for _, comment := range comments {
		items = append(items, toCommentDTO(comment))
	}
	return httptransport.ListCommentsResponse{
		IssueID:    issueID,
		Comments:   items,
		NextCursor: nextCursor,
	}, nil
}

func (h Handler) DeleteCommentHandler(ctx context.Context, actor authctx.Context, commentID string) error {
	return h.Service.DeleteComment(ctx, actor, commentID)
}

func (h Handler) UpvoteHandler(ctx context.Context, actor authctx.Context, issueID string) error {
	return h.Service.Upvote(ctx, actor, issueID)
}

func (h Handler) RemoveUpvoteHandler(ctx context.Context, actor authctx.Context, issueID string) error {
	return h.Service.RemoveUpvote(ctx, actor, issueID)
}

func (h Handler) EndorseHandler(ctx context.Context, actor authctx.Context, issueID string, request httptransport.EndorseRequest) error {
	return h.Service.Endorse(ctx, actor, issueID, request.Note)
}

func (h Handler) ListEndorsementsHandler(ctx context.Context, issueID string) (httptransport.ListEndorsementsResponse, error) {
	endorsements, err := h.Service.ListEndorsements(ctx, issueID)
	if err != nil {
		return httptransport.ListEndorsementsResponse{}, err
	}
	items := make([]httptransport.EndorsementDTO, 0, len(endorsements))
	for _, endorsement := range endorsements {
		items = append(items, httptransport.EndorsementDTO{
			IssueID:    endorsement.IssueID,
			AdvocateID: endorsement.AdvocateID,
			Note:       endorsement.Note,
			CreatedAt:  endorsement.CreatedAt,
		})
	}
	return httptransport.ListEndorsementsResponse{IssueID: issueID, Endorsements: items}, nil
}

func (h Handler) SummaryHandler(ctx context.Context, issueID string) (httptransport.SummaryDTO, error) {
	summary, err := h.Service.GetSummary(ctx, issueID)
	if err != nil {
		return httptransport.SummaryDTO{}, err
	}
	return httptransport.SummaryDTO{
		IssueID:      summary.IssueID,
		Comments:     summary.Comments,
		Upvotes:      summary.Upvotes,
		Endorsements: summary.Endorsements,
	}, nil
}

func toCommentDTO(comment entities.Comment) httptransport.CommentDTO {
	return httptransport.CommentDTO{
		CommentID: comment.CommentID,
		IssueID:   comment.IssueID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}
}
