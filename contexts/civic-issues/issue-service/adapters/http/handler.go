package httpadapter

import (
	"context"
	"log/slog"

	"civicpulse/contexts/civic-issues/issue-service/application"
	"civicpulse/contexts/civic-issues/issue-service/domain/entities"
	httptransport "civicpulse/contexts/civic-issues/issue-service/transport/http"
	"civicpulse/internal/shared/authctx"
)

// Handler maps HTTP DTOs to application operations.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ReportIssueHandler(
	ctx context.Context,
	actor authctx.Context,
	idempotencyKey string,
	request httptransport.ReportIssueRequest,
) (httptransport.IssueDTO, error) {
	issue, err := h.Service.ReportIssue(ctx, actor, idempotencyKey, application.ReportIssueInput{
		Title:       request.Title,
		Description: request.Description,
		Category:    request.Category,
		District:    request.District,
		Latitude:    request.Latitude,
		Longitude:   request.Longitude,
	})
	if err != nil {
		return httptransport.IssueDTO{}, err
	}
	return toIssueDTO(issue), nil
}

func (h Handler) ListIssuesHandler(ctx context.Context, request httptransport.ListIssuesRequest) (httptransport.ListIssuesResponse, error) {
	issues, nextCursor, err := h.Service.ListIssues(
		ctx,
		request.Status,
		request.Category,
		request.District,
		request.Cursor,
		request.Limit,
	)
	if err != nil {
		return httptransport.ListIssuesResponse{}, err
	}
	items := make([]httptransport.IssueDTO, 0, len(issues))
	for _, issue := range issues {
		items = append(items, toIssueDTO(issue))
	}
	return httptransport.ListIssuesResponse{Issues: items, NextCursor: nextCursor}, nil
}

func (h Handler) GetIssueHandler(ctx context.Context, issueID string) (httptransport.IssueDTO, error) {
	issue, err := h.Service.GetIssue(ctx, issueID)
	if err != nil {
		return httptransport.IssueDTO{}, err
	}
	return toIssueDTO(issue), nil
}

func (h Handler) StatusHistoryHandler(ctx context.Context, issueID string) (httptransport.StatusHistoryResponse, error) {
	changes, err := h.Service.GetStatusHistory(ctx, issueID)
	if err != nil {
		return httptransport.StatusHistoryResponse{}, err
	}
	items := make([]httptransport.StatusChangeDTO, 0, len(changes))
	for _, change := range changes {
		items = append(items, httptransport.StatusChangeDTO{
			ChangeID:   change.ChangeID,
			FromStatus: string(change.FromStatus),
			ToStatus:   string(change.ToStatus),
			ActorID:    change.ActorID,
			Note:       change.Note,
			ChangedAt:  change.ChangedAt,
		})
	}
	return httptransport.StatusHistoryResponse{IssueID: issueID, Changes: items}, nil
}

func (h Handler) UpdateStatusHandler(
	ctx context.Context,
	actor authctx.Context,
	issueID string,
	request httptransport.UpdateStatusRequest,
) (httptransport.IssueDTO, error) {
	issue, err := h.Service.UpdateStatus(ctx, actor, issueID, request.Status, request.Note)
	if err != nil {
		return httptransport.IssueDTO{}, err
	}
	return toIssueDTO(issue), nil
}

func (h Handler) AssignIssueHandler(
	ctx context.Context,
	actor authctx.Context,
	issueID string,
	request httptransport.AssignIssueRequest,
) (httptransport.IssueDTO, error) {
	issue, err := h.Service.AssignIssue(ctx, actor, issueID, request.AssigneeID)
	if err != nil {
		return httptransport.IssueDTO{}, err
	}
	return toIssueDTO(issue), nil
}

func (h Handler) DeleteIssueHandler(ctx context.Context, actor authctx.Context, issueID string) error {
	return h.Service.DeleteIssue(ctx, actor, issueID)
}

func toIssueDTO(issue entities.Issue) httptransport.IssueDTO {
	return httptransport.IssueDTO{
		IssueID:     issue.IssueID,
		ReporterID:  issue.ReporterID,
		Title:       issue.Title,
		Description: issue.Description,
		Category:    string(issue.Category),
		Status:      string(issue.Status),
		District:    issue.District,
		Latitude:    issue.Latitude,
		Longitude:   issue.Longitude,
		AssigneeID:  issue.AssigneeID,
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
	}
}
