package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"civicpulse/contexts/civic-issues/issue-service/domain/entities"
	domainerrors "civicpulse/contexts/civic-issues/issue-service/domain/errors"
	"civicpulse/contexts/civic-issues/issue-service/ports"
	contractsv1 "civicpulse/contracts/gen/events/v1"
	"civicpulse/internal/shared/authctx"
)

const sourceService = "issue-service"

type Service struct {
	Repo           ports.Repository
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IDs            ports.IDGenerator
	Logger         *slog.Logger
	IdempotencyTTL time.Duration
}

type ReportIssueInput struct {
	Title       string
	Description string
	Category    string
	District    string
	Latitude    float64
	Longitude   float64
}

// ReportIssue files a new issue for the authenticated reporter. Replays of
// the same Idempotency-Key return the originally created issue.
func (s Service) ReportIssue(
	ctx context.Context,
	actor authctx.Context,
	idempotencyKey string,
	input ReportIssueInput,
) (entities.Issue, error) {
	var out entities.Issue
	claims, err := authctx.RequireAuthenticated(actor)
	if err != nil {
		return out, err
	}
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return out, domainerrors.ErrInvalidRequest
	}
	category, ok := entities.ParseCategory(input.Category)
	if !ok {
		return out, domainerrors.ErrUnknownCategory
	}
	if strings.TrimSpace(idempotencyKey) == "" {
		return out, domainerrors.ErrIdempotencyKeyRequired
	}

	requestHash := hashStrings("report_issue", claims.SubjectID, title, description, string(category))
	err = s.runIdempotent(
		ctx,
		strings.TrimSpace(idempotencyKey),
		requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &out) },
		func() ([]byte, error) {
			issueID, err := s.IDs.NewID(ctx)
			if err != nil {
				return nil, err
			}
			now := s.now()
			issue, err := s.Repo.CreateIssue(ctx, entities.Issue{
				IssueID:     issueID,
				ReporterID:  claims.SubjectID,
				Title:       title,
				Description: description,
				Category:    category,
				Status:      entities.StatusReported,
				District:    strings.TrimSpace(input.District),
				Latitude:    input.Latitude,
				Longitude:   input.Longitude,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
			if err != nil {
				return nil, err
			}
			ResolveLogger(s.Logger).Info("issue reported",
				"event", "issue_reported",
				"module", "civic-issues/issue-service",
				"layer", "application",
				"issue_id", issue.IssueID,
				"reporter_id", claims.SubjectID,
				"category", string(category),
			)
			return json.Marshal(issue)
		},
	)
	return out, err
}

// ListIssues is public: anonymous readers browse the issue map.
func (s Service) ListIssues(ctx context.Context, rawStatus, rawCategory, district, cursor string, limit int) ([]entities.Issue, string, error) {
	filter := ports.ListFilter{
		District: strings.TrimSpace(district),
		Cursor:   cursor,
		Limit:    limit,
	}
	if raw := strings.TrimSpace(rawStatus); raw != "" {
		status, ok := entities.ParseStatus(raw)
		if !ok {
			return nil, "", domainerrors.ErrInvalidListFilter
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(rawCategory); raw != "" {
		category, ok := entities.ParseCategory(raw)
		if !ok {
			return nil, "", domainerrors.ErrInvalidListFilter
		}
		filter.Category = category
	}
	return s.Repo.ListIssues(ctx, filter)
}

// GetIssue is public.
func (s Service) GetIssue(ctx context.Context, issueID string) (entities.Issue, error) {
	if strings.TrimSpace(issueID) == "" {
		return entities.Issue{}, domainerrors.ErrInvalidRequest
	}
	return s.Repo.GetIssue(ctx, issueID)
}

// GetStatusHistory is public: the triage trail is part of the civic record.
func (s Service) GetStatusHistory(ctx context.Context, issueID string) ([]entities.StatusChange, error) {
	if strings.TrimSpace(issueID) == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	if _, err := s.Repo.GetIssue(ctx, issueID); err != nil {
		return nil, err
	}
	return s.Repo.ListStatusHistory(ctx, issueID)
}

// UpdateStatus moves an issue along the triage lifecycle. Staff or admin
// only. The history row and the outbox event are persisted atomically with
// the status change.
func (s Service) UpdateStatus(
	ctx context.Context,
	actor authctx.Context,
	issueID string,
	rawStatus string,
	note string,
) (entities.Issue, error) {
	claims, err := authctx.RequireRole(actor, authctx.RoleAdmin, authctx.RoleMunicipalStaff)
	if err != nil {
		return entities.Issue{}, err
	}
	next, ok := entities.ParseStatus(rawStatus)
	if !ok {
		return entities.Issue{}, domainerrors.ErrUnknownStatus
	}

	issue, err := s.Repo.GetIssue(ctx, issueID)
	if err != nil {
		return entities.Issue{}, err
	}
	if !issue.Status.CanTransition(next) {
		return entities.Issue{}, domainerrors.ErrInvalidTransition
	}

	changeID, err := s.IDs.NewID(ctx)
	if err != nil {
		return entities.Issue{}, err
	}
	outboxID, err := s.IDs.NewID(ctx)
	if err != nil {
		return entities.Issue{}, err
	}
	now := s.now()

	payload, err := s.statusChangedEnvelope(issue, next, claims.SubjectID, outboxID, now)
	if err != nil {
		return entities.Issue{}, err
	}
	updated, err := s.Repo.UpdateStatus(ctx, ports.StatusUpdateInput{
		IssueID:      issueID,
		ChangeID:     changeID,
		OutboxID:     outboxID,
		NextStatus:   next,
		ActorID:      claims.SubjectID,
		Note:         strings.TrimSpace(note),
		ChangedAt:    now,
		EventPayload: payload,
	})
	if err != nil {
		return entities.Issue{}, err
	}

	ResolveLogger(s.Logger).Info("issue status updated",
		"event", "issue_status_updated",
		"module", "civic-issues/issue-service",
		"layer", "application",
		"issue_id", issueID,
		"from_status", string(issue.Status),
		"to_status", string(next),
		"actor_id", claims.SubjectID,
	)
	return updated, nil
}

// AssignIssue routes an issue to a staff member. Staff or admin only.
func (s Service) AssignIssue(ctx context.Context, actor authctx.Context, issueID string, assigneeID string) (entities.Issue, error) {
	if _, err := authctx.RequireRole(actor, authctx.RoleAdmin, authctx.RoleMunicipalStaff); err != nil {
		return entities.Issue{}, err
	}
	if strings.TrimSpace(issueID) == "" || strings.TrimSpace(assigneeID) == "" {
		return entities.Issue{}, domainerrors.ErrInvalidRequest
	}
	return s.Repo.AssignIssue(ctx, issueID, strings.TrimSpace(assigneeID), s.now())
}

// DeleteIssue removes an issue. The reporter may withdraw their own report
// while it is still in the reported stage; admins may delete at any stage.
func (s Service) DeleteIssue(ctx context.Context, actor authctx.Context, issueID string) error {
	issue, err := s.Repo.GetIssue(ctx, issueID)
	if err != nil {
		return err
	}
	claims, err := authctx.RequireSelfOrRole(actor, issue.ReporterID, authctx.RoleAdmin)
	if err != nil {
		return err
	}
	if claims.Role != authctx.RoleAdmin && issue.Status != entities.StatusReported {
		return domainerrors.ErrIssueLocked
	}
	return s.Repo.DeleteIssue(ctx, issueID)
}

func (s Service) statusChangedEnvelope(
	issue entities.Issue,
	next entities.Status,
	actorID string,
	eventID string,
	now time.Time,
) ([]byte, error) {
	data, err := json.Marshal(map[string]string{
		"issue_id":    issue.IssueID,
		"reporter_id": issue.ReporterID,
		"title":       issue.Title,
		"from_status": string(issue.Status),
		"to_status":   string(next),
		"actor_id":    actorID,
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(contractsv1.Envelope{
		EventID:       eventID,
		EventType:     contractsv1.EventTypeIssueStatusChanged,
		OccurredAt:    now,
		SourceService: sourceService,
		SchemaVersion: 1,
		PartitionKey:  issue.IssueID,
		Data:          data,
	})
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) idempotencyTTL() time.Duration {
	if s.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.IdempotencyTTL
}

func (s Service) runIdempotent(
	ctx context.Context,
	key string,
	requestHash string,
	decode func([]byte) error,
	exec func() ([]byte, error),
) error {
	now := s.now()
	record, found, err := s.Idempotency.Get(ctx, key, now)
	if err != nil {
		return err
	}
	if found {
		if record.RequestHash != requestHash {
			return domainerrors.ErrIdempotencyConflict
		}
		return decode(record.Payload)
	}

	payload, err := exec()
	if err != nil {
		return err
	}
	if err := s.Idempotency.Put(ctx, ports.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Payload:     payload,
		ExpiresAt:   now.Add(s.idempotencyTTL()),
	}); err != nil {
		return err
	}
	return decode(payload)
}

func hashStrings(values ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(values, "|")))
	return hex.EncodeToString(sum[:])
}
