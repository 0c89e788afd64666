package postgresadapter

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"civicpulse/contexts/civic-issues/issue-service/domain/entities"
	domainerrors "civicpulse/contexts/civic-issues/issue-service/domain/errors"
	"civicpulse/contexts/civic-issues/issue-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	uniqueViolation       = "23505"
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
	outboxStatusFailed    = "failed"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

type issueModel struct {
	IssueID     string    `gorm:"column:issue_id;primaryKey"`
	ReporterID  string    `gorm:"column:reporter_id;index"`
	Title       string    `gorm:"column:title"`
	Description string    `gorm:"column:description"`
	Category    string    `gorm:"column:category;index"`
	Status      string    `gorm:"column:status;index"`
	District    string    `gorm:"column:district;index"`
	Latitude    float64   `gorm:"column:latitude"`
	Longitude   float64   `gorm:"column:longitude"`
	AssigneeID  string    `gorm:"column:assignee_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (issueModel) TableName() string { return "issues" }

type statusChangeModel struct {
	ChangeID   string    `gorm:"column:change_id;primaryKey"`
	IssueID    string    `gorm:"column:issue_id;index"`
	FromStatus string    `gorm:"column:from_status"`
	ToStatus   string    `gorm:"column:to_status"`
	ActorID    string    `gorm:"column:actor_id"`
	Note       string    `gorm:"column:note"`
	ChangedAt  time.Time `gorm:"column:changed_at"`
}

func (statusChangeModel) TableName() string { return "issue_status_changes" }

type outboxModel struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status;index"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "issue_outbox" }

type idempotencyModel struct {
	Key         string    `gorm:"column:idempotency_key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	Payload     []byte    `gorm:"column:payload"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string { return "issue_idempotency" }

func (m issueModel) toEntity() entities.Issue {
	return entities.Issue{
		IssueID:     m.IssueID,
		ReporterID:  m.ReporterID,
		Title:       m.Title,
		Description: m.Description,
		Category:    entities.Category(m.Category),
		Status:      entities.Status(m.Status),
		District:    m.District,
		Latitude:    m.Latitude,
		Longitude:   m.Longitude,
		AssigneeID:  m.AssigneeID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *Repository) CreateIssue(ctx context.Context, issue entities.Issue) (entities.Issue, error) {
	row := issueModel{
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
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return entities.Issue{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetIssue(ctx context.Context, issueID string) (entities.Issue, error) {
	var row issueModel
	err := r.db.WithContext(ctx).Where("issue_id = ?", issueID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Issue{}, domainerrors.ErrIssueNotFound
		}
		return entities.Issue{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListIssues(ctx context.Context, filter ports.ListFilter) ([]entities.Issue, string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	tx := r.db.WithContext(ctx).Model(&issueModel{})
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	if filter.Category != "" {
		tx = tx.Where("category = ?", string(filter.Category))
	}
	if filter.District != "" {
		tx = tx.Where("district = ?", filter.District)
	}

	offset := decodeCursor(filter.Cursor)
	if offset < 0 {
		offset = 0
	}

	var rows []issueModel
	if err := tx.Order("created_at DESC, issue_id ASC").Offset(offset).Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = encodeCursor(offset + limit)
		rows = rows[:limit]
	}

	items := make([]entities.Issue, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nextCursor, nil
}

// UpdateStatus writes the issue row, the history row, and the outbox row in
// one transaction so the relay never sees a status change without its event.
func (r *Repository) UpdateStatus(ctx context.Context, input ports.StatusUpdateInput) (entities.Issue, error) {
	var updated issueModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current issueModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("issue_id = ?", input.IssueID).
			First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrIssueNotFound
			}
			return err
		}

		// Re-check against the locked row: the caller validated against a
		// read that may be stale by the time the lock is taken.
		if !entities.Status(current.Status).CanTransition(input.NextStatus) {
			return domainerrors.ErrInvalidTransition
		}

		if err := tx.Model(&issueModel{}).
			Where("issue_id = ?", input.IssueID).
			Updates(map[string]any{
				"status":     string(input.NextStatus),
				"updated_at": input.ChangedAt,
			}).Error; err != nil {
			return err
		}

		if err := tx.Create(&statusChangeModel{
			ChangeID:   input.ChangeID,
			IssueID:    input.IssueID,
			FromStatus: current.Status,
			ToStatus:   string(input.NextStatus),
			ActorID:    input.ActorID,
			Note:       input.Note,
			ChangedAt:  input.ChangedAt,
		}).Error; err != nil {
			return err
		}

		if err := tx.Create(&outboxModel{
			OutboxID:  input.OutboxID,
			EventType: "issue.status_changed",
			Payload:   input.EventPayload,
			Status:    outboxStatusPending,
			CreatedAt: input.ChangedAt,
		}).Error; err != nil {
			return err
		}

		return tx.Where("issue_id = ?", input.IssueID).First(&updated).Error
	})
	if err != nil {
		return entities.Issue{}, err
	}
	return updated.toEntity(), nil
}

func (r *Repository) AssignIssue(ctx context.Context, issueID string, assigneeID string, now time.Time) (entities.Issue, error) {
	result := r.db.WithContext(ctx).Model(&issueModel{}).
		Where("issue_id = ?", issueID).
		Updates(map[string]any{"assignee_id": assigneeID, "updated_at": now})
	if result.Error != nil {
		return entities.Issue{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.Issue{}, domainerrors.ErrIssueNotFound
	}
	return r.GetIssue(ctx, issueID)
}

func (r *Repository) DeleteIssue(ctx context.Context, issueID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("issue_id = ?", issueID).Delete(&issueModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrIssueNotFound
		}
		return tx.Where("issue_id = ?", issueID).Delete(&statusChangeModel{}).Error
	})
}

func (r *Repository) ListStatusHistory(ctx context.Context, issueID string) ([]entities.StatusChange, error) {
	var rows []statusChangeModel
	if err := r.db.WithContext(ctx).
		Where("issue_id = ?", issueID).
		Order("changed_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.StatusChange, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.StatusChange{
			ChangeID:   row.ChangeID,
			IssueID:    row.IssueID,
			FromStatus: entities.Status(row.FromStatus),
			ToStatus:   entities.Status(row.ToStatus),
			ActorID:    row.ActorID,
			Note:       row.Note,
			ChangedAt:  row.ChangedAt,
		})
	}
	return items, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:  row.OutboxID,
			EventType: row.EventType,
			Payload:   row.Payload,
			CreatedAt: row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{"status": outboxStatusPublished, "published_at": publishedAt}).
		Error
}

func (r *Repository) MarkOutboxFailed(ctx context.Context, outboxID string, failedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{"status": outboxStatusFailed, "published_at": failedAt}).
		Error
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("idempotency_key = ? AND expires_at > ?", key, now).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, err
	}
	return ports.IdempotencyRecord{
		Key:         row.Key,
		RequestHash: row.RequestHash,
		Payload:     row.Payload,
		ExpiresAt:   row.ExpiresAt,
	}, true, nil
}

func (r *Repository) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	err := r.db.WithContext(ctx).Create(&idempotencyModel{
		Key:         record.Key,
		RequestHash: record.RequestHash,
		Payload:     record.Payload,
		ExpiresAt:   record.ExpiresAt,
	}).Error
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domainerrors.ErrIdempotencyConflict
		}
		return err
	}
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
