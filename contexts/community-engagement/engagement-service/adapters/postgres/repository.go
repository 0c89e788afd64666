package postgresadapter

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"civicpulse/contexts/community-engagement/engagement-service/domain/entities"
	domainerrors "civicpulse/contexts/community-engagement/engagement-service/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

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

type commentModel struct {
	CommentID string    `gorm:"column:comment_id;primaryKey"`
	IssueID   string    `gorm:"column:issue_id;index"`
	AuthorID  string    `gorm:"column:author_id;index"`
	Body      string    `gorm:"column:body"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (commentModel) TableName() string { return "engagement_comments" }

type upvoteModel struct {
	IssueID   string    `gorm:"column:issue_id;primaryKey"`
	UserID    string    `gorm:"column:user_id;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (upvoteModel) TableName() string { return "engagement_upvotes" }

type endorsementModel struct {
	IssueID    string    `gorm:"column:issue_id;primaryKey"`
	AdvocateID string    `gorm:"column:advocate_id;primaryKey"`
	Note       string    `gorm:"column:note"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (endorsementModel) TableName() string { return "engagement_endorsements" }

func (m commentModel) toEntity() entities.Comment {
	return entities.Comment{
		CommentID: m.CommentID,
		IssueID:   m.IssueID,
		AuthorID:  m.AuthorID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

func (r *Repository) CreateComment(ctx context.Context, comment entities.Comment) (entities.Comment, error) {
	row := commentModel{
		CommentID: comment.CommentID,
		IssueID:   comment.IssueID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return entities.Comment{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetComment(ctx context.Context, commentID string) (entities.Comment, error) {
	var row commentModel
	err := r.db.WithContext(ctx).Where("comment_id = ?", commentID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Comment{}, domainerrors.ErrCommentNotFound
		}
		return entities.Comment{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListComments(ctx context.Context, issueID string, cursor string, limit int) ([]entities.Comment, string, error) {
	if limit <= 0 {
		limit = 20
	}
	offset := decodeCursor(cursor)
	if offset < 0 {
		offset = 0
	}

	var rows []commentModel
	if err := r.db.WithContext(ctx).
		Where("issue_id = ?", issueID).
		Order("created_at DESC, comment_id ASC").
		Offset(offset).
		Limit(limit + 1).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = encodeCursor(offset + limit)
		rows = rows[:limit]
	}

	items := make([]entities.Comment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nextCursor, nil
}

func (r *Repository) DeleteComment(ctx context.Context, commentID string) error {
	result := r.db.WithContext(ctx).Where("comment_id = ?", commentID).Delete(&commentModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCommentNotFound
	}
	return nil
}

func (r *Repository) AddUpvote(ctx context.Context, upvote entities.Upvote) error {
	err := r.db.WithContext(ctx).Create(&upvoteModel{
		IssueID:   upvote.IssueID,
		UserID:    upvote.UserID,
		CreatedAt: upvote.CreatedAt,
	}).Error
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domainerrors.ErrAlreadyUpvoted
		}
		return err
	}
	return nil
}

func (r *Repository) RemoveUpvote(ctx context.Context, issueID string, userID string) error {
	result := r.db.WithContext(ctx).
		Where("issue_id = ? AND user_id = ?", issueID, userID).
		Delete(&upvoteModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUpvoteNotFound
	}
	return nil
}

func (r *Repository) AddEndorsement(ctx context.Context, endorsement entities.Endorsement) error {
	err := r.db.WithContext(ctx).Create(&endorsementModel{
		IssueID:    endorsement.IssueID,
		AdvocateID: endorsement.AdvocateID,
		Note:       endorsement.Note,
		CreatedAt:  endorsement.CreatedAt,
	}).Error
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domainerrors.ErrAlreadyEndorsed
		}
		return err
	}
	return nil
}

func (r *Repository) ListEndorsements(ctx context.Context, issueID string) ([]entities.Endorsement, error) {
	var rows []endorsementModel
	if err := r.db.WithContext(ctx).
		Where("issue_id = ?", issueID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Endorsement, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.Endorsement{
			IssueID:    row.IssueID,
			AdvocateID: row.AdvocateID,
			Note:       row.Note,
			CreatedAt:  row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) GetSummary(ctx context.Context, issueID string) (entities.Summary, error) {
	summary := entities.Summary{IssueID: issueID}

	var comments int64
	if err := r.db.WithContext(ctx).Model(&commentModel{}).
		Where("issue_id = ?", issueID).Count(&comments).Error; err != nil {
		return entities.Summary{}, err
	}
	var upvotes int64
	if err := r.db.WithContext(ctx).Model(&upvoteModel{}).
		Where("issue_id = ?", issueID).Count(&upvotes).Error; err != nil {
		return entities.Summary{}, err
	}
	var endorsements int64
	if err := r.db.WithContext(ctx).Model(&endorsementModel{}).
		Where("issue_id = ?", issueID).Count(&endorsements).Error; err != nil {
		return entities.Summary{}, err
	}

	summary.Comments = int(comments)
	summary.Upvotes = int(upvotes)
	summary.Endorsements = int(endorsements)
	return summary, nil
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
