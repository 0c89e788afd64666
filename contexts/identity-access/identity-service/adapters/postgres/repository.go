package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"civicpulse/contexts/identity-access/identity-service/domain/entities"
	domainerrors "civicpulse/contexts/identity-access/identity-service/domain/errors"
	"civicpulse/contexts/identity-access/identity-service/ports"
	"civicpulse/internal/shared/authctx"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

const (
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

type userModel struct {
	UserID       string    `gorm:"column:user_id;primaryKey"`
	Username     string    `gorm:"column:username;uniqueIndex:users_username_key"`
	Email        string    `gorm:"column:email;uniqueIndex:users_email_key"`
	PasswordHash string    `gorm:"column:password_hash"`
	Role         string    `gorm:"column:role"`
	District     string    `gorm:"column:district"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type outboxModel struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status;index"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "identity_outbox" }

func (m userModel) toEntity() entities.User {
	role, _ := authctx.ParseRole(m.Role)
	return entities.User{
		UserID:       m.UserID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         role,
		District:     m.District,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func fromEntity(user entities.User) userModel {
	return userModel{
		UserID:       user.UserID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         user.Role.String(),
		District:     user.District,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func (r *Repository) CreateUser(ctx context.Context, input ports.CreateUserInput) (entities.User, error) {
	row := fromEntity(input.User)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				if strings.Contains(pgErr.ConstraintName, "email") {
					return domainerrors.ErrEmailTaken
				}
				return domainerrors.ErrUsernameTaken
			}
			return err
		}
		return tx.Create(&outboxModel{
			OutboxID:  input.OutboxID,
			EventType: "user.registered",
			Payload:   input.EventPayload,
			Status:    outboxStatusPending,
			CreatedAt: input.User.CreatedAt,
		}).Error
	})
	if err != nil {
		return entities.User{}, err
	}
	return row.toEntity(), nil
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

func (r *Repository) GetUser(ctx context.Context, userID string) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).Where("LOWER(username) = LOWER(?)", username).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListUsers(ctx context.Context, role authctx.Role, limit int) ([]entities.User, error) {
	tx := r.db.WithContext(ctx).Model(&userModel{})
	if role != "" {
		tx = tx.Where("role = ?", role.String())
	}
	if limit <= 0 {
		limit = 50
	}

	var rows []userModel
	if err := tx.Order("created_at ASC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.User, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, userID string, patch ports.ProfilePatch, now time.Time) (entities.User, error) {
	updates := map[string]any{"updated_at": now}
	if patch.Username != nil {
		updates["username"] = strings.TrimSpace(*patch.Username)
	}
	if patch.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*patch.Email))
	}
	if patch.District != nil {
		updates["district"] = strings.TrimSpace(*patch.District)
	}

	result := r.db.WithContext(ctx).Model(&userModel{}).Where("user_id = ?", userID).Updates(updates)
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == uniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return entities.User{}, domainerrors.ErrEmailTaken
			}
			return entities.User{}, domainerrors.ErrUsernameTaken
		}
		return entities.User{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return r.GetUser(ctx, userID)
}

func (r *Repository) UpdateRole(ctx context.Context, userID string, role authctx.Role, now time.Time) (entities.User, error) {
	result := r.db.WithContext(ctx).Model(&userModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"role": role.String(), "updated_at": now})
	if result.Error != nil {
		return entities.User{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return r.GetUser(ctx, userID)
}

func (r *Repository) DeleteUser(ctx context.Context, userID string) error {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&userModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUserNotFound
	}
	return nil
}
