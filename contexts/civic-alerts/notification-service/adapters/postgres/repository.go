package postgresadapter

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"civicpulse/contexts/civic-alerts/notification-service/domain/entities"
	domainerrors "civicpulse/contexts/civic-alerts/notification-service/domain/errors"
	"civicpulse/contexts/civic-alerts/notification-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
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

type notificationModel struct {
	NotificationID string     `gorm:"column:notification_id;primaryKey"`
	RecipientID    string     `gorm:"column:recipient_id;index"`
	Type           string     `gorm:"column:type"`
	Title          string     `gorm:"column:title"`
	Body           string     `gorm:"column:body"`
	Read           bool       `gorm:"column:read;index"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	ReadAt         *time.Time `gorm:"column:read_at"`
}

func (notificationModel) TableName() string { return "notifications" }

type broadcastModel struct {
	BroadcastID string    `gorm:"column:broadcast_id;primaryKey"`
	SenderID    string    `gorm:"column:sender_id"`
	District    string    `gorm:"column:district;index"`
	Title       string    `gorm:"column:title"`
	Body        string    `gorm:"column:body"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (broadcastModel) TableName() string { return "alert_broadcasts" }

type outboxModel struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status;index"`
	Attempts    int        `gorm:"column:attempts"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "alert_outbox" }

type idempotencyModel struct {
	Key         string    `gorm:"column:idempotency_key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	Payload     []byte    `gorm:"column:payload"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string { return "alert_idempotency" }

type processedEventModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (processedEventModel) TableName() string { return "alert_processed_events" }

func (m notificationModel) toEntity() entities.Notification {
	return entities.Notification{
		NotificationID: m.NotificationID,
		RecipientID:    m.RecipientID,
		Type:           entities.Type(m.Type),
		Title:          m.Title,
		Body:           m.Body,
		Read:           m.Read,
		CreatedAt:      m.CreatedAt,
		ReadAt:         m.ReadAt,
	}
}

func (r *Repository) CreateNotification(ctx context.Context, notification entities.Notification) (entities.Notification, error) {
	row := notificationModel{
		NotificationID: notification.NotificationID,
		RecipientID:    notification.RecipientID,
		Type:           string(notification.Type),
		Title:          notification.Title,
		Body:           notification.Body,
		Read:           notification.Read,
		CreatedAt:      notification.CreatedAt,
		ReadAt:         notification.ReadAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return entities.Notification{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetNotification(ctx context.Context, notificationID string) (entities.Notification, error) {
	var row notificationModel
	err := r.db.WithContext(ctx).Where("notification_id = ?", notificationID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Notification{}, domainerrors.ErrNotificationNotFound
		}
		return entities.Notification{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListNotifications(ctx context.Context, recipientID string, unreadOnly bool, cursor string, limit int) ([]entities.Notification, string, error) {
	if limit <= 0 {
		limit = 20
	}
	offset := decodeCursor(cursor)
	if offset < 0 {
		offset = 0
	}

	tx := r.db.WithContext(ctx).Model(&notificationModel{}).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		tx = tx.Where("read = ?", false)
	}

	var rows []notificationModel
	if err := tx.Order("created_at DESC, notification_id ASC").
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

	items := make([]entities.Notification, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nextCursor, nil
}

func (r *Repository) MarkRead(ctx context.Context, notificationID string, readAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&notificationModel{}).
		Where("notification_id = ?", notificationID).
		Updates(map[string]any{"read": true, "read_at": readAt})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotificationNotFound
	}
	return nil
}

func (r *Repository) MarkAllRead(ctx context.Context, recipientID string, readAt time.Time) (int, error) {
	result := r.db.WithContext(ctx).Model(&notificationModel{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Updates(map[string]any{"read": true, "read_at": readAt})
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

// CreateBroadcast writes the broadcast row and its outbox row in one
// transaction so the relay never sees a broadcast without its event.
func (r *Repository) CreateBroadcast(ctx context.Context, input ports.BroadcastInput) (entities.Broadcast, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&broadcastModel{
			BroadcastID: input.Broadcast.BroadcastID,
			SenderID:    input.Broadcast.SenderID,
			District:    input.Broadcast.District,
			Title:       input.Broadcast.Title,
			Body:        input.Broadcast.Body,
			CreatedAt:   input.Broadcast.CreatedAt,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&outboxModel{
			OutboxID:  input.OutboxID,
			EventType: "alert.broadcast",
			Payload:   input.EventPayload,
			Status:    outboxStatusPending,
			CreatedAt: input.Broadcast.CreatedAt,
		}).Error
	})
	if err != nil {
		return entities.Broadcast{}, err
	}
	return input.Broadcast, nil
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
			Attempts:  row.Attempts,
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

func (r *Repository) RecordOutboxAttempt(ctx context.Context, outboxID string, _ time.Time) error {
	return r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Update("attempts", gorm.Expr("attempts + 1")).
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

// MarkProcessed inserts the event id; a unique violation means another
// delivery already handled it.
func (r *Repository) MarkProcessed(ctx context.Context, eventID string, processedAt time.Time) (bool, error) {
	err := r.db.WithContext(ctx).Create(&processedEventModel{
		EventID:     eventID,
		ProcessedAt: processedAt,
	}).Error
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return false, nil
		}
		return false, err
	}
	return true, nil
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
