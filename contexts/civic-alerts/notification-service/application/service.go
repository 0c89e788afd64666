package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"civicpulse/contexts/civic-alerts/notification-service/domain/entities"
	domainerrors "civicpulse/contexts/civic-alerts/notification-service/domain/errors"
	"civicpulse/contexts/civic-alerts/notification-service/ports"
	contractsv1 "civicpulse/contracts/gen/events/v1"
	"civicpulse/internal/shared/authctx"
)

const sourceService = "notification-service"

type Service struct {
	Repo           ports.Repository
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IDs            ports.IDGenerator
	Logger         *slog.Logger
	IdempotencyTTL time.Duration
}

// ListNotifications returns the caller's own inbox. There is no way to read
// another user's notifications, regardless of role.
func (s Service) ListNotifications(ctx context.Context, actor authctx.Context, unreadOnly bool, cursor string, limit int) ([]entities.Notification, string, error) {
	claims, err := authctx.RequireAuthenticated(actor)
	if err != nil {
		return nil, "", err
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.Repo.ListNotifications(ctx, claims.SubjectID, unreadOnly, cursor, limit)
}

// MarkRead marks one of the caller's notifications as read. A notification
// belonging to someone else reads as not found.
func (s Service) MarkRead(ctx context.Context, actor authctx.Context, notificationID string) error {
	claims, err := authctx.RequireAuthenticated(actor)
	if err != nil {
		return err
	}
	if strings.TrimSpace(notificationID) == "" {
		return domainerrors.ErrInvalidRequest
	}
	notification, err := s.Repo.GetNotification(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.RecipientID != claims.SubjectID {
		return domainerrors.ErrNotificationNotFound
	}
	if notification.Read {
		return nil
	}
	return s.Repo.MarkRead(ctx, notificationID, s.now())
}

// MarkAllRead marks the caller's whole inbox read and returns the count.
func (s Service) MarkAllRead(ctx context.Context, actor authctx.Context) (int, error) {
	claims, err := authctx.RequireAuthenticated(actor)
	if err != nil {
		return 0, err
	}
	return s.Repo.MarkAllRead(ctx, claims.SubjectID, s.now())
}

type BroadcastInput struct {
	District string
	Title    string
	Body     string
}

// Broadcast publishes an area-wide alert. Staff or admin only. The broadcast
// row and its outbox event are persisted atomically; replays of the same
// Idempotency-Key return the originally created broadcast.
func (s Service) Broadcast(
	ctx context.Context,
	actor authctx.Context,
	idempotencyKey string,
	input BroadcastInput,
) (entities.Broadcast, error) {
	var out entities.Broadcast
	claims, err := authctx.RequireRole(actor, authctx.RoleAdmin, authctx.RoleMunicipalStaff)
	if err != nil {
		return out, err
	}
	title := strings.TrimSpace(input.Title)
	body := strings.TrimSpace(input.Body)
	if title == "" || body == "" {
		return out, domainerrors.ErrInvalidRequest
	}
	if strings.TrimSpace(idempotencyKey) == "" {
		return out, domainerrors.ErrIdempotencyKeyRequired
	}

	district := strings.TrimSpace(input.District)
	requestHash := hashStrings("broadcast", claims.SubjectID, district, title, body)
	err = s.runIdempotent(
		ctx,
		strings.TrimSpace(idempotencyKey),
		requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &out) },
		func() ([]byte, error) {
			broadcastID, err := s.IDs.NewID(ctx)
			if err != nil {
				return nil, err
			}
			outboxID, err := s.IDs.NewID(ctx)
			if err != nil {
				return nil, err
			}
			now := s.now()
			broadcast := entities.Broadcast{
				BroadcastID: broadcastID,
				SenderID:    claims.SubjectID,
				District:    district,
				Title:       title,
				Body:        body,
				CreatedAt:   now,
			}
			payload, err := s.broadcastEnvelope(broadcast, outboxID, now)
			if err != nil {
				return nil, err
			}
			created, err := s.Repo.CreateBroadcast(ctx, ports.BroadcastInput{
				Broadcast:    broadcast,
				OutboxID:     outboxID,
				EventPayload: payload,
			})
			if err != nil {
				return nil, err
			}
			ResolveLogger(s.Logger).Info("alert broadcast",
				"event", "alert_broadcast",
				"module", "civic-alerts/notification-service",
				"layer", "application",
				"broadcast_id", created.BroadcastID,
				"sender_id", claims.SubjectID,
				"district", district,
			)
			return json.Marshal(created)
		},
	)
	return out, err
}

func (s Service) broadcastEnvelope(broadcast entities.Broadcast, eventID string, now time.Time) ([]byte, error) {
	data, err := json.Marshal(map[string]string{
		"broadcast_id": broadcast.BroadcastID,
		"sender_id":    broadcast.SenderID,
		"district":     broadcast.District,
		"title":        broadcast.Title,
		"body":         broadcast.Body,
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(contractsv1.Envelope{
		EventID:       eventID,
		EventType:     contractsv1.EventTypeAlertBroadcast,
		OccurredAt:    now,
		SourceService: sourceService,
		SchemaVersion: 1,
		PartitionKey:  broadcast.District,
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
