package httpadapter

import (
	"context"
	"log/slog"

	"civicpulse/contexts/civic-alerts/notification-service/application"
	"civicpulse/contexts/civic-alerts/notification-service/domain/entities"
	httptransport "civicpulse/contexts/civic-alerts/notification-service/transport/http"
	"civicpulse/internal/shared/authctx"
)

// Handler maps HTTP DTOs to application operations.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ListNotificationsHandler(ctx context.Context, actor authctx.Context, unreadOnly bool, cursor string, limit int) (httptransport.ListNotificationsResponse, error) {
	notifications, nextCursor, err := h.Service.ListNotifications(ctx, actor, unreadOnly, cursor, limit)
	if err != nil {
		return httptransport.ListNotificationsResponse{}, err
	}
	items := make([]httptransport.NotificationDTO, 0, len(notifications))
	for _, notification := range notifications {
		items = append(items, toNotificationDTO(notification))
	}
	return httptransport.ListNotificationsResponse{
		Notifications: items,
		NextCursor:    nextCursor,
	}, nil
}

func (h Handler) MarkReadHandler(ctx context.Context, actor authctx.Context, notificationID string) error {
	return h.Service.MarkRead(ctx, actor, notificationID)
}

func (h Handler) MarkAllReadHandler(ctx context.Context, actor authctx.Context) (httptransport.MarkAllReadResponse, error) {
	updated, err := h.Service.MarkAllRead(ctx, actor)
	if err != nil {
		return httptransport.MarkAllReadResponse{}, err
	}
	return httptransport.MarkAllReadResponse{Updated: updated}, nil
}

func (h Handler) BroadcastHandler(ctx context.Context, actor authctx.Context, idempotencyKey string, request httptransport.BroadcastRequest) (httptransport.BroadcastDTO, error) {
	broadcast, err := h.Service.Broadcast(ctx, actor, idempotencyKey, application.BroadcastInput{
		District: request.District,
		Title:    request.Title,
		Body:     request.Body,
	})
	if err != nil {
		return httptransport.BroadcastDTO{}, err
	}
	return httptransport.BroadcastDTO{
		BroadcastID: broadcast.BroadcastID,
		SenderID:    broadcast.SenderID,
		District:    broadcast.District,
		Title:       broadcast.Title,
		Body:        broadcast.Body,
		CreatedAt:   broadcast.CreatedAt,
	}, nil
}

func toNotificationDTO(notification entities.Notification) httptransport.NotificationDTO {
	return httptransport.NotificationDTO{
		NotificationID: notification.NotificationID,
		Type:           string(notification.Type),
		Title:          notification.Title,
		Body:           notification.Body,
		Read:           notification.Read,
		CreatedAt:      notification.CreatedAt,
		ReadAt:         notification.ReadAt,
	}
}
