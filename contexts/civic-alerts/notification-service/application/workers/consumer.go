package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"civicpulse/contexts/civic-alerts/notification-service/application"
	"civicpulse/contexts/civic-alerts/notification-service/domain/entities"
	"civicpulse/contexts/civic-alerts/notification-service/ports"
	contractsv1 "civicpulse/contracts/gen/events/v1"
)

// Consumer turns cross-context events into inbox rows. Redeliveries are
// deduplicated by event id, so handling is safe to wire to an at-least-once
// bus. Events the consumer does not care about are acknowledged silently.
type Consumer struct {
	Repo   ports.Repository
	Dedup  ports.DedupStore
	Clock  ports.Clock
	IDs    ports.IDGenerator
	Logger *slog.Logger
}

func (c Consumer) HandleEvent(ctx context.Context, event contractsv1.Envelope) error {
	switch event.EventType {
	case contractsv1.EventTypeIssueStatusChanged:
		return c.handleIssueStatusChanged(ctx, event)
	case contractsv1.EventTypeUserRegistered:
		return c.handleUserRegistered(ctx, event)
	default:
		return nil
	}
}

type issueStatusChangedData struct {
	IssueID    string `json:"issue_id"`
	ReporterID string `json:"reporter_id"`
	Title      string `json:"title"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

func (c Consumer) handleIssueStatusChanged(ctx context.Context, event contractsv1.Envelope) error {
	first, err := c.Dedup.MarkProcessed(ctx, event.EventID, c.now())
	if err != nil {
		return err
	}
	if !first {
		return nil
	}

	var data issueStatusChangedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		c.logger().Error("issue status event undecodable",
			"event", "alert_consume_undecodable",
			"module", "civic-alerts/notification-service",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return nil
	}
	if data.ReporterID == "" {
		return nil
	}

	return c.createNotification(ctx, entities.Notification{
		RecipientID: data.ReporterID,
		Type:        entities.TypeIssueUpdate,
		Title:       "Your issue was updated",
		Body:        fmt.Sprintf("%q moved from %s to %s", data.Title, data.FromStatus, data.ToStatus),
	})
}

type userRegisteredData struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

func (c Consumer) handleUserRegistered(ctx context.Context, event contractsv1.Envelope) error {
	first, err := c.Dedup.MarkProcessed(ctx, event.EventID, c.now())
	if err != nil {
		return err
	}
	if !first {
		return nil
	}

	var data userRegisteredData
	if err := json.Unmarshal(event.Data, &data); err != nil || data.UserID == "" {
		return nil
	}

	return c.createNotification(ctx, entities.Notification{
		RecipientID: data.UserID,
		Type:        entities.TypeWelcome,
		Title:       "Welcome to CivicPulse",
		Body:        fmt.Sprintf("Hi %s, report issues in your neighborhood and follow their progress here.", data.Username),
	})
}

func (c Consumer) createNotification(ctx context.Context, notification entities.Notification) error {
	notificationID, err := c.IDs.NewID(ctx)
	if err != nil {
		return err
	}
	notification.NotificationID = notificationID
	notification.CreatedAt = c.now()
	if _, err := c.Repo.CreateNotification(ctx, notification); err != nil {
		return err
	}
	c.logger().Info("notification created",
		"event", "notification_created",
		"module", "civic-alerts/notification-service",
		"layer", "worker",
		"notification_id", notificationID,
		"recipient_id", notification.RecipientID,
		"type", string(notification.Type),
	)
	return nil
}

func (c Consumer) now() time.Time {
	if c.Clock == nil {
		return time.Now().UTC()
	}
	return c.Clock.Now().UTC()
}

func (c Consumer) logger() *slog.Logger {
	return application.ResolveLogger(c.Logger)
}
