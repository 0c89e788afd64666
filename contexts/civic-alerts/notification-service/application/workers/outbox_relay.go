package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"civicpulse/contexts/civic-alerts/notification-service/application"
	"civicpulse/contexts/civic-alerts/notification-service/ports"
)

const defaultMaxAttempts = 5

// OutboxRelay drains pending alert events onto the bus with bounded retries.
// A publish failure records an attempt and leaves the row pending; once the
// attempt limit is reached the row is marked failed and skipped for good.
type OutboxRelay struct {
	Outbox      ports.OutboxRepository
	Publisher   ports.EventPublisher
	Clock       ports.Clock
	BatchSize   int
	MaxAttempts int
	Logger      *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}
	maxAttempts := r.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("alert outbox list failed",
			"event", "alert_outbox_list_failed",
			"module", "civic-alerts/notification-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var event ports.AlertEvent
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("alert outbox row undecodable, marking failed",
				"event", "alert_outbox_row_failed",
				"module", "civic-alerts/notification-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			if err := r.Outbox.MarkOutboxFailed(ctx, row.OutboxID, now); err != nil {
				return err
			}
			continue
		}
		if err := r.Publisher.PublishAlertEvent(ctx, event); err != nil {
			logger.Warn("alert outbox publish failed",
				"event", "alert_outbox_publish_failed",
				"module", "civic-alerts/notification-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"attempts", row.Attempts+1,
				"error", err.Error(),
			)
			if row.Attempts+1 >= maxAttempts {
				if err := r.Outbox.MarkOutboxFailed(ctx, row.OutboxID, now); err != nil {
					return err
				}
				continue
			}
			if err := r.Outbox.RecordOutboxAttempt(ctx, row.OutboxID, now); err != nil {
				return err
			}
			continue
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			return err
		}
	}
	return nil
}
