package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "civicpulse/contexts/civic-issues/issue-service/application"
	"civicpulse/contexts/civic-issues/issue-service/ports"
)

// OutboxRelay drains pending issue events onto the bus. Delivery is best
// effort: a row that fails to decode is marked failed rather than wedging
// the relay, and publish errors leave the row pending for the next pass.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("issue outbox list failed",
			"event", "issue_outbox_list_failed",
			"module", "civic-issues/issue-service",
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
		var event ports.IssueEvent
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("issue outbox row undecodable, marking failed",
				"event", "issue_outbox_row_failed",
				"module", "civic-issues/issue-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			if err := r.Outbox.MarkOutboxFailed(ctx, row.OutboxID, now); err != nil {
				return err
			}
			continue
		}
		if err := r.Publisher.PublishIssueEvent(ctx, event); err != nil {
			logger.Error("issue outbox publish failed",
				"event", "issue_outbox_publish_failed",
				"module", "civic-issues/issue-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			return err
		}
	}
	return nil
}
