package memory

import (
	"context"
	"encoding/base64"
	"sort"
	"strconv"
	"sync"
	"time"

	"civicpulse/contexts/civic-alerts/notification-service/domain/entities"
	domainerrors "civicpulse/contexts/civic-alerts/notification-service/domain/errors"
	"civicpulse/contexts/civic-alerts/notification-service/ports"

	"github.com/google/uuid"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
	outboxStatusFailed    = "failed"
)

// Store is an in-memory adapter implementing the repository, outbox,
// idempotency, dedup, clock, and id generator ports. Intended for tests and
// local development wiring.
type Store struct {
	mu sync.RWMutex

	notifications map[string]entities.Notification
	broadcasts    map[string]entities.Broadcast
	outbox        map[string]outboxRow
	idempotency   map[string]ports.IdempotencyRecord
	processed     map[string]time.Time
}

type outboxRow struct {
	ports.OutboxMessage
	Status string
}

func NewStore() *Store {
	return &Store{
		notifications: make(map[string]entities.Notification),
		broadcasts:    make(map[string]entities.Broadcast),
		outbox:        make(map[string]outboxRow),
		idempotency:   make(map[string]ports.IdempotencyRecord),
		processed:     make(map[string]time.Time),
	}
}

func (s *Store) Now() time.Time { return time.Now().UTC() }

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) CreateNotification(_ context.Context, notification entities.Notification) (entities.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications[notification.NotificationID] = notification
	return notification, nil
}

func (s *Store) GetNotification(_ context.Context, notificationID string) (entities.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notification, ok := s.notifications[notificationID]
	if !ok {
		return entities.Notification{}, domainerrors.ErrNotificationNotFound
	}
	return notification, nil
}

func (s *Store) ListNotifications(_ context.Context, recipientID string, unreadOnly bool, cursor string, limit int) ([]entities.Notification, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Notification, 0)
	for _, notification := range s.notifications {
		if notification.RecipientID != recipientID {
			continue
		}
		if unreadOnly && notification.Read {
			continue
		}
		items = append(items, notification)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].NotificationID < items[j].NotificationID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	offset := decodeCursor(cursor)
	if offset < 0 || offset > len(items) {
		offset = 0
	}
	items = items[offset:]

	nextCursor := ""
	if len(items) > limit {
		nextCursor = encodeCursor(offset + limit)
		items = items[:limit]
	}
	return items, nextCursor, nil
}

func (s *Store) MarkRead(_ context.Context, notificationID string, readAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notification, ok := s.notifications[notificationID]
	if !ok {
		return domainerrors.ErrNotificationNotFound
	}
	notification.Read = true
	notification.ReadAt = &readAt
	s.notifications[notificationID] = notification
	return nil
}

func (s *Store) MarkAllRead(_ context.Context, recipientID string, readAt time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, notification := range s.notifications {
		if notification.RecipientID != recipientID || notification.Read {
			continue
		}
		notification.Read = true
		notification.ReadAt = &readAt
		s.notifications[id] = notification
		count++
	}
	return count, nil
}

func (s *Store) CreateBroadcast(_ context.Context, input ports.BroadcastInput) (entities.Broadcast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.broadcasts[input.Broadcast.BroadcastID] = input.Broadcast
	s.outbox[input.OutboxID] = outboxRow{
		OutboxMessage: ports.OutboxMessage{
			OutboxID:  input.OutboxID,
			EventType: "alert.broadcast",
			Payload:   input.EventPayload,
			CreatedAt: input.Broadcast.CreatedAt,
		},
		Status: outboxStatusPending,
	}
	return input.Broadcast, nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]ports.OutboxMessage, 0, limit)
	for _, row := range s.outbox {
		if row.Status != outboxStatusPending {
			continue
		}
		items = append(items, row.OutboxMessage)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	return s.markOutbox(outboxID, outboxStatusPublished)
}

func (s *Store) MarkOutboxFailed(_ context.Context, outboxID string, _ time.Time) error {
	return s.markOutbox(outboxID, outboxStatusFailed)
}

func (s *Store) RecordOutboxAttempt(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.outbox[outboxID]
	if !ok {
		return domainerrors.ErrInvalidRequest
	}
	row.Attempts++
	s.outbox[outboxID] = row
	return nil
}

func (s *Store) markOutbox(outboxID string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.outbox[outboxID]
	if !ok {
		return domainerrors.ErrInvalidRequest
	}
	row.Status = status
	s.outbox[outboxID] = row
	return nil
}

func (s *Store) Get(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.idempotency[key]
	if !ok || record.ExpiresAt.Before(now) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) MarkProcessed(_ context.Context, eventID string, processedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.processed[eventID]; ok {
		return false, nil
	}
	s.processed[eventID] = processedAt
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
