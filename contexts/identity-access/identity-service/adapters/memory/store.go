package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"civicpulse/contexts/identity-access/identity-service/domain/entities"
	domainerrors "civicpulse/contexts/identity-access/identity-service/domain/errors"
	"civicpulse/contexts/identity-access/identity-service/ports"
	"civicpulse/internal/shared/authctx"

	"github.com/google/uuid"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
	outboxStatusFailed    = "failed"
)

// Store is an in-memory adapter implementing the repository, outbox, clock,
// and id generator ports. Intended for tests and local development wiring.
type Store struct {
	mu     sync.RWMutex
	users  map[string]entities.User
	outbox map[string]outboxRow
}

type outboxRow struct {
	ports.OutboxMessage
	Status string
}

func NewStore() *Store {
	return &Store{
		users:  make(map[string]entities.User),
		outbox: make(map[string]outboxRow),
	}
}

func (s *Store) Now() time.Time { return time.Now().UTC() }

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) CreateUser(_ context.Context, input ports.CreateUserInput) (entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := input.User
	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, user.Username) {
			return entities.User{}, domainerrors.ErrUsernameTaken
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return entities.User{}, domainerrors.ErrEmailTaken
		}
	}
	s.users[user.UserID] = user
	s.outbox[input.OutboxID] = outboxRow{
		OutboxMessage: ports.OutboxMessage{
			OutboxID:  input.OutboxID,
			EventType: "user.registered",
			Payload:   input.EventPayload,
			CreatedAt: user.CreatedAt,
		},
		Status: outboxStatusPending,
	}
	return user, nil
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

func (s *Store) GetUser(_ context.Context, userID string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Username, username) {
			return user, nil
		}
	}
	return entities.User{}, domainerrors.ErrUserNotFound
}

func (s *Store) ListUsers(_ context.Context, role authctx.Role, limit int) ([]entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.User, 0, len(s.users))
	for _, user := range s.users {
		if role != "" && user.Role != role {
			continue
		}
		items = append(items, user)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) UpdateProfile(_ context.Context, userID string, patch ports.ProfilePatch, now time.Time) (entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	if patch.Username != nil {
		next := strings.TrimSpace(*patch.Username)
		for id, existing := range s.users {
			if id != userID && strings.EqualFold(existing.Username, next) {
				return entities.User{}, domainerrors.ErrUsernameTaken
			}
		}
		user.Username = next
	}
	if patch.Email != nil {
		next := strings.ToLower(strings.TrimSpace(*patch.Email))
		for id, existing := range s.users {
			if id != userID && strings.EqualFold(existing.Email, next) {
				return entities.User{}, domainerrors.ErrEmailTaken
			}
		}
		user.Email = next
	}
	if patch.District != nil {
		user.District = strings.TrimSpace(*patch.District)
	}
	user.UpdatedAt = now
	s.users[userID] = user
	return user, nil
}

func (s *Store) UpdateRole(_ context.Context, userID string, role authctx.Role, now time.Time) (entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	user.Role = role
	user.UpdatedAt = now
	s.users[userID] = user
	return user, nil
}

func (s *Store) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return domainerrors.ErrUserNotFound
	}
	delete(s.users, userID)
	return nil
}
