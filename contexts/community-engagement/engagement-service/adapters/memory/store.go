package memory

import (
	"context"
	"encoding/base64"
	"sort"
	"strconv"
	"sync"
	"time"

	"civicpulse/contexts/community-engagement/engagement-service/domain/entities"
	domainerrors "civicpulse/contexts/community-engagement/engagement-service/domain/errors"

	"github.com/google/uuid"
)

type upvoteKey struct {
	issueID string
	userID  string
}

type endorsementKey struct {
	issueID    string
	advocateID string
}

// Store is an in-memory adapter implementing the repository, clock, and id
// generator ports. Intended for tests and local development wiring.
type Store struct {
	mu sync.RWMutex

	comments     map[string]entities.Comment
	upvotes      map[upvoteKey]entities.Upvote
	endorsements map[endorsementKey]entities.Endorsement
}

func NewStore() *Store {
	return &Store{
		comments:     make(map[string]entities.Comment),
		upvotes:      make(map[upvoteKey]entities.Upvote),
		endorsements: make(map[endorsementKey]entities.Endorsement),
	}
}

func (s *Store) Now() time.Time { return time.Now().UTC() }

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) CreateComment(_ context.Context, comment entities.Comment) (entities.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.comments[comment.CommentID] = comment
	return comment, nil
}

func (s *Store) GetComment(_ context.Context, commentID string) (entities.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[commentID]
	if !ok {
		return entities.Comment{}, domainerrors.ErrCommentNotFound
	}
	return comment, nil
}

func (s *Store) ListComments(_ context.Context, issueID string, cursor string, limit int) ([]entities.Comment, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Comment, 0)
	for _, comment := range s.comments {
		if comment.IssueID == issueID {
			items = append(items, comment)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CommentID < items[j].CommentID
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

func (s *Store) DeleteComment(_ context.Context, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[commentID]; !ok {
		return domainerrors.ErrCommentNotFound
	}
	delete(s.comments, commentID)
	return nil
}

func (s *Store) AddUpvote(_ context.Context, upvote entities.Upvote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := upvoteKey{issueID: upvote.IssueID, userID: upvote.UserID}
	if _, ok := s.upvotes[key]; ok {
		return domainerrors.ErrAlreadyUpvoted
	}
	s.upvotes[key] = upvote
	return nil
}

func (s *Store) RemoveUpvote(_ context.Context, issueID string, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := upvoteKey{issueID: issueID, userID: userID}
	if _, ok := s.upvotes[key]; !ok {
		return domainerrors.ErrUpvoteNotFound
	}
	delete(s.upvotes, key)
	return nil
}

func (s *Store) AddEndorsement(_ context.Context, endorsement entities.Endorsement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := endorsementKey{issueID: endorsement.IssueID, advocateID: endorsement.AdvocateID}
	if _, ok := s.endorsements[key]; ok {
		return domainerrors.ErrAlreadyEndorsed
	}
	s.endorsements[key] = endorsement
	return nil
}

func (s *Store) ListEndorsements(_ context.Context, issueID string) ([]entities.Endorsement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Endorsement, 0)
	for key, endorsement := range s.endorsements {
		if key.issueID == issueID {
			items = append(items, endorsement)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) GetSummary(_ context.Context, issueID string) (entities.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := entities.Summary{IssueID: issueID}
	for _, comment := range s.comments {
		if comment.IssueID == issueID {
			summary.Comments++
		}
	}
	for key := range s.upvotes {
		if key.issueID == issueID {
			summary.Upvotes++
		}
	}
	for key := range s.endorsements {
		if key.issueID == issueID {
			summary.Endorsements++
		}
	}
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
