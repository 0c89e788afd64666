package application

import (
	"context"
	"errors"
	"testing"

	"civicpulse/contexts/community-engagement/engagement-service/adapters/memory"
	domainerrors "civicpulse/contexts/community-engagement/engagement-service/domain/errors"
	"civicpulse/internal/shared/authctx"
)

type stubIssueDirectory struct {
	issues map[string]bool
}

func (d stubIssueDirectory) IssueExists(_ context.Context, issueID string) (bool, error) {
	return d.issues[issueID], nil
}

func newTestService() Service {
	store := memory.NewStore()
	return Service{
		Repo:   store,
		Issues: stubIssueDirectory{issues: map[string]bool{"issue-1": true}},
		Clock:  store,
		IDs:    store,
	}
}

func resident(id string) authctx.Context {
	return authctx.Authenticated(authctx.Claims{SubjectID: id, Role: authctx.RoleResident})
}

func advocate(id string) authctx.Context {
	return authctx.Authenticated(authctx.Claims{SubjectID: id, Role: authctx.RoleCommunityAdvocate})
}

func TestAddCommentRequiresAuthentication(t *testing.T) {
	service := newTestService()

	_, err := service.AddComment(context.Background(), authctx.Anonymous(), "issue-1", "great point")
	if !errors.Is(err, authctx.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestAddCommentUnknownIssue(t *testing.T) {
	service := newTestService()

	_, err := service.AddComment(context.Background(), resident("user-1"), "issue-missing", "hello")
	if !errors.Is(err, domainerrors.ErrIssueNotFound) {
		t.Fatalf("expected issue not found, got %v", err)
	}
}

func TestListCommentsNewestFirst(t *testing.T) {
	service := newTestService()

	for _, body := range []string{"first", "second", "third"} {
		if _, err := service.AddComment(context.Background(), resident("user-1"), "issue-1", body); err != nil {
			t.Fatalf("add comment failed: %v", err)
		}
	}

	comments, _, err := service.ListComments(context.Background(), "issue-1", "", 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(comments))
	}
	for i := 1; i < len(comments); i++ {
		if comments[i].CreatedAt.After(comments[i-1].CreatedAt) {
			t.Fatalf("comments not newest first at index %d", i)
		}
	}
}

func TestDeleteCommentAuthorOrModerator(t *testing.T) {
	service := newTestService()

	comment, err := service.AddComment(context.Background(), resident("user-1"), "issue-1", "my take")
	if err != nil {
		t.Fatalf("add comment failed: %v", err)
	}

	if err := service.DeleteComment(context.Background(), resident("user-2"), comment.CommentID); !errors.Is(err, authctx.ErrForbidden) {
		t.Fatalf("expected forbidden for other resident, got %v", err)
	}
	if err := service.DeleteComment(context.Background(), resident("user-1"), comment.CommentID); err != nil {
		t.Fatalf("author delete failed: %v", err)
	}

	comment, err = service.AddComment(context.Background(), resident("user-1"), "issue-1", "another take")
	if err != nil {
		t.Fatalf("add comment failed: %v", err)
	}
	staff := authctx.Authenticated(authctx.Claims{SubjectID: "staff-1", Role: authctx.RoleMunicipalStaff})
	if err := service.DeleteComment(context.Background(), staff, comment.CommentID); err != nil {
		t.Fatalf("moderator delete failed: %v", err)
	}
}

func TestUpvoteOncePerUser(t *testing.T) {
	service := newTestService()

	if err := service.Upvote(context.Background(), resident("user-1"), "issue-1"); err != nil {
		t.Fatalf("upvote failed: %v", err)
	}
	if err := service.Upvote(context.Background(), resident("user-1"), "issue-1"); !errors.Is(err, domainerrors.ErrAlreadyUpvoted) {
		t.Fatalf("expected already upvoted, got %v", err)
	}
	if err := service.Upvote(context.Background(), resident("user-2"), "issue-1"); err != nil {
		t.Fatalf("second user upvote failed: %v", err)
	}

	if err := service.RemoveUpvote(context.Background(), resident("user-1"), "issue-1"); err != nil {
		t.Fatalf("remove upvote failed: %v", err)
	}
	if err := service.RemoveUpvote(context.Background(), resident("user-1"), "issue-1"); !errors.Is(err, domainerrors.ErrUpvoteNotFound) {
		t.Fatalf("expected upvote not found, got %v", err)
	}
}

func TestEndorseRequiresAdvocateRole(t *testing.T) {
	service := newTestService()

	if err := service.Endorse(context.Background(), resident("user-1"), "issue-1", ""); !errors.Is(err, authctx.ErrForbidden) {
		t.Fatalf("expected forbidden for resident, got %v", err)
	}
	staff := authctx.Authenticated(authctx.Claims{SubjectID: "staff-1", Role: authctx.RoleMunicipalStaff})
	if err := service.Endorse(context.Background(), staff, "issue-1", ""); !errors.Is(err, authctx.ErrForbidden) {
		t.Fatalf("expected forbidden for staff, got %v", err)
	}

	if err := service.Endorse(context.Background(), advocate("adv-1"), "issue-1", "affects my block"); err != nil {
		t.Fatalf("advocate endorse failed: %v", err)
	}
	if err := service.Endorse(context.Background(), advocate("adv-1"), "issue-1", "again"); !errors.Is(err, domainerrors.ErrAlreadyEndorsed) {
		t.Fatalf("expected already endorsed, got %v", err)
	}
}

func TestGetSummaryCounts(t *testing.T) {
	service := newTestService()

	if _, err := service.AddComment(context.Background(), resident("user-1"), "issue-1", "note"); err != nil {
		t.Fatalf("add comment failed: %v", err)
	}
	if err := service.Upvote(context.Background(), resident("user-1"), "issue-1"); err != nil {
		t.Fatalf("upvote failed: %v", err)
	}
	if err := service.Upvote(context.Background(), resident("user-2"), "issue-1"); err != nil {
		t.Fatalf("upvote failed: %v", err)
	}
	if err := service.Endorse(context.Background(), advocate("adv-1"), "issue-1", ""); err != nil {
		t.Fatalf("endorse failed: %v", err)
	}

	summary, err := service.GetSummary(context.Background(), "issue-1")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.Comments != 1 || summary.Upvotes != 2 || summary.Endorsements != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestServiceWithoutClockFallsBackToWallClock(t *testing.T) {
	store := memory.NewStore()
	service := Service{
		Repo:   store,
		Issues: stubIssueDirectory{issues: map[string]bool{"issue-1": true}},
		IDs:    store,
	}

	comment, err := service.AddComment(context.Background(), resident("user-1"), "issue-1", "great point")
	if err != nil {
		t.Fatalf("add comment failed: %v", err)
	}
	if comment.CreatedAt.IsZero() {
		t.Fatal("expected a timestamp from the wall clock")
	}
	if err := service.Upvote(context.Background(), resident("user-1"), "issue-1"); err != nil {
		t.Fatalf("upvote failed: %v", err)
	}
	if err := service.Endorse(context.Background(), advocate("adv-1"), "issue-1", "needs attention"); err != nil {
		t.Fatalf("endorse failed: %v", err)
	}
}
