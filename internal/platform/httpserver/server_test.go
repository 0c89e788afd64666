package httpserver

import (
	"io"
	"log/slog"
	"testing"
	"time"

	notificationservice "civicpulse/contexts/civic-alerts/notification-service"
	issueservice "civicpulse/contexts/civic-issues/issue-service"
	"civicpulse/contexts/civic-issues/issue-service/adapters/directory"
	engagementservice "civicpulse/contexts/community-engagement/engagement-service"
	identityservice "civicpulse/contexts/identity-access/identity-service"
	"civicpulse/internal/shared/authctx"
)

func newTestServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver, err := authctx.NewResolver(authctx.Config{Secret: []byte("test-secret")}, logger)
	if err != nil {
		panic(err)
	}

	identity := identityservice.NewInMemoryModule(resolver, logger)
	issues := issueservice.NewInMemoryModule(logger)
	engagement := engagementservice.NewInMemoryModule(directory.Directory{Repo: issues.Store}, logger)
	alerts := notificationservice.NewInMemoryModule(logger)

	return New(resolver, identity, issues, engagement, alerts, logger, ":0")
}

// mintToken issues a signed token directly, bypassing registration, so tests
// can act as staff and admin identities.
func mintToken(t *testing.T, server *Server, subjectID string, role authctx.Role) string {
	t.Helper()
	token, err := server.resolver.Issue(authctx.Claims{
		SubjectID: subjectID,
		Username:  subjectID,
		Email:     subjectID + "@civicpulse.test",
		Role:      role,
	}, time.Now())
	if err != nil {
		t.Fatalf("mint token failed: %v", err)
	}
	return token
}
