package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"civicpulse/internal/shared/authctx"
)

func TestAddCommentRequiresToken(t *testing.T) {
	server := newTestServer()
	reporterToken := mintToken(t, server, "user-1", authctx.RoleResident)
	issue := reportIssue(t, server, reporterToken, "idem-1")

	body := []byte(`{"body":"this needs fixing"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/engagement/v1/issues/"+issue.IssueID+"/comments", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/engagement/v1/issues/"+issue.IssueID+"/comments", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+reporterToken)
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCommentOnUnknownIssueNotFound(t *testing.T) {
	server := newTestServer()
	token := mintToken(t, server, "user-1", authctx.RoleResident)

	body := []byte(`{"body":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/engagement/v1/issues/missing/comments", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestUpvoteConflictOnSecondVote(t *testing.T) {
	server := newTestServer()
	token := mintToken(t, server, "user-1", authctx.RoleResident)
	issue := reportIssue(t, server, token, "idem-1")

	req := httptest.NewRequest(http.MethodPost, "/api/engagement/v1/issues/"+issue.IssueID+"/upvote", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d body=%s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/engagement/v1/issues/"+issue.IssueID+"/upvote", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 on double vote, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestEndorseRequiresAdvocate(t *testing.T) {
	server := newTestServer()
	residentToken := mintToken(t, server, "user-1", authctx.RoleResident)
	issue := reportIssue(t, server, residentToken, "idem-1")

	body := []byte(`{"note":"affects my block"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/engagement/v1/issues/"+issue.IssueID+"/endorsements", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+residentToken)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for resident, got %d body=%s", rr.Code, rr.Body.String())
	}

	advocateToken := mintToken(t, server, "adv-1", authctx.RoleCommunityAdvocate)
	req = httptest.NewRequest(http.MethodPost, "/api/engagement/v1/issues/"+issue.IssueID+"/endorsements", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+advocateToken)
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for advocate, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestDeleteCommentModeratorOverride(t *testing.T) {
	server := newTestServer()
	authorToken := mintToken(t, server, "user-1", authctx.RoleResident)
	issue := reportIssue(t, server, authorToken, "idem-1")

	body := []byte(`{"body":"my take"}`)
	addReq := httptest.NewRequest(http.MethodPost, "/api/engagement/v1/issues/"+issue.IssueID+"/comments", bytes.NewReader(body))
	addReq.Header.Set("Authorization", "Bearer "+authorToken)
	addRR := httptest.NewRecorder()
	server.mux.ServeHTTP(addRR, addReq)
	if addRR.Code != http.StatusCreated {
		t.Fatalf("add comment failed: %d body=%s", addRR.Code, addRR.Body.String())
	}
	var comment struct {
		CommentID string `json:"comment_id"`
	}
	if err := json.Unmarshal(addRR.Body.Bytes(), &comment); err != nil {
		t.Fatalf("decode comment: %v", err)
	}

	otherToken := mintToken(t, server, "user-2", authctx.RoleResident)
	req := httptest.NewRequest(http.MethodDelete, "/api/engagement/v1/comments/"+comment.CommentID, nil)
	req.Header.Set("Authorization", "Bearer "+otherToken)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for other resident, got %d body=%s", rr.Code, rr.Body.String())
	}

	staffToken := mintToken(t, server, "staff-1", authctx.RoleMunicipalStaff)
	req = httptest.NewRequest(http.MethodDelete, "/api/engagement/v1/comments/"+comment.CommentID, nil)
	req.Header.Set("Authorization", "Bearer "+staffToken)
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for staff, got %d body=%s", rr.Code, rr.Body.String())
	}
}
