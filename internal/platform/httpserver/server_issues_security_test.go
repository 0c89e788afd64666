package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	issuehttp "civicpulse/contexts/civic-issues/issue-service/transport/http"
	"civicpulse/internal/shared/authctx"
)

func reportIssue(t *testing.T, server *Server, token string, idempotencyKey string) issuehttp.IssueDTO {
	t.Helper()
	body := []byte(`{"title":"Pothole on Elm Street","description":"Deep pothole near the school","category":"pothole"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/issues/v1/issues", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Idempotency-Key", idempotencyKey)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("report failed: %d body=%s", rr.Code, rr.Body.String())
	}
	var resp issuehttp.IssueDTO
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode issue: %v", err)
	}
	return resp
}

func TestReportIssueRequiresToken(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"title":"Pothole","description":"Deep","category":"pothole"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/issues/v1/issues", bytes.NewReader(body))
	req.Header.Set("Idempotency-Key", "idem-1")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestReportIssueRequiresIdempotencyKey(t *testing.T) {
	server := newTestServer()
	token := mintToken(t, server, "user-1", authctx.RoleResident)
	body := []byte(`{"title":"Pothole","description":"Deep","category":"pothole"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/issues/v1/issues", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without key, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestListIssuesIsPublic(t *testing.T) {
	server := newTestServer()
	token := mintToken(t, server, "user-1", authctx.RoleResident)
	reportIssue(t, server, token, "idem-1")

	req := httptest.NewRequest(http.MethodGet, "/api/issues/v1/issues", nil)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 anonymous, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp issuehttp.ListIssuesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(resp.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(resp.Issues))
	}
}

func TestUpdateStatusForbiddenForResident(t *testing.T) {
	server := newTestServer()
	token := mintToken(t, server, "user-1", authctx.RoleResident)
	issue := reportIssue(t, server, token, "idem-1")

	body := []byte(`{"status":"in_review"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/issues/v1/issues/"+issue.IssueID+"/status", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for resident, got %d body=%s", rr.Code, rr.Body.String())
	}

	staffToken := mintToken(t, server, "staff-1", authctx.RoleMunicipalStaff)
	staffReq := httptest.NewRequest(http.MethodPut, "/api/issues/v1/issues/"+issue.IssueID+"/status", bytes.NewReader(body))
	staffReq.Header.Set("Authorization", "Bearer "+staffToken)
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, staffReq)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for staff, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestInvalidTransitionConflicts(t *testing.T) {
	server := newTestServer()
	reporterToken := mintToken(t, server, "user-1", authctx.RoleResident)
	issue := reportIssue(t, server, reporterToken, "idem-1")

	staffToken := mintToken(t, server, "staff-1", authctx.RoleMunicipalStaff)
	body := []byte(`{"status":"resolved"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/issues/v1/issues/"+issue.IssueID+"/status", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+staffToken)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for reported->resolved, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestDeleteIssueReporterOnlyWhileReported(t *testing.T) {
	server := newTestServer()
	reporterToken := mintToken(t, server, "user-1", authctx.RoleResident)
	otherToken := mintToken(t, server, "user-2", authctx.RoleResident)
	issue := reportIssue(t, server, reporterToken, "idem-1")

	otherReq := httptest.NewRequest(http.MethodDelete, "/api/issues/v1/issues/"+issue.IssueID, nil)
	otherReq.Header.Set("Authorization", "Bearer "+otherToken)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, otherReq)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for other resident, got %d body=%s", rr.Code, rr.Body.String())
	}

	selfReq := httptest.NewRequest(http.MethodDelete, "/api/issues/v1/issues/"+issue.IssueID, nil)
	selfReq.Header.Set("Authorization", "Bearer "+reporterToken)
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, selfReq)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for reporter, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestStatusHistoryIsPublic(t *testing.T) {
	server := newTestServer()
	reporterToken := mintToken(t, server, "user-1", authctx.RoleResident)
	issue := reportIssue(t, server, reporterToken, "idem-1")

	req := httptest.NewRequest(http.MethodGet, "/api/issues/v1/issues/"+issue.IssueID+"/history", nil)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 anonymous, got %d body=%s", rr.Code, rr.Body.String())
	}
}
