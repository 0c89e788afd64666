package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"civicpulse/contexts/civic-alerts/notification-service/domain/entities"
	alerthttp "civicpulse/contexts/civic-alerts/notification-service/transport/http"
	"civicpulse/internal/shared/authctx"
)

func TestListNotificationsRequiresToken(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/alerts/v1/notifications", nil)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}

	token := mintToken(t, server, "user-1", authctx.RoleResident)
	req = httptest.NewRequest(http.MethodGet, "/api/alerts/v1/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestBroadcastRoleGating(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"district":"north","title":"Boil water advisory","body":"Until further notice."}`)

	residentToken := mintToken(t, server, "user-1", authctx.RoleResident)
	req := httptest.NewRequest(http.MethodPost, "/api/alerts/v1/broadcasts", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+residentToken)
	req.Header.Set("Idempotency-Key", "idem-1")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for resident, got %d body=%s", rr.Code, rr.Body.String())
	}

	staffToken := mintToken(t, server, "staff-1", authctx.RoleMunicipalStaff)
	req = httptest.NewRequest(http.MethodPost, "/api/alerts/v1/broadcasts", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+staffToken)
	req.Header.Set("Idempotency-Key", "idem-1")
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202 for staff, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestBroadcastRequiresIdempotencyKey(t *testing.T) {
	server := newTestServer()
	staffToken := mintToken(t, server, "staff-1", authctx.RoleMunicipalStaff)
	body := []byte(`{"title":"Road closure","body":"Main St closed Saturday."}`)

	req := httptest.NewRequest(http.MethodPost, "/api/alerts/v1/broadcasts", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+staffToken)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without key, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestBroadcastReplayReturnsSameBroadcast(t *testing.T) {
	server := newTestServer()
	staffToken := mintToken(t, server, "staff-1", authctx.RoleMunicipalStaff)
	body := []byte(`{"title":"Road closure","body":"Main St closed Saturday."}`)

	send := func() alerthttp.BroadcastDTO {
		req := httptest.NewRequest(http.MethodPost, "/api/alerts/v1/broadcasts", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+staffToken)
		req.Header.Set("Idempotency-Key", "idem-1")
		rr := httptest.NewRecorder()
		server.mux.ServeHTTP(rr, req)
		if rr.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d body=%s", rr.Code, rr.Body.String())
		}
		var resp alerthttp.BroadcastDTO
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode broadcast: %v", err)
		}
		return resp
	}

	first := send()
	second := send()
	if first.BroadcastID != second.BroadcastID {
		t.Fatalf("expected replay, got %s vs %s", first.BroadcastID, second.BroadcastID)
	}
}

func TestMarkReadOtherUsersNotificationNotFound(t *testing.T) {
	server := newTestServer()
	store := server.alerts.Store

	id, err := store.NewID(context.Background())
	if err != nil {
		t.Fatalf("new id failed: %v", err)
	}
	seed := entities.Notification{
		NotificationID: id,
		RecipientID:    "user-1",
		Type:           entities.TypeIssueUpdate,
		Title:          "Your issue was updated",
		Body:           "Status changed.",
		CreatedAt:      store.Now(),
	}
	if _, err := store.CreateNotification(context.Background(), seed); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	otherToken := mintToken(t, server, "user-2", authctx.RoleAdmin)
	req := httptest.NewRequest(http.MethodPost, "/api/alerts/v1/notifications/"+id+"/read", nil)
	req.Header.Set("Authorization", "Bearer "+otherToken)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for other user's notification, got %d body=%s", rr.Code, rr.Body.String())
	}
}
