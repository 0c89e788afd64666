package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	alerterrors "civicpulse/contexts/civic-alerts/notification-service/domain/errors"
	alerthttp "civicpulse/contexts/civic-alerts/notification-service/transport/http"
	"civicpulse/internal/shared/authctx"
)

func (s *Server) registerAlertRoutes() {
	s.mux.HandleFunc("GET /api/alerts/v1/notifications", s.handleListNotifications)
	s.mux.HandleFunc("POST /api/alerts/v1/notifications/{notification_id}/read", s.handleMarkRead)
	s.mux.HandleFunc("POST /api/alerts/v1/notifications/read-all", s.handleMarkAllRead)
	s.mux.HandleFunc("POST /api/alerts/v1/broadcasts", s.handleBroadcast)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := 0
	if limitRaw := query.Get("limit"); limitRaw != "" {
		value, err := strconv.Atoi(limitRaw)
		if err != nil {
			writeAlertError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = value
	}
	unreadOnly := query.Get("unread") == "true"
	resp, err := s.alerts.Handler.ListNotificationsHandler(r.Context(), s.authContext(r), unreadOnly, query.Get("cursor"), limit)
	if err != nil {
		writeAlertDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	if err := s.alerts.Handler.MarkReadHandler(r.Context(), s.authContext(r), r.PathValue("notification_id")); err != nil {
		writeAlertDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	resp, err := s.alerts.Handler.MarkAllReadHandler(r.Context(), s.authContext(r))
	if err != nil {
		writeAlertDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req alerthttp.BroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAlertError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.alerts.Handler.BroadcastHandler(
		r.Context(),
		s.authContext(r),
		r.Header.Get("Idempotency-Key"),
		req,
	)
	if err != nil {
		writeAlertDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func writeAlertDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authctx.ErrUnauthenticated):
		writeAlertError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, authctx.ErrForbidden):
		writeAlertError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, alerterrors.ErrInvalidRequest):
		writeAlertError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, alerterrors.ErrNotificationNotFound):
		writeAlertError(w, http.StatusNotFound, "notification_not_found", err.Error())
	case errors.Is(err, alerterrors.ErrIdempotencyKeyRequired):
		writeAlertError(w, http.StatusBadRequest, "idempotency_key_required", err.Error())
	case errors.Is(err, alerterrors.ErrIdempotencyConflict):
		writeAlertError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	default:
		writeAlertError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAlertError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, alerthttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
