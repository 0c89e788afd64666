package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	issueerrors "civicpulse/contexts/civic-issues/issue-service/domain/errors"
	issuehttp "civicpulse/contexts/civic-issues/issue-service/transport/http"
	"civicpulse/internal/shared/authctx"
)

func (s *Server) registerIssueRoutes() {
	s.mux.HandleFunc("POST /api/issues/v1/issues", s.handleReportIssue)
	s.mux.HandleFunc("GET /api/issues/v1/issues", s.handleListIssues)
	s.mux.HandleFunc("GET /api/issues/v1/issues/{issue_id}", s.handleGetIssue)
	s.mux.HandleFunc("GET /api/issues/v1/issues/{issue_id}/history", s.handleStatusHistory)
	s.mux.HandleFunc("PUT /api/issues/v1/issues/{issue_id}/status", s.handleUpdateStatus)
	s.mux.HandleFunc("PUT /api/issues/v1/issues/{issue_id}/assignee", s.handleAssignIssue)
	s.mux.HandleFunc("DELETE /api/issues/v1/issues/{issue_id}", s.handleDeleteIssue)
}

func (s *Server) handleReportIssue(w http.ResponseWriter, r *http.Request) {
	var req issuehttp.ReportIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeIssueError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.issues.Handler.ReportIssueHandler(
		r.Context(),
		s.authContext(r),
		r.Header.Get("Idempotency-Key"),
		req,
	)
	if err != nil {
		writeIssueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListIssues(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := issuehttp.ListIssuesRequest{
		Status:   query.Get("status"),
		Category: query.Get("category"),
		District: query.Get("district"),
		Cursor:   query.Get("cursor"),
	}
	if limitRaw := query.Get("limit"); limitRaw != "" {
		limit, err := strconv.Atoi(limitRaw)
		if err != nil {
			writeIssueError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		req.Limit = limit
	}
	resp, err := s.issues.Handler.ListIssuesHandler(r.Context(), req)
	if err != nil {
		writeIssueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	resp, err := s.issues.Handler.GetIssueHandler(r.Context(), r.PathValue("issue_id"))
	if err != nil {
		writeIssueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatusHistory(w http.ResponseWriter, r *http.Request) {
	resp, err := s.issues.Handler.StatusHistoryHandler(r.Context(), r.PathValue("issue_id"))
	if err != nil {
		writeIssueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req issuehttp.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeIssueError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.issues.Handler.UpdateStatusHandler(r.Context(), s.authContext(r), r.PathValue("issue_id"), req)
	if err != nil {
		writeIssueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssignIssue(w http.ResponseWriter, r *http.Request) {
	var req issuehttp.AssignIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeIssueError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.issues.Handler.AssignIssueHandler(r.Context(), s.authContext(r), r.PathValue("issue_id"), req)
	if err != nil {
		writeIssueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteIssue(w http.ResponseWriter, r *http.Request) {
	if err := s.issues.Handler.DeleteIssueHandler(r.Context(), s.authContext(r), r.PathValue("issue_id")); err != nil {
		writeIssueDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeIssueDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authctx.ErrUnauthenticated):
		writeIssueError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, authctx.ErrForbidden):
		writeIssueError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, issueerrors.ErrInvalidRequest):
		writeIssueError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, issueerrors.ErrIssueNotFound):
		writeIssueError(w, http.StatusNotFound, "issue_not_found", err.Error())
	case errors.Is(err, issueerrors.ErrUnknownCategory):
		writeIssueError(w, http.StatusUnprocessableEntity, "unknown_category", err.Error())
	case errors.Is(err, issueerrors.ErrUnknownStatus):
		writeIssueError(w, http.StatusUnprocessableEntity, "unknown_status", err.Error())
	case errors.Is(err, issueerrors.ErrInvalidTransition):
		writeIssueError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, issueerrors.ErrIssueLocked):
		writeIssueError(w, http.StatusConflict, "issue_locked", err.Error())
	case errors.Is(err, issueerrors.ErrInvalidListFilter):
		writeIssueError(w, http.StatusBadRequest, "invalid_list_filter", err.Error())
	case errors.Is(err, issueerrors.ErrIdempotencyKeyRequired):
		writeIssueError(w, http.StatusBadRequest, "idempotency_key_required", err.Error())
	case errors.Is(err, issueerrors.ErrIdempotencyConflict):
		writeIssueError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	default:
		writeIssueError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeIssueError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, issuehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
