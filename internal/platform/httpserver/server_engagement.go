package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	engagementerrors "civicpulse/contexts/community-engagement/engagement-service/domain/errors"
	engagementhttp "civicpulse/contexts/community-engagement/engagement-service/transport/http"
	"civicpulse/internal/shared/authctx"
)

func (s *Server) registerEngagementRoutes() {
	s.mux.HandleFunc("POST /api/engagement/v1/issues/{issue_id}/comments", s.handleAddComment)
	s.mux.HandleFunc("GET /api/engagement/v1/issues/{issue_id}/comments", s.handleListComments)
	s.mux.HandleFunc("DELETE /api/engagement/v1/comments/{comment_id}", s.handleDeleteComment)
	s.mux.HandleFunc("POST /api/engagement/v1/issues/{issue_id}/upvote", s.handleUpvote)
	s.mux.HandleFunc("DELETE /api/engagement/v1/issues/{issue_id}/upvote", s.handleRemoveUpvote)
	s.mux.HandleFunc("POST /api/engagement/v1/issues/{issue_id}/endorsements", s.handleEndorse)
	s.mux.HandleFunc("GET /api/engagement/v1/issues/{issue_id}/endorsements", s.handleListEndorsements)
	s.mux.HandleFunc("GET /api/engagement/v1/issues/{issue_id}/summary", s.handleEngagementSummary)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req engagementhttp.AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEngagementError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.engagement.Handler.AddCommentHandler(r.Context(), s.authContext(r), r.PathValue("issue_id"), req)
	if err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := 0
	if limitRaw := query.Get("limit"); limitRaw != "" {
		value, err := strconv.Atoi(limitRaw)
		if err != nil {
			writeEngagementError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = value
	}
	resp, err := s.engagement.Handler.ListCommentsHandler(r.Context(), r.PathValue("issue_id"), query.Get("cursor"), limit)
	if err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := s.engagement.Handler.DeleteCommentHandler(r.Context(), s.authContext(r), r.PathValue("comment_id")); err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpvote(w http.ResponseWriter, r *http.Request) {
	if err := s.engagement.Handler.UpvoteHandler(r.Context(), s.authContext(r), r.PathValue("issue_id")); err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveUpvote(w http.ResponseWriter, r *http.Request) {
	if err := s.engagement.Handler.RemoveUpvoteHandler(r.Context(), s.authContext(r), r.PathValue("issue_id")); err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEndorse(w http.ResponseWriter, r *http.Request) {
	var req engagementhttp.EndorseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEngagementError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.engagement.Handler.EndorseHandler(r.Context(), s.authContext(r), r.PathValue("issue_id"), req); err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListEndorsements(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engagement.Handler.ListEndorsementsHandler(r.Context(), r.PathValue("issue_id"))
	if err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEngagementSummary(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engagement.Handler.SummaryHandler(r.Context(), r.PathValue("issue_id"))
	if err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeEngagementDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authctx.ErrUnauthenticated):
		writeEngagementError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, authctx.ErrForbidden):
		writeEngagementError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, engagementerrors.ErrInvalidRequest):
		writeEngagementError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, engagementerrors.ErrIssueNotFound):
		writeEngagementError(w, http.StatusNotFound, "issue_not_found", err.Error())
	case errors.Is(err, engagementerrors.ErrCommentNotFound):
		writeEngagementError(w, http.StatusNotFound, "comment_not_found", err.Error())
	case errors.Is(err, engagementerrors.ErrAlreadyUpvoted):
		writeEngagementError(w, http.StatusConflict, "already_upvoted", err.Error())
	case errors.Is(err, engagementerrors.ErrUpvoteNotFound):
		writeEngagementError(w, http.StatusNotFound, "upvote_not_found", err.Error())
	case errors.Is(err, engagementerrors.ErrAlreadyEndorsed):
		writeEngagementError(w, http.StatusConflict, "already_endorsed", err.Error())
	default:
		writeEngagementError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeEngagementError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, engagementhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
