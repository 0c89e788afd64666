package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	identityerrors "civicpulse/contexts/identity-access/identity-service/domain/errors"
	identityhttp "civicpulse/contexts/identity-access/identity-service/transport/http"
	"civicpulse/internal/shared/authctx"
)

func (s *Server) registerIdentityRoutes() {
	s.mux.HandleFunc("POST /api/identity/v1/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/identity/v1/login", s.handleLogin)
	s.mux.HandleFunc("GET /api/identity/v1/users", s.handleListUsers)
	s.mux.HandleFunc("GET /api/identity/v1/users/{user_id}", s.handleGetUser)
	s.mux.HandleFunc("PATCH /api/identity/v1/users/{user_id}", s.handleUpdateProfile)
	s.mux.HandleFunc("PUT /api/identity/v1/users/{user_id}/role", s.handleUpdateRole)
	s.mux.HandleFunc("DELETE /api/identity/v1/users/{user_id}", s.handleDeleteUser)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req identityhttp.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeIdentityError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.identity.Handler.RegisterHandler(r.Context(), req)
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req identityhttp.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeIdentityError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.identity.Handler.LoginHandler(r.Context(), req)
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := 0
	if limitRaw := query.Get("limit"); limitRaw != "" {
		value, err := strconv.Atoi(limitRaw)
		if err != nil {
			writeIdentityError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = value
	}
	resp, err := s.identity.Handler.ListUsersHandler(r.Context(), s.authContext(r), query.Get("role"), limit)
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	resp, err := s.identity.Handler.GetUserHandler(r.Context(), s.authContext(r), r.PathValue("user_id"))
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req identityhttp.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeIdentityError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.identity.Handler.UpdateProfileHandler(r.Context(), s.authContext(r), r.PathValue("user_id"), req)
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var req identityhttp.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeIdentityError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.identity.Handler.UpdateRoleHandler(r.Context(), s.authContext(r), r.PathValue("user_id"), req)
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.identity.Handler.DeleteUserHandler(r.Context(), s.authContext(r), r.PathValue("user_id")); err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeIdentityDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authctx.ErrUnauthenticated):
		writeIdentityError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, authctx.ErrForbidden):
		writeIdentityError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, identityerrors.ErrInvalidRequest):
		writeIdentityError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, identityerrors.ErrUserNotFound):
		writeIdentityError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, identityerrors.ErrUsernameTaken),
		errors.Is(err, identityerrors.ErrEmailTaken):
		writeIdentityError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, identityerrors.ErrInvalidCredentials):
		writeIdentityError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, identityerrors.ErrRoleNotSelectable),
		errors.Is(err, identityerrors.ErrSelfRoleChange):
		writeIdentityError(w, http.StatusForbidden, "role_not_allowed", err.Error())
	case errors.Is(err, identityerrors.ErrUnknownRole):
		writeIdentityError(w, http.StatusUnprocessableEntity, "unknown_role", err.Error())
	default:
		writeIdentityError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeIdentityError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, identityhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
