package httpadapter

import (
	"context"
	"log/slog"

	"civicpulse/contexts/identity-access/identity-service/application"
	"civicpulse/contexts/identity-access/identity-service/domain/entities"
	"civicpulse/contexts/identity-access/identity-service/ports"
	httptransport "civicpulse/contexts/identity-access/identity-service/transport/http"
	"civicpulse/internal/shared/authctx"
)

// Handler maps HTTP DTOs to application operations.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) RegisterHandler(ctx context.Context, request httptransport.RegisterRequest) (httptransport.AuthResponse, error) {
	user, token, err := h.Service.Register(ctx, application.RegisterInput{
		Username: request.Username,
		Email:    request.Email,
		Password: request.Password,
		Role:     request.Role,
		District: request.District,
	})
	if err != nil {
		return httptransport.AuthResponse{}, err
	}
	return h.authResponse(user, token), nil
}

func (h Handler) LoginHandler(ctx context.Context, request httptransport.LoginRequest) (httptransport.AuthResponse, error) {
	user, token, err := h.Service.Login(ctx, request.Username, request.Password)
	if err != nil {
		application.ResolveLogger(h.Logger).Debug("http login rejected",
			"event", "identity_http_login_rejected",
			"module", "identity-access/identity-service",
			"layer", "transport",
			"username", request.Username,
		)
		return httptransport.AuthResponse{}, err
	}
	return h.authResponse(user, token), nil
}

func (h Handler) GetUserHandler(ctx context.Context, actor authctx.Context, userID string) (httptransport.UserDTO, error) {
	user, err := h.Service.GetUser(ctx, actor, userID)
	if err != nil {
		return httptransport.UserDTO{}, err
	}
	return toUserDTO(user), nil
}

func (h Handler) ListUsersHandler(ctx context.Context, actor authctx.Context, roleFilter string, limit int) (httptransport.ListUsersResponse, error) {
	users, err := h.Service.ListUsers(ctx, actor, roleFilter, limit)
	if err != nil {
		return httptransport.ListUsersResponse{}, err
	}
	items := make([]httptransport.UserDTO, 0, len(users))
	for _, user := range users {
		items = append(items, toUserDTO(user))
	}
	return httptransport.ListUsersResponse{Users: items}, nil
}

func (h Handler) UpdateProfileHandler(ctx context.Context, actor authctx.Context, userID string, request httptransport.UpdateProfileRequest) (httptransport.UserDTO, error) {
	user, err := h.Service.UpdateProfile(ctx, actor, userID, ports.ProfilePatch{
		Username: request.Username,
		Email:    request.Email,
		District: request.District,
	})
	if err != nil {
		return httptransport.UserDTO{}, err
	}
	return toUserDTO(user), nil
}

func (h Handler) UpdateRoleHandler(ctx context.Context, actor authctx.Context, userID string, request httptransport.UpdateRoleRequest) (httptransport.UserDTO, error) {
	user, err := h.Service.UpdateRole(ctx, actor, userID, request.Role)
	if err != nil {
		return httptransport.UserDTO{}, err
	}
	return toUserDTO(user), nil
}

func (h Handler) DeleteUserHandler(ctx context.Context, actor authctx.Context, userID string) error {
	return h.Service.DeleteUser(ctx, actor, userID)
}

func (h Handler) authResponse(user entities.User, token string) httptransport.AuthResponse {
	return httptransport.AuthResponse{
		Token:            token,
		ExpiresInSeconds: int64(h.Service.Tokens.TokenTTL().Seconds()),
		User:             toUserDTO(user),
	}
}

func toUserDTO(user entities.User) httptransport.UserDTO {
	return httptransport.UserDTO{
		UserID:    user.UserID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role.String(),
		District:  user.District,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
