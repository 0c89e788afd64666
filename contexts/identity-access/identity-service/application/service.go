package application

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainerrors "civicpulse/contexts/identity-access/identity-service/domain/errors"
	"civicpulse/contexts/identity-access/identity-service/domain/entities"
	"civicpulse/contexts/identity-access/identity-service/ports"
	contractsv1 "civicpulse/contracts/gen/events/v1"
	"civicpulse/internal/shared/authctx"
)

const sourceService = "identity-service"

type Service struct {
	Repo   ports.Repository
	Hasher ports.PasswordHasher
	Tokens *authctx.Resolver
	Clock  ports.Clock
	IDs    ports.IDGenerator
	Logger *slog.Logger
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
	District string
}

// Register creates a user and mints their first token. Public operation:
// no authorization context is consulted. Elevated roles cannot be
// self-selected; an admin grants them later through UpdateRole.
func (s Service) Register(ctx context.Context, input RegisterInput) (entities.User, string, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if len(username) < 3 || !strings.Contains(email, "@") || len(input.Password) < 8 {
		return entities.User{}, "", domainerrors.ErrInvalidRequest
	}

	role := authctx.RoleResident
	if raw := strings.TrimSpace(input.Role); raw != "" {
		parsed, ok := authctx.ParseRole(raw)
		if !ok {
			return entities.User{}, "", domainerrors.ErrUnknownRole
		}
		if parsed != authctx.RoleResident && parsed != authctx.RoleCommunityAdvocate {
			return entities.User{}, "", domainerrors.ErrRoleNotSelectable
		}
		role = parsed
	}

	hash, err := s.Hasher.Hash(input.Password)
	if err != nil {
		return entities.User{}, "", err
	}
	userID, err := s.IDs.NewID(ctx)
	if err != nil {
		return entities.User{}, "", err
	}
	outboxID, err := s.IDs.NewID(ctx)
	if err != nil {
		return entities.User{}, "", err
	}

	now := s.now()
	candidate := entities.User{
		UserID:       userID,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		District:     strings.TrimSpace(input.District),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	payload, err := s.registeredEnvelope(candidate, outboxID, now)
	if err != nil {
		return entities.User{}, "", err
	}
	user, err := s.Repo.CreateUser(ctx, ports.CreateUserInput{
		User:         candidate,
		OutboxID:     outboxID,
		EventPayload: payload,
	})
	if err != nil {
		return entities.User{}, "", err
	}

	token, err := s.Tokens.Issue(user.Claims(), now)
	if err != nil {
		return entities.User{}, "", err
	}

	ResolveLogger(s.Logger).Info("user registered",
		"event", "identity_user_registered",
		"module", "identity-access/identity-service",
		"layer", "application",
		"user_id", user.UserID,
		"role", user.Role.String(),
	)
	return user, token, nil
}

// Login verifies the password and mints a fresh token carrying the current
// role. Public operation; failures are indistinguishable between unknown
// username and wrong password.
func (s Service) Login(ctx context.Context, username string, password string) (entities.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return entities.User{}, "", domainerrors.ErrInvalidRequest
	}

	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return entities.User{}, "", domainerrors.ErrInvalidCredentials
		}
		return entities.User{}, "", err
	}
	if err := s.Hasher.Compare(user.PasswordHash, password); err != nil {
		ResolveLogger(s.Logger).Warn("login rejected",
			"event", "identity_login_rejected",
			"module", "identity-access/identity-service",
			"layer", "application",
			"user_id", user.UserID,
		)
		return entities.User{}, "", domainerrors.ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(user.Claims(), s.now())
	if err != nil {
		return entities.User{}, "", err
	}
	return user, token, nil
}

// GetUser returns a profile for the owner, staff, or an admin.
func (s Service) GetUser(ctx context.Context, actor authctx.Context, userID string) (entities.User, error) {
	if strings.TrimSpace(userID) == "" {
		return entities.User{}, domainerrors.ErrInvalidRequest
	}
	if _, err := authctx.RequireSelfOrRole(actor, userID, authctx.RoleAdmin, authctx.RoleMunicipalStaff); err != nil {
		return entities.User{}, err
	}
	return s.Repo.GetUser(ctx, userID)
}

// ListUsers is staff/admin only.
func (s Service) ListUsers(ctx context.Context, actor authctx.Context, roleFilter string, limit int) ([]entities.User, error) {
	if _, err := authctx.RequireRole(actor, authctx.RoleAdmin, authctx.RoleMunicipalStaff); err != nil {
		return nil, err
	}
	var role authctx.Role
	if raw := strings.TrimSpace(roleFilter); raw != "" {
		parsed, ok := authctx.ParseRole(raw)
		if !ok {
			return nil, domainerrors.ErrUnknownRole
		}
		role = parsed
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.Repo.ListUsers(ctx, role, limit)
}

// UpdateProfile lets the owner or an admin change username/email/district.
func (s Service) UpdateProfile(ctx context.Context, actor authctx.Context, userID string, patch ports.ProfilePatch) (entities.User, error) {
	if strings.TrimSpace(userID) == "" {
		return entities.User{}, domainerrors.ErrInvalidRequest
	}
	if _, err := authctx.RequireSelfOrRole(actor, userID, authctx.RoleAdmin); err != nil {
		return entities.User{}, err
	}
	if patch.Username != nil && len(strings.TrimSpace(*patch.Username)) < 3 {
		return entities.User{}, domainerrors.ErrInvalidRequest
	}
	if patch.Email != nil && !strings.Contains(*patch.Email, "@") {
		return entities.User{}, domainerrors.ErrInvalidRequest
	}
	return s.Repo.UpdateProfile(ctx, userID, patch, s.now())
}

// UpdateRole moves a user to another tier. Admin only, and never on the
// admin's own record: role is mutable only by an admin acting on a different
// user.
func (s Service) UpdateRole(ctx context.Context, actor authctx.Context, userID string, rawRole string) (entities.User, error) {
	claims, err := authctx.RequireRole(actor, authctx.RoleAdmin)
	if err != nil {
		return entities.User{}, err
	}
	if claims.SubjectID == userID {
		return entities.User{}, domainerrors.ErrSelfRoleChange
	}
	role, ok := authctx.ParseRole(rawRole)
	if !ok {
		return entities.User{}, domainerrors.ErrUnknownRole
	}

	user, err := s.Repo.UpdateRole(ctx, userID, role, s.now())
	if err != nil {
		return entities.User{}, err
	}
	ResolveLogger(s.Logger).Info("user role updated",
		"event", "identity_role_updated",
		"module", "identity-access/identity-service",
		"layer", "application",
		"user_id", userID,
		"role", role.String(),
		"admin_id", claims.SubjectID,
	)
	return user, nil
}

// DeleteUser removes a record. Admin only.
func (s Service) DeleteUser(ctx context.Context, actor authctx.Context, userID string) error {
	if _, err := authctx.RequireRole(actor, authctx.RoleAdmin); err != nil {
		return err
	}
	if strings.TrimSpace(userID) == "" {
		return domainerrors.ErrInvalidRequest
	}
	return s.Repo.DeleteUser(ctx, userID)
}

// registeredEnvelope serializes the user.registered event stored in the
// outbox alongside the new user row. The outbox id doubles as the event id
// so redelivery dedups cleanly downstream.
func (s Service) registeredEnvelope(user entities.User, outboxID string, now time.Time) ([]byte, error) {
	data, err := json.Marshal(map[string]string{
		"user_id":  user.UserID,
		"username": user.Username,
		"role":     user.Role.String(),
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(contractsv1.Envelope{
		EventID:       outboxID,
		EventType:     contractsv1.EventTypeUserRegistered,
		OccurredAt:    now,
		SourceService: sourceService,
		SchemaVersion: 1,
		PartitionKey:  user.UserID,
		Data:          data,
	})
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
