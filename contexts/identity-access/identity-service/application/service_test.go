package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"civicpulse/contexts/identity-access/identity-service/adapters/memory"
	"civicpulse/contexts/identity-access/identity-service/adapters/password"
	domainerrors "civicpulse/contexts/identity-access/identity-service/domain/errors"
	contractsv1 "civicpulse/contracts/gen/events/v1"
	"civicpulse/internal/shared/authctx"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	tokens, err := authctx.NewResolver(authctx.Config{
		Secret:   []byte("identity-test-secret"),
		Issuer:   "civicpulse",
		TokenTTL: time.Hour,
	}, nil)
	if err != nil {
		t.Fatalf("resolver failed: %v", err)
	}
	store := memory.NewStore()
	return Service{
		Repo:   store,
		Hasher: password.BcryptHasher{Cost: 4},
		Tokens: tokens,
		Clock:  store,
		IDs:    store,
	}
}

func register(t *testing.T, service Service, username string, role string) (string, string) {
	t.Helper()
	user, token, err := service.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.org",
		Password: "correct-horse",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register %s failed: %v", username, err)
	}
	return user.UserID, token
}

func TestRegisterDefaultsToResident(t *testing.T) {
	service := newTestService(t)

	user, token, err := service.Register(context.Background(), RegisterInput{
		Username: "ada",
		Email:    "ada@example.org",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Role != authctx.RoleResident {
		t.Fatalf("expected resident role, got %s", user.Role)
	}

	ctx := service.Tokens.Resolve(token)
	claims, ok := ctx.Claims()
	if !ok {
		t.Fatal("expected authenticated context from fresh token")
	}
	if claims.SubjectID != user.UserID || claims.Role != authctx.RoleResident {
		t.Fatalf("token claims do not match user: %+v", claims)
	}
}

func TestRegisterRejectsElevatedRoles(t *testing.T) {
	service := newTestService(t)

	for _, role := range []string{"admin", "municipal_staff"} {
		_, _, err := service.Register(context.Background(), RegisterInput{
			Username: "mallory-" + role,
			Email:    role + "@example.org",
			Password: "correct-horse",
			Role:     role,
		})
		if !errors.Is(err, domainerrors.ErrRoleNotSelectable) {
			t.Fatalf("expected role not selectable for %s, got %v", role, err)
		}
	}

	_, _, err := service.Register(context.Background(), RegisterInput{
		Username: "mallory",
		Email:    "mallory@example.org",
		Password: "correct-horse",
		Role:     "staff",
	})
	if !errors.Is(err, domainerrors.ErrUnknownRole) {
		t.Fatalf("expected unknown role, got %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	service := newTestService(t)
	register(t, service, "ada", "")

	_, _, err := service.Register(context.Background(), RegisterInput{
		Username: "ada",
		Email:    "other@example.org",
		Password: "correct-horse",
	})
	if !errors.Is(err, domainerrors.ErrUsernameTaken) {
		t.Fatalf("expected username taken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	service := newTestService(t)
	userID, _ := register(t, service, "ada", "")

	user, token, err := service.Login(context.Background(), "ada", "correct-horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.UserID != userID || token == "" {
		t.Fatalf("unexpected login result: %s", user.UserID)
	}

	_, _, err = service.Login(context.Background(), "ada", "wrong-password")
	if !errors.Is(err, domainerrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	_, _, err = service.Login(context.Background(), "nobody", "correct-horse")
	if !errors.Is(err, domainerrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}
}

func TestGetUserSelfOrElevated(t *testing.T) {
	service := newTestService(t)
	adaID, _ := register(t, service, "ada", "")
	bobID, _ := register(t, service, "bob", "")

	ada := authctx.Authenticated(authctx.Claims{SubjectID: adaID, Role: authctx.RoleResident})

	if _, err := service.GetUser(context.Background(), ada, adaID); err != nil {
		t.Fatalf("self read failed: %v", err)
	}
	if _, err := service.GetUser(context.Background(), ada, bobID); !errors.Is(err, authctx.ErrForbidden) {
		t.Fatalf("expected forbidden reading another resident, got %v", err)
	}

	staff := authctx.Authenticated(authctx.Claims{SubjectID: "staff-1", Role: authctx.RoleMunicipalStaff})
	if _, err := service.GetUser(context.Background(), staff, bobID); err != nil {
		t.Fatalf("staff read failed: %v", err)
	}

	if _, err := service.GetUser(context.Background(), authctx.Anonymous(), adaID); !errors.Is(err, authctx.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestUpdateRoleAdminOnly(t *testing.T) {
	service := newTestService(t)
	adaID, _ := register(t, service, "ada", "")

	staff := authctx.Authenticated(authctx.Claims{SubjectID: "staff-1", Role: authctx.RoleMunicipalStaff})
	if _, err := service.UpdateRole(context.Background(), staff, adaID, "municipal_staff"); !errors.Is(err, authctx.ErrForbidden) {
		t.Fatalf("expected forbidden for staff, got %v", err)
	}

	admin := authctx.Authenticated(authctx.Claims{SubjectID: "admin-1", Role: authctx.RoleAdmin})
	user, err := service.UpdateRole(context.Background(), admin, adaID, "municipal_staff")
	if err != nil {
		t.Fatalf("admin role update failed: %v", err)
	}
	if user.Role != authctx.RoleMunicipalStaff {
		t.Fatalf("expected municipal_staff, got %s", user.Role)
	}

	if _, err := service.UpdateRole(context.Background(), admin, "admin-1", "resident"); !errors.Is(err, domainerrors.ErrSelfRoleChange) {
		t.Fatalf("expected self role change rejection, got %v", err)
	}

	if _, err := service.UpdateRole(context.Background(), admin, adaID, "mayor"); !errors.Is(err, domainerrors.ErrUnknownRole) {
		t.Fatalf("expected unknown role, got %v", err)
	}
}

func TestListUsersRequiresElevatedRole(t *testing.T) {
	service := newTestService(t)
	register(t, service, "ada", "")
	register(t, service, "eve", "community_advocate")

	resident := authctx.Authenticated(authctx.Claims{SubjectID: "u-x", Role: authctx.RoleResident})
	if _, err := service.ListUsers(context.Background(), resident, "", 10); !errors.Is(err, authctx.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	admin := authctx.Authenticated(authctx.Claims{SubjectID: "admin-1", Role: authctx.RoleAdmin})
	users, err := service.ListUsers(context.Background(), admin, "community_advocate", 10)
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if len(users) != 1 || users[0].Username != "eve" {
		t.Fatalf("unexpected filter result: %+v", users)
	}
}

func TestRegisterWritesRegistrationOutbox(t *testing.T) {
	tokens, err := authctx.NewResolver(authctx.Config{
		Secret:   []byte("identity-test-secret"),
		Issuer:   "civicpulse",
		TokenTTL: time.Hour,
	}, nil)
	if err != nil {
		t.Fatalf("resolver failed: %v", err)
	}
	store := memory.NewStore()
	service := Service{
		Repo:   store,
		Hasher: password.BcryptHasher{Cost: 4},
		Tokens: tokens,
		Clock:  store,
		IDs:    store,
	}

	user, _, err := service.Register(context.Background(), RegisterInput{
		Username: "ada",
		Email:    "ada@example.org",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending outbox row, got %d", len(pending))
	}
	if pending[0].EventType != "user.registered" {
		t.Fatalf("unexpected event type %q", pending[0].EventType)
	}

	var event contractsv1.Envelope
	if err := json.Unmarshal(pending[0].Payload, &event); err != nil {
		t.Fatalf("payload is not an envelope: %v", err)
	}
	if event.EventType != contractsv1.EventTypeUserRegistered || event.PartitionKey != user.UserID {
		t.Fatalf("unexpected envelope: %+v", event)
	}
}
