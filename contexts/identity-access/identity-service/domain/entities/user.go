package entities

import (
	"time"

	"civicpulse/internal/shared/authctx"
)

// User is a registered identity. Every user has exactly one role at any time;
// the role is mutable only by an admin acting on a different user's record.
type User struct {
	UserID       string
	Username     string
	Email        string
	PasswordHash string
	Role         authctx.Role
	District     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Claims derives the identity claims minted into a token. Called at issuance
// time only; tokens are never patched after the fact.
func (u User) Claims() authctx.Claims {
	return authctx.Claims{
		SubjectID: u.UserID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
	}
}
