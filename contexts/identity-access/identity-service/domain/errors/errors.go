package errors

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleNotSelectable  = errors.New("role cannot be self-selected at registration")
	ErrUnknownRole        = errors.New("unknown role")
	ErrSelfRoleChange     = errors.New("admins cannot change their own role")
)
