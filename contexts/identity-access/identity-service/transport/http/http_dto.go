package httptransport

import "time"

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
	District string `json:"district,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserDTO deliberately has no password field in either direction beyond
// the write-only request bodies above.
type UserDTO struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	District  string    `json:"district,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AuthResponse struct {
	Token            string  `json:"token"`
	ExpiresInSeconds int64   `json:"expires_in_seconds"`
	User             UserDTO `json:"user"`
}

type ListUsersResponse struct {
	Users []UserDTO `json:"users"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	District *string `json:"district,omitempty"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
