package domain

import (
	"context"
	"time"

	"github.com/pedidofacil/pedidofacil/pkg/db/pagination"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult carries the public account view plus the raw session token.
// The token value is never persisted, only its hash.
type LoginResult struct {
	User      PublicUser `json:"user"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// UpdateUserRequest is the admin-side account patch.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *Role   `json:"role"`
	Active   *bool   `json:"active"`
}

type ListUserRequest struct {
	Role   Role   `form:"role"`
	Active *bool  `form:"active"`
	Search string `form:"search"`
	pagination.Pagination
}

type ListUserResponse struct {
	pagination.PageInfo
	Users []PublicUser `json:"users"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*LoginResult, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, token string) error

	// Authenticate resolves a session token to its account, rejecting
	// expired or revoked sessions and disabled accounts.
	Authenticate(ctx context.Context, token string) (*User, error)

	GetProfile(ctx context.Context, requester Requester) (PublicUser, error)
	UpdateProfile(ctx context.Context, requester Requester, req UpdateProfileRequest) (PublicUser, error)

	List(ctx context.Context, req ListUserRequest) (ListUserResponse, error)
	GetByID(ctx context.Context, id string) (PublicUser, error)
	Update(ctx context.Context, id string, req UpdateUserRequest) (PublicUser, error)
	Delete(ctx context.Context, id string, requester Requester) error
}
