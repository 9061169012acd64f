package domain

import (
	"context"
	"errors"
)

type CreateUserRequest struct {
	Email    string
	Password string
	FullName string
}

type LoginRequest struct {
	Email    string
	Password string
}

type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (User, error)
	// Login returns the raw session token exactly once; only its hash is
	// persisted.
	Login(ctx context.Context, req LoginRequest) (Session, User, string, error)
	Authenticate(ctx context.Context, rawToken string) (Session, error)
	Logout(ctx context.Context, rawToken string) error
	GetUser(ctx context.Context, id string) (User, error)
}

var (
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrUserExists         = errors.New("user_exists")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidSession     = errors.New("invalid_session")
	ErrSessionExpired     = errors.New("session_expired")
	ErrSessionRevoked     = errors.New("session_revoked")
	ErrUserNotFound       = errors.New("user_not_found")
)
