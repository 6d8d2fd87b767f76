package ports

import (
	"context"

	"github.com/tripwise/travel-guide/internal/core/domain"
)

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token   string
	User    *domain.User
	Session *domain.Session
}

type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	ListUsers(ctx context.Context) ([]domain.User, error)
}
