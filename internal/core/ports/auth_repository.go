package ports

import (
	"context"

	"github.com/tripwise/travel-guide/internal/core/domain"
)

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, user *domain.User, hash string) error
	List(ctx context.Context) ([]domain.User, error)
}

// SessionStore keeps login sessions between requests.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}
