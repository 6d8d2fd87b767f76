package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripwise/travel-guide/internal/core/domain"
)

// UserStore implements ports.UserRepository on SQLite.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	u := row.toDomain()
	return &u, nil
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := userRow{
		RecordID:  uuid.NewString(),
		Username:  user.Username,
		Password:  user.PasswordHash,
		Status:    string(user.Status),
		Role:      user.Role,
		CreatedAt: time.Now().UTC(),
	}
	if row.Status == "" {
		row.Status = string(domain.StatusPending)
	}
	if row.Role == "" {
		row.Role = domain.RoleUser
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	u := row.toDomain()
	return &u, nil
}

func (s *UserStore) UpdatePasswordHash(ctx context.Context, user *domain.User, hash string) error {
	res := s.db.WithContext(ctx).Model(&userRow{}).Where("username = ?", user.Username).Update("password", hash)
	if res.Error != nil {
		return fmt.Errorf("update password for %s: %w", user.Username, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]domain.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toDomain())
	}
	return users, nil
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:           r.RecordID,
		Username:     r.Username,
		PasswordHash: r.Password,
		Status:       domain.AccountStatus(r.Status),
		Role:         r.Role,
		CreatedAt:    r.CreatedAt,
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
