package feishu

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tripwise/travel-guide/internal/core/domain"
)

// UserStore keeps accounts in a Bitable table with the columns username,
// password and status. An optional role column marks administrators.
type UserStore struct {
	client *Client
	table  Table
	log    zerolog.Logger
}

func NewUserStore(client *Client, table Table, log zerolog.Logger) *UserStore {
	return &UserStore{
		client: client,
		table:  table,
		log:    log.With().Str("component", "feishu_user_store").Logger(),
	}
}

// FindByUsername scans the table; Bitable has no unique index on username.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	opts := ListOptions{PageSize: maxPageSize}
	for {
		page, err := s.client.ListRecords(ctx, s.table, opts)
		if err != nil {
			return nil, fmt.Errorf("find user: %w", err)
		}
		for _, rec := range page.Items {
			if textField(rec.Fields, "username") == username {
				u := userFromRecord(rec)
				return &u, nil
			}
		}
		if !page.HasMore || page.PageToken == "" {
			return nil, domain.ErrUserNotFound
		}
		opts.PageToken = page.PageToken
	}
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	status := user.Status
	if status == "" {
		status = domain.StatusPending
	}
	recordID, err := s.client.CreateRecord(ctx, s.table, map[string]any{
		"username": user.Username,
		"password": user.PasswordHash,
		"status":   string(status),
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	created := *user
	created.ID = recordID
	created.Status = status
	if created.Role == "" {
		created.Role = domain.RoleUser
	}
	s.log.Info().Str("username", user.Username).Msg("user created")
	return &created, nil
}

func (s *UserStore) UpdatePasswordHash(ctx context.Context, user *domain.User, hash string) error {
	if user.ID == "" {
		return fmt.Errorf("update password for %s: missing record id", user.Username)
	}
	if err := s.client.UpdateRecord(ctx, s.table, user.ID, map[string]any{"password": hash}); err != nil {
		return fmt.Errorf("update password for %s: %w", user.Username, err)
	}
	return nil
}

func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	records, err := s.client.ListAll(ctx, s.table, ListOptions{PageSize: maxPageSize})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]domain.User, 0, len(records))
	for _, rec := range records {
		users = append(users, userFromRecord(rec))
	}
	return users, nil
}

func userFromRecord(rec Record) domain.User {
	status := domain.AccountStatus(textField(rec.Fields, "status"))
	if status == "" {
		status = domain.StatusPending
	}
	role := textField(rec.Fields, "role")
	if role == "" {
		role = domain.RoleUser
	}
	return domain.User{
		ID:           rec.RecordID,
		Username:     textField(rec.Fields, "username"),
		PasswordHash: textField(rec.Fields, "password"),
		Status:       status,
		Role:         role,
	}
}
