package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tripwise/travel-guide/internal/api/metrics"
	"github.com/tripwise/travel-guide/internal/core/domain"
	"github.com/tripwise/travel-guide/internal/core/ports"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// AuthService implements registration, login and logout.
type AuthService struct {
	users      ports.UserRepository
	sessions   ports.SessionStore
	events     ports.EventPublisher
	jwtSecret  string
	sessionTTL time.Duration
	log        zerolog.Logger
	now        func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	sessions ports.SessionStore,
	events ports.EventPublisher,
	jwtSecret string,
	sessionTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		events:     events,
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
		log:        log.With().Str("component", "auth").Logger(),
		now:        time.Now,
	}
}

// ValidateUsername checks length and character set.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return domain.ErrInvalidUsername
	}
	return nil
}

// ValidatePassword checks the password length in characters.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < 4 || n > 50 {
		return domain.ErrInvalidPassword
	}
	return nil
}

// Register creates a pending account. An administrator activates it later.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		Status:       domain.StatusPending,
		Role:         domain.RoleUser,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	evt := domain.UserRegisteredEvent{Username: created.Username, Status: string(created.Status), At: s.now().UTC()}
	if err := s.events.Publish(ctx, domain.SubjectUserRegistered, evt); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("publish user.registered failed")
	}

	s.log.Info().Str("username", username).Msg("user registered")
	return created, nil
}

// Login verifies the credentials, opens a session and signs a token bound to
// it. Legacy bcrypt or plaintext passwords are rehashed on success.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if ValidateUsername(username) != nil || ValidatePassword(password) != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	switch {
	case user.Status == domain.StatusPending:
		metrics.LoginsTotal.WithLabelValues("pending").Inc()
		return nil, domain.ErrAccountPending
	case !user.IsActive():
		metrics.LoginsTotal.WithLabelValues("disabled").Inc()
		return nil, domain.ErrAccountDisabled
	}

	ok, legacy, err := verifyPassword(user.PasswordHash, password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrInvalidCredentials
	}
	if legacy {
		s.migratePassword(ctx, user, password)
	}

	now := s.now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		Username:  user.Username,
		Role:      user.Role,
		LoginAt:   now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("save session: %w", err)
	}

	token, err := s.generateToken(session)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	s.log.Info().Str("username", user.Username).Str("session_id", session.ID).Msg("login")
	return &ports.LoginResult{Token: token, User: user, Session: session}, nil
}

// Logout removes the session. Unknown sessions are not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *AuthService) migratePassword(ctx context.Context, user *domain.User, password string) {
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		s.log.Warn().Err(err).Str("username", user.Username).Msg("rehash failed")
		return
	}
	if err := s.users.UpdatePasswordHash(ctx, user, hash); err != nil {
		s.log.Warn().Err(err).Str("username", user.Username).Msg("password migration failed")
		return
	}
	user.PasswordHash = hash
	s.log.Info().Str("username", user.Username).Msg("password migrated to argon2id")
}

func (s *AuthService) generateToken(session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"sid":      session.ID,
		"username": session.Username,
		"role":     session.Role,
		"iat":      session.LoginAt.Unix(),
		"exp":      session.ExpiresAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// verifyPassword reports whether password matches stored and whether stored
// is a legacy format that should be rehashed.
func verifyPassword(stored, password string) (ok, legacy bool, err error) {
	switch {
	case strings.HasPrefix(stored, "$argon2id$"):
		ok, err = argon2id.ComparePasswordAndHash(password, stored)
		return ok, false, err
	case isBcryptHash(stored):
		err = bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, true, nil
		}
		return err == nil, true, err
	default:
		return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1, true, nil
	}
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
