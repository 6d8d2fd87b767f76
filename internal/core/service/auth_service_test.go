package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tripwise/travel-guide/internal/core/domain"
)

type stubUserRepo struct {
	users     map[string]*domain.User
	updateErr error
	updates   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	copy := cloneUser(user)
	copy.ID = "rec_" + user.Username
	r.users[copy.Username] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) UpdatePasswordHash(_ context.Context, user *domain.User, hash string) error {
	r.updates++
	if r.updateErr != nil {
		return r.updateErr
	}
	r.users[user.Username].PasswordHash = hash
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

type stubSessionStore struct {
	sessions map[string]*domain.Session
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]*domain.Session)}
}

func (s *stubSessionStore) Save(_ context.Context, session *domain.Session) error {
	clone := *session
	s.sessions[session.ID] = &clone
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *sess
	return &clone, nil
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

type publishedEvent struct {
	subject string
	payload any
}

type stubPublisher struct {
	events []publishedEvent
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, subject string, payload any) error {
	p.events = append(p.events, publishedEvent{subject: subject, payload: payload})
	return p.err
}

func newTestAuthService() (*AuthService, *stubUserRepo, *stubSessionStore, *stubPublisher) {
	repo := newStubUserRepo()
	sessions := newStubSessionStore()
	pub := &stubPublisher{}
	svc := NewAuthService(repo, sessions, pub, "secret", time.Hour, zerolog.Nop())
	return svc, repo, sessions, pub
}

func seedUser(repo *stubUserRepo, username, hash string, status domain.AccountStatus) {
	repo.users[username] = &domain.User{ID: "rec_" + username, Username: username, PasswordHash: hash, Status: status, Role: domain.RoleUser}
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, repo, _, pub := newTestAuthService()

	user, err := svc.Register(context.Background(), "alice", "pass123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Status != domain.StatusPending || user.Role != domain.RoleUser {
		t.Fatalf("unexpected defaults: %+v", user)
	}

	stored := repo.users["alice"]
	if !strings.HasPrefix(stored.PasswordHash, "$argon2id$") {
		t.Fatalf("expected argon2id hash, got %q", stored.PasswordHash)
	}
	if ok, err := argon2id.ComparePasswordAndHash("pass123", stored.PasswordHash); err != nil || !ok {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	if len(pub.events) != 1 || pub.events[0].subject != domain.SubjectUserRegistered {
		t.Fatalf("expected one user.registered event, got %+v", pub.events)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _, _ := newTestAuthService()
	ctx := context.Background()

	cases := []struct {
		username, password string
		want               error
	}{
		{"ab", "pass", domain.ErrInvalidUsername},
		{"this_name_is_far_too_long", "pass", domain.ErrInvalidUsername},
		{"bad-name", "pass", domain.ErrInvalidUsername},
		{"bob", "abc", domain.ErrInvalidPassword},
		{"bob", strings.Repeat("x", 51), domain.ErrInvalidPassword},
	}
	for _, tc := range cases {
		if _, err := svc.Register(ctx, tc.username, tc.password); err != tc.want {
			t.Fatalf("Register(%q, %q): expected %v, got %v", tc.username, tc.password, tc.want, err)
		}
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	_, _ = svc.Register(context.Background(), "bob", "pass")
	if _, err := svc.Register(context.Background(), "bob", "pass2"); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_PublishFailureIgnored(t *testing.T) {
	svc, _, _, pub := newTestAuthService()
	pub.err = errors.New("nats down")

	if _, err := svc.Register(context.Background(), "erin", "pass"); err != nil {
		t.Fatalf("expected registration to succeed, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, repo, sessions, _ := newTestAuthService()
	hash, _ := argon2id.CreateHash("s3cret", argon2id.DefaultParams)
	seedUser(repo, "carol", hash, domain.StatusActive)

	res, err := svc.Login(context.Background(), "carol", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Token == "" || res.Session == nil {
		t.Fatalf("expected token and session, got %+v", res)
	}
	if _, ok := sessions.sessions[res.Session.ID]; !ok {
		t.Fatalf("session %s not stored", res.Session.ID)
	}
	if !res.Session.ExpiresAt.After(res.Session.LoginAt) {
		t.Fatalf("session expiry not after login: %+v", res.Session)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(res.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sid"] != res.Session.ID || claims["username"] != "carol" || claims["role"] != domain.RoleUser {
		t.Fatalf("unexpected claims: %v", claims)
	}
}

func TestAuthService_Login_PendingHasNoSession(t *testing.T) {
	svc, repo, sessions, _ := newTestAuthService()
	hash, _ := argon2id.CreateHash("goodpass", argon2id.DefaultParams)
	seedUser(repo, "dave", hash, domain.StatusPending)

	res, err := svc.Login(context.Background(), "dave", "goodpass")
	if err != domain.ErrAccountPending {
		t.Fatalf("expected ErrAccountPending, got %v", err)
	}
	if res != nil {
		t.Fatalf("expected no result, got %+v", res)
	}
	if len(sessions.sessions) != 0 {
		t.Fatalf("expected no session, got %d", len(sessions.sessions))
	}
	if domain.ErrAccountPending.Error() == domain.ErrInvalidCredentials.Error() {
		t.Fatalf("pending message must differ from invalid credentials")
	}
}

func TestAuthService_Login_Disabled(t *testing.T) {
	svc, repo, _, _ := newTestAuthService()
	seedUser(repo, "mallory", "whatever", domain.StatusBanned)

	if _, err := svc.Login(context.Background(), "mallory", "whatever"); err != domain.ErrAccountDisabled {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc, repo, _, _ := newTestAuthService()
	hash, _ := argon2id.CreateHash("goodpass", argon2id.DefaultParams)
	seedUser(repo, "dave", hash, domain.StatusActive)

	if _, err := svc.Login(context.Background(), "dave", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownUserLooksLikeBadPassword(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	if _, err := svc.Login(context.Background(), "ghost", "pass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_MigratesPlaintext(t *testing.T) {
	svc, repo, _, _ := newTestAuthService()
	seedUser(repo, "frank", "plainpass", domain.StatusActive)

	if _, err := svc.Login(context.Background(), "frank", "plainpass"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !strings.HasPrefix(repo.users["frank"].PasswordHash, "$argon2id$") {
		t.Fatalf("expected plaintext to be migrated, got %q", repo.users["frank"].PasswordHash)
	}

	if _, err := svc.Login(context.Background(), "frank", "plainpass"); err != nil {
		t.Fatalf("login after migration failed: %v", err)
	}
	if repo.updates != 1 {
		t.Fatalf("expected one migration write, got %d", repo.updates)
	}
}

func TestAuthService_Login_MigratesBcrypt(t *testing.T) {
	svc, repo, _, _ := newTestAuthService()
	hash, _ := bcrypt.GenerateFromPassword([]byte("oldpass"), bcrypt.MinCost)
	seedUser(repo, "grace", string(hash), domain.StatusActive)

	if _, err := svc.Login(context.Background(), "grace", "wrongpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "grace", "oldpass"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !strings.HasPrefix(repo.users["grace"].PasswordHash, "$argon2id$") {
		t.Fatalf("expected bcrypt hash to be migrated")
	}
}

func TestAuthService_Login_MigrationFailureStillLogsIn(t *testing.T) {
	svc, repo, _, _ := newTestAuthService()
	repo.updateErr = errors.New("feishu unavailable")
	seedUser(repo, "heidi", "plainpass", domain.StatusActive)

	if _, err := svc.Login(context.Background(), "heidi", "plainpass"); err != nil {
		t.Fatalf("expected login despite migration failure, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	svc, repo, sessions, _ := newTestAuthService()
	hash, _ := argon2id.CreateHash("s3cret", argon2id.DefaultParams)
	seedUser(repo, "ivan", hash, domain.StatusActive)

	res, err := svc.Login(context.Background(), "ivan", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.Logout(context.Background(), res.Session.ID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := sessions.Get(context.Background(), res.Session.ID); err != domain.ErrSessionNotFound {
		t.Fatalf("expected session to be gone, got %v", err)
	}
}
