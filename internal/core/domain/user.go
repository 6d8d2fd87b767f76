package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// AccountStatus is the approval state of a user account. Accounts start as
// pending and are activated out-of-band by an administrator.
type AccountStatus string

const (
	StatusPending AccountStatus = "pending"
	StatusActive  AccountStatus = "active"
	StatusBanned  AccountStatus = "banned"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidUsername    = errors.New("username must be 3-20 characters of letters, digits or underscore")
	ErrInvalidPassword    = errors.New("password must be 4-50 characters")
	ErrAccountPending     = errors.New("account is awaiting administrator approval")
	ErrAccountDisabled    = errors.New("account status abnormal, contact an administrator")
	ErrForbidden          = errors.New("access forbidden")
)

// User models an account row in the user table.
type User struct {
	ID           string        `json:"id"`
	Username     string        `json:"username"`
	PasswordHash string        `json:"-"`
	Status       AccountStatus `json:"status"`
	Role         string        `json:"role"`
	CreatedAt    time.Time     `json:"created_at,omitempty"`
}

// IsActive reports whether the account may log in.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}
