package users

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Role enumerates the access levels a user can hold.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the enumerated values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is an identity record. PasswordHash is empty for accounts created via
// Google sign-in and GoogleID is empty for password accounts; at least one of
// the two is always set.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	GoogleID     string
	CreatedAt    time.Time
}

var (
	// ErrDuplicateEmail indicates the email is already registered. The unique
	// constraint on users.email is the invariant enforcer; application-level
	// existence checks are only a fast path.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrValidation indicates invalid registration input.
	ErrValidation = errors.New("validation failed")

	// ErrRoleNotAllowed indicates the caller may not grant the requested role.
	ErrRoleNotAllowed = errors.New("role not allowed")
)
