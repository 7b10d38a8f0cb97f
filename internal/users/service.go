package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// PasswordHasher produces salted one-way hashes for storage.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// Service orchestrates registration and listing over a Repository.
type Service struct {
	repo   Repository
	hasher PasswordHasher
}

// NewService wires a Service with the provided repository and hasher.
func NewService(repo Repository, hasher PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// Register creates a password-authenticated user and returns its id. The
// actor role is the role of the authenticated caller, or empty for anonymous
// callers; granting RoleAdmin requires an admin actor.
func (s *Service) Register(ctx context.Context, input RegisterInput, actor Role) (uuid.UUID, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)

	if email == "" || !strings.Contains(email, "@") {
		return uuid.Nil, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if input.Password == "" {
		return uuid.Nil, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if name == "" {
		return uuid.Nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	role := input.Role
	if role == "" {
		role = RoleUser
	}
	if !role.Valid() {
		return uuid.Nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	if role == RoleAdmin && actor != RoleAdmin {
		return uuid.Nil, ErrRoleNotAllowed
	}

	// Fast-path duplicate check; the schema constraint catches the race.
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return uuid.Nil, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return uuid.Nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return uuid.Nil, err
	}

	return created.ID, nil
}

// Page is one page of users plus the pagination window and the independent
// total count. The two reads are not atomic against concurrent inserts.
type Page struct {
	Offset int
	Limit  int
	Total  int
	Items  []User
}

// List returns a page of users. Non-positive limits fall back to the default
// and oversized limits are capped.
func (s *Service) List(ctx context.Context, limit, offset int) (Page, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	items, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return Page{}, fmt.Errorf("list users: %w", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return Page{}, fmt.Errorf("count users: %w", err)
	}

	return Page{Offset: offset, Limit: limit, Total: total, Items: items}, nil
}
