package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gatehouse/internal/users"
)

// ErrInvalidCredentials covers both unknown email and password mismatch so
// callers can never distinguish the two.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service provides authentication business logic over the user store.
type Service struct {
	repo   users.Repository
	hasher *PasswordHasher
	tokens *TokenService
}

// NewService creates a new auth Service.
func NewService(repo users.Repository, hasher *PasswordHasher, tokens *TokenService) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens}
}

// Login verifies an email/password pair and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (*users.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if user == nil || user.PasswordHash == "" || !s.hasher.Verify(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(*user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	return user, token, nil
}

// LoginWithGoogle resolves a verified Google assertion to a local user,
// creating one lazily on first sign-in, and issues a bearer token.
func (s *Service) LoginWithGoogle(ctx context.Context, claims *GoogleClaims) (*users.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(claims.Email))

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if user == nil {
		created, err := s.repo.Create(ctx, users.User{
			ID:        uuid.New(),
			Name:      claims.Name,
			Email:     email,
			Role:      users.RoleUser,
			GoogleID:  claims.Sub,
			CreatedAt: time.Now(),
		})
		if errors.Is(err, users.ErrDuplicateEmail) {
			// Lost a race against a concurrent first sign-in; the row exists now.
			user, err = s.repo.FindByEmail(ctx, email)
			if err != nil {
				return nil, "", fmt.Errorf("find user after race: %w", err)
			}
			if user == nil {
				return nil, "", fmt.Errorf("user vanished after duplicate insert")
			}
		} else if err != nil {
			return nil, "", fmt.Errorf("create user: %w", err)
		} else {
			user = &created
		}
	}

	token, err := s.tokens.Issue(*user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	return user, token, nil
}

// Validate verifies a bearer token and returns its claims.
func (s *Service) Validate(token string) (*Claims, error) {
	return s.tokens.Verify(token)
}
