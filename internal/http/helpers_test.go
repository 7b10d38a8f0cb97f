package http

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"gatehouse/internal/auth"
	"gatehouse/internal/config"
	"gatehouse/internal/users"
)

// testEnv bundles the wired services most handler tests need.
type testEnv struct {
	repo    *users.InMemoryRepository
	tokens  *auth.TokenService
	authSvc *auth.Service
	userSvc *users.Service
	logger  *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := users.NewInMemoryRepository(nil)
	hasher := auth.NewPasswordHasher(4)
	tokens := auth.NewTokenService("test-secret", time.Hour)

	return &testEnv{
		repo:    repo,
		tokens:  tokens,
		authSvc: auth.NewService(repo, hasher, tokens),
		userSvc: users.NewService(repo, hasher),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (e *testEnv) router(t *testing.T) http.Handler {
	t.Helper()

	cfg := config.Config{
		Environment:    "development",
		AllowedOrigins: []string{"http://localhost"},
		FrontendURL:    "http://frontend.test",
	}
	return NewRouter(cfg, e.authSvc, e.userSvc, e.tokens, nil, e.logger)
}

func findCookie(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()

	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
