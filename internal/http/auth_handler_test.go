package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gatehouse/internal/users"
)

func registerUser(t *testing.T, env *testEnv, email, password string) {
	t.Helper()

	_, err := env.userSvc.Register(context.Background(), users.RegisterInput{
		Name:     "Ada",
		Email:    email,
		Password: password,
	}, "")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
}

func TestLoginReturnsTokenAndCookie(t *testing.T) {
	env := newTestEnv(t)
	registerUser(t, env, "ada@example.com", "secret")
	handler := NewAuthHandler(env.authSvc, "development", time.Hour, env.logger)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ada@example.com","password":"secret"}`))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Token string `json:"token"`
		User  struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Token == "" {
		t.Fatal("expected a token in the response body")
	}
	if body.User.Email != "ada@example.com" || body.User.Role != "user" {
		t.Fatalf("unexpected user projection: %+v", body.User)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatal("response must never contain password material")
	}

	cookie := findCookie(t, rec.Result().Cookies(), tokenCookieName)
	if cookie == nil || cookie.Value != body.Token {
		t.Fatal("expected token cookie matching the response body")
	}
	if !cookie.HttpOnly {
		t.Fatal("expected HttpOnly token cookie")
	}

	claims, err := env.tokens.Verify(body.Token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.Email != "ada@example.com" {
		t.Fatalf("expected token email claim, got %q", claims.Email)
	}
}

func TestLoginDoesNotRevealWhetherEmailExists(t *testing.T) {
	env := newTestEnv(t)
	registerUser(t, env, "ada@example.com", "secret")
	handler := NewAuthHandler(env.authSvc, "development", time.Hour, env.logger)

	wrongPassword := httptest.NewRecorder()
	handler.Login(wrongPassword, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ada@example.com","password":"wrong"}`)))

	unknownEmail := httptest.NewRecorder()
	handler.Login(unknownEmail, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ghost@example.com","password":"wrong"}`)))

	if wrongPassword.Code != http.StatusUnauthorized || unknownEmail.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for both failures, got %d and %d", wrongPassword.Code, unknownEmail.Code)
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Fatal("failure responses must be indistinguishable")
	}
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAuthHandler(env.authSvc, "development", time.Hour, env.logger)

	rec := httptest.NewRecorder()
	handler.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{not json")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAuthHandler(env.authSvc, "development", time.Hour, env.logger)

	rec := httptest.NewRecorder()
	handler.Logout(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	cookie := findCookie(t, rec.Result().Cookies(), tokenCookieName)
	if cookie == nil {
		t.Fatal("expected token cookie to be cleared")
	}
	if cookie.Value != "" || cookie.MaxAge != -1 {
		t.Fatalf("expected expired empty cookie, got value=%q maxAge=%d", cookie.Value, cookie.MaxAge)
	}
}

func TestValidateReturnsClaims(t *testing.T) {
	env := newTestEnv(t)
	registerUser(t, env, "ada@example.com", "secret")
	_, token, err := env.authSvc.Login(context.Background(), "ada@example.com", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	handler := NewAuthHandler(env.authSvc, "development", time.Hour, env.logger)

	guarded := newAuthMiddleware(env.tokens)(http.HandlerFunc(handler.Validate))
	req := httptest.NewRequest(http.MethodGet, "/auth/validate", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	guarded.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body["email"] != "ada@example.com" || body["name"] != "Ada" {
		t.Fatalf("unexpected claims: %v", body)
	}
	if body["id"] == "" {
		t.Fatal("expected id claim")
	}
}
