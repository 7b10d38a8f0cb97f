package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gatehouse/internal/auth"
	"gatehouse/internal/users"
)

const tokenCookieName = "token"

// userResponse is the safe projection of a user returned by the API.
// The password hash is never serialized.
type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u users.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// AuthHandler manages password login, logout, and token validation.
type AuthHandler struct {
	service      *auth.Service
	logger       *slog.Logger
	secureCookie bool
	cookieTTL    time.Duration
}

// NewAuthHandler creates an AuthHandler. The cookie lifetime should match the
// token TTL so the cookie and the token it carries expire together.
func NewAuthHandler(service *auth.Service, env string, cookieTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:      service,
		logger:       logger,
		secureCookie: !strings.EqualFold(env, "development"),
		cookieTTL:    cookieTTL,
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "unexpected error")
		return
	}

	http.SetCookie(w, h.tokenCookie(token, h.cookieTTL))
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  toUserResponse(*user),
	})
}

// Logout handles POST /auth/logout. Tokens are stateless, so this only clears
// the cookie and always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	clearCookie := h.tokenCookie("", 0)
	clearCookie.MaxAge = -1
	clearCookie.Expires = time.Unix(0, 0)

	http.SetCookie(w, clearCookie)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Validate handles GET /auth/validate behind the access guard and returns the
// decoded identity claims.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		unauthorized(w, "authentication required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":    claims.UserID(),
		"name":  claims.Name,
		"email": claims.Email,
		"role":  claims.Role,
	})
}

func (h *AuthHandler) tokenCookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     tokenCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookie,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
	}
}
