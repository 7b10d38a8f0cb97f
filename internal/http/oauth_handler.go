package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gatehouse/internal/auth"
)

const (
	oauthStateCookieName = "gatehouse_oauth_state"
	oauthStateCookieTTL  = 10 * time.Minute
)

type googleAuthenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GoogleClaims, error)
}

// OAuthHandler handles the Google sign-in flow. The issued token is delivered
// as an HttpOnly cookie and never appears in a redirect URL.
type OAuthHandler struct {
	google       googleAuthenticator
	authService  *auth.Service
	logger       *slog.Logger
	secureCookie bool
	frontendURL  string
	cookieTTL    time.Duration
}

// NewOAuthHandler creates a new OAuthHandler. google may be nil when sign-in
// is not configured; the endpoints then report the feature as unavailable.
func NewOAuthHandler(google googleAuthenticator, authService *auth.Service, frontendURL, env string, cookieTTL time.Duration, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		google:       google,
		authService:  authService,
		logger:       logger,
		secureCookie: !strings.EqualFold(env, "development"),
		frontendURL:  strings.TrimSuffix(frontendURL, "/"),
		cookieTTL:    cookieTTL,
	}
}

// InitiateGoogle handles GET /auth/google.
// Redirects the user to Google's OAuth consent screen.
func (h *OAuthHandler) InitiateGoogle(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, http.StatusServiceUnavailable, "google sign-in is not configured")
		return
	}

	state, err := auth.GenerateState()
	if err != nil {
		h.logger.Error("failed to generate state", "error", err)
		writeError(w, http.StatusInternalServerError, "unexpected error")
		return
	}

	// Store state in cookie for CSRF protection
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(oauthStateCookieTTL.Seconds()),
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusFound)
}

// CallbackGoogle handles GET /auth/google/callback.
// Exchanges the authorization code, verifies the identity assertion, creates
// the user on first sign-in, and issues a token cookie.
func (h *OAuthHandler) CallbackGoogle(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, http.StatusServiceUnavailable, "google sign-in is not configured")
		return
	}

	// Verify state (CSRF protection)
	stateCookie, err := r.Cookie(oauthStateCookieName)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing oauth state")
		return
	}

	stateParam := r.URL.Query().Get("state")
	if subtle.ConstantTimeCompare([]byte(stateParam), []byte(stateCookie.Value)) != 1 {
		writeError(w, http.StatusBadRequest, "oauth state mismatch")
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Warn("oauth callback: provider error", "error", errParam)
		writeError(w, http.StatusBadRequest, "authorization was denied")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	claims, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidAssertion) {
			h.logger.Error("oauth callback: assertion rejected", "error", err)
			writeError(w, http.StatusInternalServerError, "invalid identity assertion")
			return
		}
		h.logger.Error("oauth callback: exchange failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete authentication")
		return
	}

	if !claims.EmailVerified {
		h.logger.Warn("oauth callback: email not verified", "email", claims.Email)
		writeError(w, http.StatusForbidden, "google email address is not verified")
		return
	}

	user, token, err := h.authService.LoginWithGoogle(r.Context(), claims)
	if err != nil {
		h.logger.Error("oauth callback: sign-in failed", "error", err)
		writeError(w, http.StatusInternalServerError, "unexpected error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.cookieTTL.Seconds()),
	})

	h.logger.Info("google sign-in successful", "user_id", user.ID, "email", user.Email)

	http.Redirect(w, r, h.frontendURL+"/", http.StatusFound)
}
