package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"gatehouse/internal/users"
)

const (
	defaultPageLimit  = 10
	defaultPageOffset = 0
)

// UserHandler exposes registration and listing endpoints.
type UserHandler struct {
	service *users.Service
	logger  *slog.Logger
}

// NewUserHandler creates a handler.
func NewUserHandler(service *users.Service, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger}
}

// Create handles POST /users/user. The route runs behind the optional guard:
// anonymous registration is allowed, but granting the admin role requires an
// authenticated admin caller.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var actor users.Role
	if claims := ClaimsFromContext(r.Context()); claims != nil {
		actor = users.Role(claims.Role)
	}

	id, err := h.service.Register(r.Context(), users.RegisterInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		Role:     users.Role(payload.Role),
	}, actor)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrDuplicateEmail):
			writeError(w, http.StatusBadRequest, "email already registered")
		case errors.Is(err, users.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, users.ErrRoleNotAllowed):
			writeError(w, http.StatusForbidden, "only an admin can grant the admin role")
		default:
			h.logger.Error("register user", "error", err)
			writeError(w, http.StatusInternalServerError, "unexpected error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"userId": id.String()})
}

// List handles GET /users behind the access guard.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePageWindow(r.URL.Query())

	page, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list users", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	items := make([]map[string]string, 0, len(page.Items))
	for _, u := range page.Items {
		items = append(items, map[string]string{
			"id":    u.ID.String(),
			"name":  u.Name,
			"email": u.Email,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"offset": page.Offset,
		"limit":  page.Limit,
		"total":  page.Total,
		"items":  items,
	})
}

// parsePageWindow coerces limit and offset to integers, falling back to the
// defaults when a value is missing or non-numeric.
func parsePageWindow(values url.Values) (limit, offset int) {
	limit = defaultPageLimit
	offset = defaultPageOffset

	if raw := values.Get("limit"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			limit = value
		}
	}
	if raw := values.Get("offset"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			offset = value
		}
	}
	return limit, offset
}
