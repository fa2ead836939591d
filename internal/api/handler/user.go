package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/salestrack/backend/internal/api/middleware"
	"github.com/salestrack/backend/internal/api/response"
	"github.com/salestrack/backend/internal/domain"
	"github.com/salestrack/backend/internal/service"
)

// UserHandler handles account administration endpoints
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me returns the authenticated user's own record
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	user, err := h.userService.Get(r.Context(), principal, principal.UserID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, user)
}

// Get returns one user by id
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	user, err := h.userService.Get(r.Context(), principal, id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, user)
}

// List returns a page of users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	page, limit := pagination(r)
	users, err := h.userService.List(r.Context(), principal, page, limit)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, map[string]any{
		"users": users,
		"page":  page,
		"limit": limit,
	})
}

// Update applies profile changes to a user
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	var input domain.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	user, err := h.userService.Update(r.Context(), principal, id, input)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, user)
}

// Deactivate flips a user to inactive
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	if err := h.userService.Deactivate(r.Context(), principal, id); err != nil {
		response.FromError(w, err)
		return
	}
	response.NoContent(w)
}

// pagination reads 1-based page/limit query parameters with defaults.
func pagination(r *http.Request) (page, limit int) {
	page, limit = 1, 20
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	return page, limit
}
