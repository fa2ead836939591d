package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/salestrack/backend/internal/api/middleware"
	"github.com/salestrack/backend/internal/api/response"
	"github.com/salestrack/backend/internal/domain"
	"github.com/salestrack/backend/internal/service"
)

// CompetitionHandler handles sales contest endpoints
type CompetitionHandler struct {
	competitionService *service.CompetitionService
}

// NewCompetitionHandler creates a new competition handler
func NewCompetitionHandler(competitionService *service.CompetitionService) *CompetitionHandler {
	return &CompetitionHandler{competitionService: competitionService}
}

// Create adds a competition
func (h *CompetitionHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.CompetitionCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	competition, err := h.competitionService.Create(r.Context(), principal, input)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, competition)
}

// Get returns one competition
func (h *CompetitionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "competitionID"))
	if err != nil {
		response.BadRequest(w, "invalid competition id")
		return
	}

	competition, err := h.competitionService.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, competition)
}

// List returns all competitions
func (h *CompetitionHandler) List(w http.ResponseWriter, r *http.Request) {
	competitions, err := h.competitionService.List(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, map[string]any{"competitions": competitions})
}

// Update replaces a competition's details
func (h *CompetitionHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "competitionID"))
	if err != nil {
		response.BadRequest(w, "invalid competition id")
		return
	}

	var input domain.CompetitionCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	competition, err := h.competitionService.Update(r.Context(), principal, id, input)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, competition)
}

// Delete removes a competition
func (h *CompetitionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "competitionID"))
	if err != nil {
		response.BadRequest(w, "invalid competition id")
		return
	}

	if err := h.competitionService.Delete(r.Context(), principal, id); err != nil {
		response.FromError(w, err)
		return
	}
	response.NoContent(w)
}
