package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salestrack/backend/internal/api/middleware"
	"github.com/salestrack/backend/internal/api/response"
	"github.com/salestrack/backend/internal/service"
)

// SettingHandler handles the key/value configuration store
type SettingHandler struct {
	settingService *service.SettingService
}

// NewSettingHandler creates a new setting handler
func NewSettingHandler(settingService *service.SettingService) *SettingHandler {
	return &SettingHandler{settingService: settingService}
}

// Get returns the value under a key
func (h *SettingHandler) Get(w http.ResponseWriter, r *http.Request) {
	setting, err := h.settingService.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, setting)
}

// Upsert writes a value under a key
func (h *SettingHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	setting, err := h.settingService.Upsert(r.Context(), principal, chi.URLParam(r, "key"), input.Value)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, setting)
}
