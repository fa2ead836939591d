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

// ReferralHandler handles referral ledger endpoints
type ReferralHandler struct {
	referralService *service.ReferralService
}

// NewReferralHandler creates a new referral handler
func NewReferralHandler(referralService *service.ReferralService) *ReferralHandler {
	return &ReferralHandler{referralService: referralService}
}

// ListOwn returns the caller's referrals
func (h *ReferralHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	referrals, err := h.referralService.ListBySalesperson(r.Context(), principal, principal.UserID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, map[string]any{"referrals": referrals})
}

// ListBySalesperson returns a salesperson's referrals
func (h *ReferralHandler) ListBySalesperson(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "salespersonID"))
	if err != nil {
		response.BadRequest(w, "invalid salesperson id")
		return
	}

	referrals, err := h.referralService.ListBySalesperson(r.Context(), principal, id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, map[string]any{"referrals": referrals})
}

// UpdateStatus flips a referral's status
func (h *ReferralHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "referralID"))
	if err != nil {
		response.BadRequest(w, "invalid referral id")
		return
	}

	var input struct {
		Status domain.ReferralStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.referralService.UpdateStatus(r.Context(), principal, id, input.Status); err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, map[string]string{"status": string(input.Status)})
}
