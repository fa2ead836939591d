package handler

import (
	"encoding/json"
	"net/http"

	"github.com/salestrack/backend/internal/api/middleware"
	"github.com/salestrack/backend/internal/api/response"
	"github.com/salestrack/backend/internal/domain"
	"github.com/salestrack/backend/internal/service"
)

// SaleHandler handles sale entry endpoints
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Create records a sale
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.SaleCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	sale, err := h.saleService.Create(r.Context(), principal, input)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, sale)
}

// ListOwn returns the caller's sales
func (h *SaleHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	page, limit := pagination(r)
	sales, err := h.saleService.ListOwn(r.Context(), principal, page, limit)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, map[string]any{
		"sales": sales,
		"page":  page,
		"limit": limit,
	})
}

// ListAll returns every sale
func (h *SaleHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	page, limit := pagination(r)
	sales, total, err := h.saleService.ListAll(r.Context(), principal, page, limit)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, map[string]any{
		"sales": sales,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
