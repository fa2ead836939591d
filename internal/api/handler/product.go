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

// ProductHandler handles catalogue endpoints
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// Create adds a product
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.ProductCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	product, err := h.productService.Create(r.Context(), principal, input)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, product)
}

// Get returns one product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		response.BadRequest(w, "invalid product id")
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, product)
}

// List returns the catalogue
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	products, err := h.productService.List(r.Context(), principal)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, map[string]any{"products": products})
}

// Update applies catalogue changes
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		response.BadRequest(w, "invalid product id")
		return
	}

	var input domain.ProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	product, err := h.productService.Update(r.Context(), principal, id, input)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, product)
}

// Delete deactivates a product
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		response.BadRequest(w, "invalid product id")
		return
	}

	if err := h.productService.Delete(r.Context(), principal, id); err != nil {
		response.FromError(w, err)
		return
	}
	response.NoContent(w)
}
