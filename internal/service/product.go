package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/salestrack/backend/internal/apperr"
	"github.com/salestrack/backend/internal/domain"
)

// ProductService handles the product catalogue.
type ProductService struct {
	productRepo domain.ProductRepository
	validate    *validator.Validate
}

// NewProductService creates a new product service
func NewProductService(productRepo domain.ProductRepository) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		validate:    validator.New(),
	}
}

// Create adds a product. Names are unique across the catalogue.
func (s *ProductService) Create(ctx context.Context, principal domain.Principal, input domain.ProductCreate) (*domain.Product, error) {
	if !principal.Role.SupportCapable() {
		return nil, apperr.E(apperr.Forbidden, "not authorized to manage products")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, apperr.E(apperr.InvalidInput, validationMessage(err))
	}

	exists, err := s.productRepo.NameExists(ctx, input.Name)
	if err != nil {
		return nil, apperr.Wrap("failed to check product name", err)
	}
	if exists {
		return nil, apperr.E(apperr.InvalidInput, "a product with this name already exists")
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	now := time.Now()
	product := &domain.Product{
		ID:           uuid.New(),
		Name:         input.Name,
		Description:  input.Description,
		CurrentPrice: input.CurrentPrice,
		IsActive:     active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, apperr.Wrap("failed to create product", err)
	}
	return product, nil
}

// Get returns one product.
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.E(apperr.NotFound, "product not found")
		}
		return nil, apperr.Wrap("failed to load product", err)
	}
	return product, nil
}

// List returns the catalogue. Non-admin callers only see active products.
func (s *ProductService) List(ctx context.Context, principal domain.Principal) ([]domain.Product, error) {
	activeOnly := !principal.Role.SupportCapable()
	products, err := s.productRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, apperr.Wrap("failed to list products", err)
	}
	return products, nil
}

// Update applies catalogue changes.
func (s *ProductService) Update(ctx context.Context, principal domain.Principal, id uuid.UUID, input domain.ProductUpdate) (*domain.Product, error) {
	if !principal.Role.SupportCapable() {
		return nil, apperr.E(apperr.Forbidden, "not authorized to manage products")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, apperr.E(apperr.InvalidInput, validationMessage(err))
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.E(apperr.NotFound, "product not found")
		}
		return nil, apperr.Wrap("failed to load product", err)
	}

	if input.Name != nil && *input.Name != product.Name {
		exists, err := s.productRepo.NameExists(ctx, *input.Name)
		if err != nil {
			return nil, apperr.Wrap("failed to check product name", err)
		}
		if exists {
			return nil, apperr.E(apperr.InvalidInput, "a product with this name already exists")
		}
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.CurrentPrice != nil {
		product.CurrentPrice = *input.CurrentPrice
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, apperr.Wrap("failed to update product", err)
	}
	return product, nil
}

// Delete deactivates a product. Sales history keeps pointing at it.
func (s *ProductService) Delete(ctx context.Context, principal domain.Principal, id uuid.UUID) error {
	if !principal.Role.SupportCapable() {
		return apperr.E(apperr.Forbidden, "not authorized to manage products")
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperr.E(apperr.NotFound, "product not found")
		}
		return apperr.Wrap("failed to load product", err)
	}

	product.IsActive = false
	product.UpdatedAt = time.Now()
	if err := s.productRepo.Update(ctx, product); err != nil {
		return apperr.Wrap("failed to deactivate product", err)
	}
	return nil
}
