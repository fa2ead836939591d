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

// SaleService records sales with a price snapshot taken at entry time.
type SaleService struct {
	saleRepo    domain.SaleRepository
	productRepo domain.ProductRepository
	validate    *validator.Validate
}

// NewSaleService creates a new sale service
func NewSaleService(saleRepo domain.SaleRepository, productRepo domain.ProductRepository) *SaleService {
	return &SaleService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		validate:    validator.New(),
	}
}

// Create records a sale. The unit price is the product's current price at
// the moment of entry; later price changes never rewrite it.
func (s *SaleService) Create(ctx context.Context, principal domain.Principal, input domain.SaleCreate) (*domain.Sale, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperr.E(apperr.InvalidInput, validationMessage(err))
	}

	product, err := s.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.E(apperr.NotFound, "product not found")
		}
		return nil, apperr.Wrap("failed to load product", err)
	}
	if !product.IsActive {
		return nil, apperr.E(apperr.InvalidInput, "product is no longer available")
	}

	now := time.Now()
	sale := &domain.Sale{
		ID:            uuid.New(),
		UserID:        principal.UserID,
		ProductID:     product.ID,
		ReceiverEmail: input.ReceiverEmail,
		Quantity:      input.Quantity,
		PricePerUnit:  product.CurrentPrice,
		TotalAmount:   product.CurrentPrice * float64(input.Quantity),
		SaleDate:      now,
		CreatedAt:     now,
	}
	if err := s.saleRepo.Create(ctx, sale); err != nil {
		return nil, apperr.Wrap("failed to record sale", err)
	}
	return sale, nil
}

// ListOwn returns the caller's sales.
func (s *SaleService) ListOwn(ctx context.Context, principal domain.Principal, page, limit int) ([]domain.Sale, error) {
	if page < 1 || limit < 1 || limit > 100 {
		return nil, apperr.E(apperr.InvalidInput, "invalid pagination parameters")
	}
	sales, err := s.saleRepo.ListByUser(ctx, principal.UserID, limit, (page-1)*limit)
	if err != nil {
		return nil, apperr.Wrap("failed to list sales", err)
	}
	return sales, nil
}

// ListAll returns every sale, support-capable callers only.
func (s *SaleService) ListAll(ctx context.Context, principal domain.Principal, page, limit int) ([]domain.Sale, int, error) {
	if !principal.Role.SupportCapable() {
		return nil, 0, apperr.E(apperr.Forbidden, "not authorized to list all sales")
	}
	if page < 1 || limit < 1 || limit > 100 {
		return nil, 0, apperr.E(apperr.InvalidInput, "invalid pagination parameters")
	}
	sales, total, err := s.saleRepo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, apperr.Wrap("failed to list sales", err)
	}
	return sales, total, nil
}
