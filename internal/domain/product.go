package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product is a sellable item. Deletion is soft: IsActive flips to false and
// the record stays for historical sales.
type Product struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	CurrentPrice float64   `json:"current_price"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProductCreate represents a new product.
type ProductCreate struct {
	Name         string  `json:"name" validate:"required,max=255"`
	Description  string  `json:"description" validate:"max=2000"`
	CurrentPrice float64 `json:"current_price" validate:"required,gt=0"`
	IsActive     *bool   `json:"is_active"`
}

// ProductUpdate represents mutable product fields. Nil means unchanged.
type ProductUpdate struct {
	Name         *string  `json:"name" validate:"omitempty,max=255"`
	Description  *string  `json:"description" validate:"omitempty,max=2000"`
	CurrentPrice *float64 `json:"current_price" validate:"omitempty,gt=0"`
	IsActive     *bool    `json:"is_active"`
}

// ProductRepository defines the interface for product storage.
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	NameExists(ctx context.Context, name string) (bool, error)
	List(ctx context.Context, activeOnly bool) ([]Product, error)
	Update(ctx context.Context, product *Product) error
}
