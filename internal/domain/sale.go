package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Sale records one completed sale. PricePerUnit is a snapshot of the
// product price at sale time; later price changes never rewrite history.
type Sale struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	ProductID     uuid.UUID `json:"product_id"`
	ReceiverEmail string    `json:"receiver_email"`
	Quantity      int       `json:"quantity"`
	PricePerUnit  float64   `json:"price_per_unit_at_sale"`
	TotalAmount   float64   `json:"total_amount"`
	SaleDate      time.Time `json:"sale_date"`
	CreatedAt     time.Time `json:"created_at"`
}

// SaleCreate represents a new sale entry.
type SaleCreate struct {
	ProductID     uuid.UUID `json:"product_id" validate:"required"`
	ReceiverEmail string    `json:"receiver_email" validate:"required,email"`
	Quantity      int       `json:"quantity" validate:"required,min=1"`
}

// SaleRepository defines the interface for sale storage.
type SaleRepository interface {
	Create(ctx context.Context, sale *Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Sale, error)
	List(ctx context.Context, limit, offset int) ([]Sale, int, error)
}
