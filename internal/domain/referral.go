package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReferralStatus tracks whether a referred customer has converted.
type ReferralStatus string

const (
	ReferralPending   ReferralStatus = "pending"
	ReferralConverted ReferralStatus = "converted"
	ReferralExpired   ReferralStatus = "expired"
)

// Referral links a salesperson to a customer who signed up with their code.
type Referral struct {
	ID            uuid.UUID      `json:"id"`
	SalespersonID uuid.UUID      `json:"salesperson_id"`
	CustomerID    uuid.UUID      `json:"customer_id"`
	Status        ReferralStatus `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ReferralRepository defines the interface for referral storage.
type ReferralRepository interface {
	Create(ctx context.Context, referral *Referral) error
	ListBySalesperson(ctx context.Context, salespersonID uuid.UUID) ([]Referral, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status ReferralStatus) error
}
