package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CompetitionStatus is a sales competition's lifecycle state.
type CompetitionStatus string

const (
	CompetitionUpcoming CompetitionStatus = "upcoming"
	CompetitionActive   CompetitionStatus = "active"
	CompetitionEnded    CompetitionStatus = "ended"
)

// Competition is a time-bounded sales contest.
type Competition struct {
	ID        uuid.UUID         `json:"id"`
	Title     string            `json:"title"`
	Prize     string            `json:"prize,omitempty"`
	StartDate time.Time         `json:"start_date"`
	EndDate   time.Time         `json:"end_date"`
	Status    CompetitionStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// CompetitionCreate represents a new competition.
type CompetitionCreate struct {
	Title     string    `json:"title" validate:"required,max=255"`
	Prize     string    `json:"prize" validate:"max=500"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
}

// CompetitionRepository defines the interface for competition storage.
type CompetitionRepository interface {
	Create(ctx context.Context, competition *Competition) error
	GetByID(ctx context.Context, id uuid.UUID) (*Competition, error)
	List(ctx context.Context) ([]Competition, error)
	Update(ctx context.Context, competition *Competition) error
	Delete(ctx context.Context, id uuid.UUID) error
}
