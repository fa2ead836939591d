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

// CompetitionService manages time-bounded sales contests.
type CompetitionService struct {
	competitionRepo domain.CompetitionRepository
	validate        *validator.Validate
}

// NewCompetitionService creates a new competition service
func NewCompetitionService(competitionRepo domain.CompetitionRepository) *CompetitionService {
	return &CompetitionService{
		competitionRepo: competitionRepo,
		validate:        validator.New(),
	}
}

// Create adds a competition. Status derives from the date range.
func (s *CompetitionService) Create(ctx context.Context, principal domain.Principal, input domain.CompetitionCreate) (*domain.Competition, error) {
	if !principal.Role.SupportCapable() {
		return nil, apperr.E(apperr.Forbidden, "not authorized to manage competitions")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, apperr.E(apperr.InvalidInput, validationMessage(err))
	}

	now := time.Now()
	competition := &domain.Competition{
		ID:        uuid.New(),
		Title:     input.Title,
		Prize:     input.Prize,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Status:    statusForDates(input.StartDate, input.EndDate, now),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.competitionRepo.Create(ctx, competition); err != nil {
		return nil, apperr.Wrap("failed to create competition", err)
	}
	return competition, nil
}

// Get returns one competition.
func (s *CompetitionService) Get(ctx context.Context, id uuid.UUID) (*domain.Competition, error) {
	competition, err := s.competitionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.E(apperr.NotFound, "competition not found")
		}
		return nil, apperr.Wrap("failed to load competition", err)
	}
	return competition, nil
}

// List returns all competitions.
func (s *CompetitionService) List(ctx context.Context) ([]domain.Competition, error) {
	competitions, err := s.competitionRepo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap("failed to list competitions", err)
	}
	return competitions, nil
}

// Update replaces a competition's details and rederives its status.
func (s *CompetitionService) Update(ctx context.Context, principal domain.Principal, id uuid.UUID, input domain.CompetitionCreate) (*domain.Competition, error) {
	if !principal.Role.SupportCapable() {
		return nil, apperr.E(apperr.Forbidden, "not authorized to manage competitions")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, apperr.E(apperr.InvalidInput, validationMessage(err))
	}

	competition, err := s.competitionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.E(apperr.NotFound, "competition not found")
		}
		return nil, apperr.Wrap("failed to load competition", err)
	}

	now := time.Now()
	competition.Title = input.Title
	competition.Prize = input.Prize
	competition.StartDate = input.StartDate
	competition.EndDate = input.EndDate
	competition.Status = statusForDates(input.StartDate, input.EndDate, now)
	competition.UpdatedAt = now

	if err := s.competitionRepo.Update(ctx, competition); err != nil {
		return nil, apperr.Wrap("failed to update competition", err)
	}
	return competition, nil
}

// Delete removes a competition.
func (s *CompetitionService) Delete(ctx context.Context, principal domain.Principal, id uuid.UUID) error {
	if !principal.Role.SupportCapable() {
		return apperr.E(apperr.Forbidden, "not authorized to manage competitions")
	}
	if err := s.competitionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperr.E(apperr.NotFound, "competition not found")
		}
		return apperr.Wrap("failed to delete competition", err)
	}
	return nil
}

func statusForDates(start, end, now time.Time) domain.CompetitionStatus {
	switch {
	case now.Before(start):
		return domain.CompetitionUpcoming
	case now.After(end):
		return domain.CompetitionEnded
	default:
		return domain.CompetitionActive
	}
}
