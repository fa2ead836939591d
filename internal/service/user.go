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

// UserService handles account administration.
type UserService struct {
	userRepo domain.UserRepository
	validate *validator.Validate
}

// NewUserService creates a new user service
func NewUserService(userRepo domain.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		validate: validator.New(),
	}
}

// Get returns one account. Callers may always read their own record;
// reading others requires a support-capable role.
func (s *UserService) Get(ctx context.Context, principal domain.Principal, id uuid.UUID) (*domain.User, error) {
	if id != principal.UserID && !principal.Role.SupportCapable() {
		return nil, apperr.E(apperr.Forbidden, "not authorized to view this user")
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.E(apperr.NotFound, "user not found")
		}
		return nil, apperr.Wrap("failed to load user", err)
	}
	return user, nil
}

// List returns a page of accounts, support-capable callers only.
func (s *UserService) List(ctx context.Context, principal domain.Principal, page, limit int) ([]domain.User, error) {
	if !principal.Role.SupportCapable() {
		return nil, apperr.E(apperr.Forbidden, "not authorized to list users")
	}
	if page < 1 || limit < 1 || limit > 100 {
		return nil, apperr.E(apperr.InvalidInput, "invalid pagination parameters")
	}
	users, err := s.userRepo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, apperr.Wrap("failed to list users", err)
	}
	return users, nil
}

// Update applies profile changes. Role and status changes are restricted
// to support-capable callers; everyone may edit their own profile fields.
func (s *UserService) Update(ctx context.Context, principal domain.Principal, id uuid.UUID, input domain.UserUpdate) (*domain.User, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperr.E(apperr.InvalidInput, validationMessage(err))
	}

	self := id == principal.UserID
	if !self && !principal.Role.SupportCapable() {
		return nil, apperr.E(apperr.Forbidden, "not authorized to update this user")
	}
	if (input.Role != nil || input.Status != nil) && !principal.Role.SupportCapable() {
		return nil, apperr.E(apperr.Forbidden, "not authorized to change role or status")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.E(apperr.NotFound, "user not found")
		}
		return nil, apperr.Wrap("failed to load user", err)
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Company != nil {
		user.Company = *input.Company
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.Status != nil {
		user.Status = *input.Status
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, apperr.Wrap("failed to update user", err)
	}
	return user, nil
}

// Deactivate flips the account to inactive. Soft operation, nothing is
// deleted.
func (s *UserService) Deactivate(ctx context.Context, principal domain.Principal, id uuid.UUID) error {
	if !principal.Role.SupportCapable() {
		return apperr.E(apperr.Forbidden, "not authorized to deactivate users")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperr.E(apperr.NotFound, "user not found")
		}
		return apperr.Wrap("failed to load user", err)
	}

	user.Status = domain.UserInactive
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return apperr.Wrap("failed to deactivate user", err)
	}
	return nil
}
