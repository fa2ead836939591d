package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/salestrack/backend/internal/apperr"
	"github.com/salestrack/backend/internal/domain"
)

// ReferralService exposes the referral ledger. Creation happens during
// registration; this service only reads and flips statuses.
type ReferralService struct {
	referralRepo domain.ReferralRepository
}

// NewReferralService creates a new referral service
func NewReferralService(referralRepo domain.ReferralRepository) *ReferralService {
	return &ReferralService{referralRepo: referralRepo}
}

// ListBySalesperson returns a salesperson's referrals. Salespersons see
// their own; support-capable callers may read anyone's.
func (s *ReferralService) ListBySalesperson(ctx context.Context, principal domain.Principal, salespersonID uuid.UUID) ([]domain.Referral, error) {
	if salespersonID != principal.UserID && !principal.Role.SupportCapable() {
		return nil, apperr.E(apperr.Forbidden, "not authorized to view these referrals")
	}
	referrals, err := s.referralRepo.ListBySalesperson(ctx, salespersonID)
	if err != nil {
		return nil, apperr.Wrap("failed to list referrals", err)
	}
	return referrals, nil
}

// UpdateStatus moves a referral between pending, converted and expired.
func (s *ReferralService) UpdateStatus(ctx context.Context, principal domain.Principal, id uuid.UUID, status domain.ReferralStatus) error {
	if !principal.Role.SupportCapable() {
		return apperr.E(apperr.Forbidden, "not authorized to update referrals")
	}
	switch status {
	case domain.ReferralPending, domain.ReferralConverted, domain.ReferralExpired:
	default:
		return apperr.E(apperr.InvalidInput, "invalid referral status")
	}

	if err := s.referralRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperr.E(apperr.NotFound, "referral not found")
		}
		return apperr.Wrap("failed to update referral", err)
	}
	return nil
}
