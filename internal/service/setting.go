package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/salestrack/backend/internal/apperr"
	"github.com/salestrack/backend/internal/domain"
)

// SettingService is a thin wrapper over the key/value configuration store.
type SettingService struct {
	settingRepo domain.SettingRepository
}

// NewSettingService creates a new setting service
func NewSettingService(settingRepo domain.SettingRepository) *SettingService {
	return &SettingService{settingRepo: settingRepo}
}

// Get returns the value stored under a key.
func (s *SettingService) Get(ctx context.Context, key string) (*domain.Setting, error) {
	if key == "" {
		return nil, apperr.E(apperr.InvalidInput, "setting key is required")
	}
	setting, err := s.settingRepo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.E(apperr.NotFound, "setting not found")
		}
		return nil, apperr.Wrap("failed to load setting", err)
	}
	return setting, nil
}

// Upsert writes a value under a key, creating or replacing it.
func (s *SettingService) Upsert(ctx context.Context, principal domain.Principal, key string, value json.RawMessage) (*domain.Setting, error) {
	if !principal.Role.SupportCapable() {
		return nil, apperr.E(apperr.Forbidden, "not authorized to change settings")
	}
	if key == "" {
		return nil, apperr.E(apperr.InvalidInput, "setting key is required")
	}
	if len(value) == 0 || !json.Valid(value) {
		return nil, apperr.E(apperr.InvalidInput, "setting value must be valid JSON")
	}

	setting, err := s.settingRepo.Upsert(ctx, key, value)
	if err != nil {
		return nil, apperr.Wrap("failed to save setting", err)
	}
	return setting, nil
}
