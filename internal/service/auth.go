package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/salestrack/backend/internal/apperr"
	"github.com/salestrack/backend/internal/domain"
	"github.com/salestrack/backend/internal/security"
)

// AuthService handles registration, login and token refresh.
type AuthService struct {
	userRepo     domain.UserRepository
	referralRepo domain.ReferralRepository
	jwtManager   *security.JWTManager
	validate     *validator.Validate
	logger       zerolog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	referralRepo domain.ReferralRepository,
	jwtManager *security.JWTManager,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		referralRepo: referralRepo,
		jwtManager:   jwtManager,
		validate:     validator.New(),
		logger:       logger,
	}
}

// Register creates a new account. Salespersons get a referral code of
// their own; signups carrying a salesperson's code produce a pending
// referral record.
func (s *AuthService) Register(ctx context.Context, input domain.UserCreate) (*domain.User, *domain.TokenPair, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, nil, apperr.E(apperr.InvalidInput, validationMessage(err))
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, nil, apperr.Wrap("failed to check email", err)
	}
	if exists {
		return nil, nil, apperr.E(apperr.InvalidInput, "email is already registered")
	}

	role := input.Role
	if role == "" {
		role = domain.RoleCustomer
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, apperr.Wrap("failed to hash password", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       domain.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if role == domain.RoleSalesperson {
		user.ReferralCode = newReferralCode()
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, apperr.Wrap("failed to create user", err)
	}

	if input.ReferralCode != "" {
		s.recordReferral(ctx, input.ReferralCode, user.ID)
	}

	pair, err := s.tokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("role", string(user.Role)).
		Msg("user registered")
	return user, pair, nil
}

// recordReferral links the new account to the referring salesperson. A bad
// code does not fail registration.
func (s *AuthService) recordReferral(ctx context.Context, code string, customerID uuid.UUID) {
	salesperson, err := s.userRepo.GetByReferralCode(ctx, code)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error().Err(err).Msg("failed to resolve referral code")
		}
		return
	}

	now := time.Now()
	referral := &domain.Referral{
		ID:            uuid.New(),
		SalespersonID: salesperson.ID,
		CustomerID:    customerID,
		Status:        domain.ReferralPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.referralRepo.Create(ctx, referral); err != nil {
		s.logger.Error().Err(err).Msg("failed to record referral")
	}
}

// Login verifies credentials and returns a fresh token pair.
func (s *AuthService) Login(ctx context.Context, input domain.UserLogin) (*domain.User, *domain.TokenPair, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, nil, apperr.E(apperr.InvalidInput, validationMessage(err))
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, apperr.E(apperr.Unauthenticated, "invalid email or password")
		}
		return nil, nil, apperr.Wrap("failed to load user", err)
	}

	if user.Status != domain.UserActive {
		return nil, nil, apperr.E(apperr.Forbidden, "account is not active")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, apperr.E(apperr.Unauthenticated, "invalid email or password")
	}

	now := time.Now()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to record login time")
	}

	pair, err := s.tokenPair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.E(apperr.Unauthenticated, "invalid refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.E(apperr.Unauthenticated, "account not found")
		}
		return nil, apperr.Wrap("failed to load user", err)
	}
	if user.Status != domain.UserActive {
		return nil, apperr.E(apperr.Forbidden, "account is not active")
	}

	return s.tokenPair(user)
}

func (s *AuthService) tokenPair(user *domain.User) (*domain.TokenPair, error) {
	access, refresh, expiresIn, err := s.jwtManager.GenerateTokenPair(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperr.Wrap("failed to generate tokens", err)
	}
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
	}, nil
}

// newReferralCode returns a short random code, uppercased for readability.
func newReferralCode() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return strings.ToUpper(uuid.NewString()[:8])
	}
	return strings.ToUpper(hex.EncodeToString(buf))
}

// validationMessage flattens validator errors into a single readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return "invalid value for: " + strings.Join(fields, ", ")
}
