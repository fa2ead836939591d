package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/salestrack/backend/internal/apperr"
	"github.com/salestrack/backend/internal/domain"
	"github.com/salestrack/backend/internal/security"
)

func newAuthFixture() (*AuthService, *MockUserRepository, *MockReferralRepository) {
	userRepo := new(MockUserRepository)
	referralRepo := new(MockReferralRepository)
	jwtManager := security.NewJWTManager("test-secret-key-with-32-chars!!", 15*time.Minute, time.Hour)
	svc := NewAuthService(userRepo, referralRepo, jwtManager, zerolog.Nop())
	return svc, userRepo, referralRepo
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("salesperson gets a referral code", func(t *testing.T) {
		svc, userRepo, _ := newAuthFixture()
		userRepo.On("EmailExists", ctx, "seller@example.com").Return(false, nil)

		var created *domain.User
		userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.User)
		}).Return(nil)

		user, tokens, err := svc.Register(ctx, domain.UserCreate{
			FirstName: "Sam",
			LastName:  "Seller",
			Email:     "Seller@Example.com",
			Password:  "longenough",
			Role:      domain.RoleSalesperson,
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.NotEmpty(t, user.ReferralCode)
		assert.Equal(t, "seller@example.com", user.Email)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEqual(t, "longenough", created.PasswordHash)
	})

	t.Run("default role is customer without referral code", func(t *testing.T) {
		svc, userRepo, _ := newAuthFixture()
		userRepo.On("EmailExists", ctx, mock.Anything).Return(false, nil)
		userRepo.On("Create", ctx, mock.Anything).Return(nil)

		user, _, err := svc.Register(ctx, domain.UserCreate{
			FirstName: "Casey",
			LastName:  "Customer",
			Email:     "casey@example.com",
			Password:  "longenough",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleCustomer, user.Role)
		assert.Empty(t, user.ReferralCode)
	})

	t.Run("signup with referral code records referral", func(t *testing.T) {
		svc, userRepo, referralRepo := newAuthFixture()
		salesperson := testUser(domain.RoleSalesperson)

		userRepo.On("EmailExists", ctx, mock.Anything).Return(false, nil)
		userRepo.On("Create", ctx, mock.Anything).Return(nil)
		userRepo.On("GetByReferralCode", ctx, "AB12CD34").Return(salesperson, nil)

		var referral *domain.Referral
		referralRepo.On("Create", ctx, mock.AnythingOfType("*domain.Referral")).Run(func(args mock.Arguments) {
			referral = args.Get(1).(*domain.Referral)
		}).Return(nil)

		user, _, err := svc.Register(ctx, domain.UserCreate{
			FirstName:    "Casey",
			LastName:     "Customer",
			Email:        "referred@example.com",
			Password:     "longenough",
			ReferralCode: "AB12CD34",
		})
		require.NoError(t, err)
		require.NotNil(t, referral)
		assert.Equal(t, salesperson.ID, referral.SalespersonID)
		assert.Equal(t, user.ID, referral.CustomerID)
		assert.Equal(t, domain.ReferralPending, referral.Status)
	})

	t.Run("bad referral code does not fail registration", func(t *testing.T) {
		svc, userRepo, referralRepo := newAuthFixture()
		userRepo.On("EmailExists", ctx, mock.Anything).Return(false, nil)
		userRepo.On("Create", ctx, mock.Anything).Return(nil)
		userRepo.On("GetByReferralCode", ctx, "BOGUS").Return(nil, domain.ErrNotFound)

		_, _, err := svc.Register(ctx, domain.UserCreate{
			FirstName:    "Casey",
			LastName:     "Customer",
			Email:        "bogus@example.com",
			Password:     "longenough",
			ReferralCode: "BOGUS",
		})
		assert.NoError(t, err)
		referralRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		svc, userRepo, _ := newAuthFixture()
		userRepo.On("EmailExists", ctx, "taken@example.com").Return(true, nil)

		_, _, err := svc.Register(ctx, domain.UserCreate{
			FirstName: "Dup",
			LastName:  "User",
			Email:     "taken@example.com",
			Password:  "longenough",
		})
		assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	account := testUser(domain.RoleCustomer)
	account.Email = "login@example.com"
	account.PasswordHash = string(hash)

	t.Run("success records login time", func(t *testing.T) {
		svc, userRepo, _ := newAuthFixture()
		userRepo.On("GetByEmail", ctx, "login@example.com").Return(account, nil)
		userRepo.On("Update", ctx, account).Return(nil)

		user, tokens, err := svc.Login(ctx, domain.UserLogin{Email: "login@example.com", Password: "correct-horse"})
		require.NoError(t, err)
		assert.NotNil(t, user.LastLoginAt)
		assert.NotEmpty(t, tokens.RefreshToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, userRepo, _ := newAuthFixture()
		userRepo.On("GetByEmail", ctx, "login@example.com").Return(account, nil)

		_, _, err := svc.Login(ctx, domain.UserLogin{Email: "login@example.com", Password: "wrong"})
		assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))
	})

	t.Run("unknown email gets the same error", func(t *testing.T) {
		svc, userRepo, _ := newAuthFixture()
		userRepo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, domain.ErrNotFound)

		_, _, err := svc.Login(ctx, domain.UserLogin{Email: "ghost@example.com", Password: "anything"})
		assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))
	})

	t.Run("inactive account", func(t *testing.T) {
		svc, userRepo, _ := newAuthFixture()
		suspended := testUser(domain.RoleCustomer)
		suspended.Email = "off@example.com"
		suspended.PasswordHash = string(hash)
		suspended.Status = domain.UserSuspended
		userRepo.On("GetByEmail", ctx, "off@example.com").Return(suspended, nil)

		_, _, err := svc.Login(ctx, domain.UserLogin{Email: "off@example.com", Password: "correct-horse"})
		assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	})
}
