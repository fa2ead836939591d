package security_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/salestrack/backend/internal/domain"
	"github.com/salestrack/backend/internal/security"
)

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", 15*time.Minute, 7*24*time.Hour)

	userID := uuid.New()
	email := "test@example.com"

	accessToken, err := manager.GenerateAccessToken(userID, email, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}
	if accessToken == "" {
		t.Error("access token is empty")
	}

	claims, err := manager.ValidateAccessToken(accessToken)
	if err != nil {
		t.Fatalf("failed to validate access token: %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("user ID mismatch: got %v, want %v", claims.UserID, userID)
	}
	if claims.Email != email {
		t.Errorf("email mismatch: got %v, want %v", claims.Email, email)
	}
	if claims.Role != domain.RoleAdmin {
		t.Errorf("role mismatch: got %v, want %v", claims.Role, domain.RoleAdmin)
	}
}

func TestJWTManager_GenerateTokenPair(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", 15*time.Minute, 7*24*time.Hour)

	userID := uuid.New()

	access, refresh, expiresIn, err := manager.GenerateTokenPair(userID, "pair@example.com", domain.RoleCustomer)
	if err != nil {
		t.Fatalf("failed to generate token pair: %v", err)
	}
	if access == "" || refresh == "" {
		t.Error("token pair contains empty token")
	}
	if expiresIn != int64((15 * time.Minute).Seconds()) {
		t.Errorf("expires_in mismatch: got %d", expiresIn)
	}

	gotID, err := manager.ValidateRefreshToken(refresh)
	if err != nil {
		t.Fatalf("failed to validate refresh token: %v", err)
	}
	if gotID != userID {
		t.Errorf("refresh subject mismatch: got %v, want %v", gotID, userID)
	}
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", 15*time.Minute, time.Hour)
	other := security.NewJWTManager("another-secret-key-entirely!!!!!", 15*time.Minute, time.Hour)

	token, err := manager.GenerateAccessToken(uuid.New(), "x@example.com", domain.RoleCustomer)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := other.ValidateAccessToken(token); err == nil {
		t.Error("expected validation to fail with a different secret")
	}
}

func TestJWTManager_RejectsExpiredToken(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", -time.Minute, time.Hour)

	token, err := manager.GenerateAccessToken(uuid.New(), "x@example.com", domain.RoleCustomer)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := manager.ValidateAccessToken(token); err == nil {
		t.Error("expected validation to fail for expired token")
	}
}
