package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role identifies what a user is allowed to do on the platform.
type Role string

const (
	RoleCustomer    Role = "customer"
	RoleSalesperson Role = "salesperson"
	RoleAdmin       Role = "admin"
	RoleSuperAdmin  Role = "super_admin"
	RoleTeamHead    Role = "team_head"
)

// SupportCapable reports whether the role may handle support sessions.
// All support authorization checks go through this predicate.
func (r Role) SupportCapable() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSalesperson, RoleAdmin, RoleSuperAdmin, RoleTeamHead:
		return true
	}
	return false
}

// UserStatus is the account lifecycle state.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
)

// User represents a platform account.
type User struct {
	ID           uuid.UUID  `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	ReferralCode string     `json:"referral_code,omitempty"`
	Status       UserStatus `json:"status"`
	Phone        string     `json:"phone,omitempty"`
	Company      string     `json:"company,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// FullName returns the display name used in system chat messages.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserCreate represents registration data.
type UserCreate struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Role      Role   `json:"role" validate:"omitempty,oneof=customer salesperson admin super_admin team_head"`
	// ReferralCode is the code of the salesperson who referred this signup.
	ReferralCode string `json:"referral_code" validate:"omitempty,max=16"`
}

// UserUpdate represents mutable profile fields. Nil means unchanged.
type UserUpdate struct {
	FirstName *string     `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string     `json:"last_name" validate:"omitempty,max=100"`
	Phone     *string     `json:"phone" validate:"omitempty,max=32"`
	Company   *string     `json:"company" validate:"omitempty,max=255"`
	Role      *Role       `json:"role" validate:"omitempty,oneof=customer salesperson admin super_admin team_head"`
	Status    *UserStatus `json:"status" validate:"omitempty,oneof=active inactive suspended"`
}

// UserLogin represents login credentials.
type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents a JWT token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Principal is the authenticated identity the auth middleware attaches to
// each request: just an account id and a role snapshot.
type Principal struct {
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
}

// UserRepository defines the interface for account storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByReferralCode(ctx context.Context, code string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]User, error)
	// ListByRoles returns accounts holding any of the given roles, ordered by
	// creation time. The stable order is what makes the load balancer's
	// tie-break deterministic.
	ListByRoles(ctx context.Context, roles []Role) ([]User, error)
	Update(ctx context.Context, user *User) error
}
