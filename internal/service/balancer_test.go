package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/salestrack/backend/internal/domain"
)

func TestBalancer_PickLeastLoadedAgent(t *testing.T) {
	ctx := context.Background()

	newAgent := func(name string) domain.User {
		return domain.User{ID: uuid.New(), FirstName: name, Role: domain.RoleAdmin, Status: domain.UserActive}
	}

	t.Run("picks agent with fewest active sessions", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		sessionRepo := new(MockChatSessionRepository)
		b := NewBalancer(userRepo, sessionRepo)

		x, y, z := newAgent("X"), newAgent("Y"), newAgent("Z")
		userRepo.On("ListByRoles", ctx, mock.Anything).Return([]domain.User{x, y, z}, nil)
		sessionRepo.On("CountActiveByAssignee", ctx, mock.Anything).Return(map[uuid.UUID]int{
			x.ID: 2,
			z.ID: 1,
		}, nil)

		got, err := b.PickLeastLoadedAgent(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, y.ID, got.ID)
	})

	t.Run("tie goes to earliest created agent", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		sessionRepo := new(MockChatSessionRepository)
		b := NewBalancer(userRepo, sessionRepo)

		// The repo returns the pool ordered by creation time.
		first, second := newAgent("First"), newAgent("Second")
		userRepo.On("ListByRoles", ctx, mock.Anything).Return([]domain.User{first, second}, nil)
		sessionRepo.On("CountActiveByAssignee", ctx, mock.Anything).Return(map[uuid.UUID]int{
			first.ID:  1,
			second.ID: 1,
		}, nil)

		got, err := b.PickLeastLoadedAgent(ctx)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
	})

	t.Run("empty pool returns nil without error", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		sessionRepo := new(MockChatSessionRepository)
		b := NewBalancer(userRepo, sessionRepo)

		userRepo.On("ListByRoles", ctx, mock.Anything).Return([]domain.User{}, nil)

		got, err := b.PickLeastLoadedAgent(ctx)
		require.NoError(t, err)
		assert.Nil(t, got)
		sessionRepo.AssertNotCalled(t, "CountActiveByAssignee", mock.Anything, mock.Anything)
	})

	t.Run("repo error propagates", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		sessionRepo := new(MockChatSessionRepository)
		b := NewBalancer(userRepo, sessionRepo)

		userRepo.On("ListByRoles", ctx, mock.Anything).Return(nil, errors.New("db down"))

		_, err := b.PickLeastLoadedAgent(ctx)
		assert.Error(t, err)
	})
}
