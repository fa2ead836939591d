package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/salestrack/backend/internal/domain"
)

// Balancer picks the support agent best placed to take a new session.
type Balancer struct {
	userRepo    domain.UserRepository
	sessionRepo domain.ChatSessionRepository
}

// NewBalancer creates a new load balancer
func NewBalancer(userRepo domain.UserRepository, sessionRepo domain.ChatSessionRepository) *Balancer {
	return &Balancer{userRepo: userRepo, sessionRepo: sessionRepo}
}

// PickLeastLoadedAgent returns the support-capable account with the fewest
// non-terminal assigned sessions, or nil when no agents exist. The pool is
// ordered by account creation time, so ties deterministically go to the
// longest-standing agent. Pure read, no side effects.
func (b *Balancer) PickLeastLoadedAgent(ctx context.Context) (*domain.User, error) {
	pool, err := b.userRepo.ListByRoles(ctx, []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin})
	if err != nil {
		return nil, fmt.Errorf("failed to load agent pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(pool))
	for i, agent := range pool {
		ids[i] = agent.ID
	}

	counts, err := b.sessionRepo.CountActiveByAssignee(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count agent load: %w", err)
	}

	var best *domain.User
	minLoad := -1
	for i := range pool {
		load := counts[pool[i].ID]
		if minLoad < 0 || load < minLoad {
			minLoad = load
			best = &pool[i]
		}
	}
	return best, nil
}
