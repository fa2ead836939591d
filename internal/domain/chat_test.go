package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDirectSessionID(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	// Order of the pair must not matter.
	assert.Equal(t, DirectSessionID(a, b), DirectSessionID(b, a))
	assert.NotEqual(t, DirectSessionID(a, b), DirectSessionID(a, uuid.New()))

	id := DirectSessionID(a, b)
	assert.Contains(t, id, "chat_")
	assert.Contains(t, id, a.String())
	assert.Contains(t, id, b.String())
}

func TestSupportSessionID(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	at := time.Now()

	first := SupportSessionID(a, b, at)
	swapped := SupportSessionID(b, a, at)
	assert.Equal(t, first, swapped)
	assert.Equal(t, fmt.Sprintf("_%d", at.UnixMilli()), first[len(first)-len(fmt.Sprintf("_%d", at.UnixMilli())):])

	// Different creation instants yield different sessions for the same pair.
	later := SupportSessionID(a, b, at.Add(time.Millisecond))
	assert.NotEqual(t, first, later)
}

func TestSessionStatusActive(t *testing.T) {
	assert.True(t, SessionOpen.Active())
	assert.True(t, SessionAssigned.Active())
	assert.True(t, SessionReopened.Active())
	assert.False(t, SessionResolved.Active())
	assert.False(t, SessionClosed.Active())
}

func TestChatSessionParticipants(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	session := &ChatSession{
		Participants: []Participant{
			{UserID: a, Role: RoleCustomer},
			{UserID: b, Role: RoleSalesperson},
		},
		AssignedTo: &b,
	}

	assert.True(t, session.HasParticipant(a))
	assert.True(t, session.HasParticipant(b))
	assert.False(t, session.HasParticipant(uuid.New()))
	assert.True(t, session.IsAssignee(b))
	assert.False(t, session.IsAssignee(a))
}

func TestRoleSupportCapable(t *testing.T) {
	assert.True(t, RoleAdmin.SupportCapable())
	assert.True(t, RoleSuperAdmin.SupportCapable())
	assert.False(t, RoleCustomer.SupportCapable())
	assert.False(t, RoleSalesperson.SupportCapable())
	assert.False(t, RoleTeamHead.SupportCapable())
}
