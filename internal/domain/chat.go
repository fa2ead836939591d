package domain

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the chat session lifecycle state.
type SessionStatus string

const (
	SessionOpen     SessionStatus = "open"
	SessionAssigned SessionStatus = "assigned"
	SessionResolved SessionStatus = "resolved"
	SessionReopened SessionStatus = "reopened"
	// SessionClosed is terminal and only ever set by external archival,
	// never by the chat engine itself.
	SessionClosed SessionStatus = "closed"
)

// Active reports whether the session still accepts messages and assignment.
func (s SessionStatus) Active() bool {
	return s == SessionOpen || s == SessionAssigned || s == SessionReopened
}

// ActiveStatuses is the non-terminal status set used in queries.
var ActiveStatuses = []SessionStatus{SessionOpen, SessionAssigned, SessionReopened}

// ValidSessionStatus reports whether s is a known status.
func ValidSessionStatus(s SessionStatus) bool {
	switch s {
	case SessionOpen, SessionAssigned, SessionResolved, SessionReopened, SessionClosed:
		return true
	}
	return false
}

// Priority of a chat session.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Category of a chat session.
type Category string

const (
	CategoryGeneral   Category = "general"
	CategorySales     Category = "sales"
	CategoryTechnical Category = "technical"
	CategoryBilling   Category = "billing"
	CategorySupport   Category = "support"
)

// Participant is a member of a chat session. Role is a snapshot taken at
// join time, not re-resolved on later reads.
type Participant struct {
	UserID   uuid.UUID `json:"user_id"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// ChatSession is a persistent conversation thread. The chat engine is the
// only writer of Status, AssignedTo and the rolling counters.
type ChatSession struct {
	SessionID     string        `json:"session_id"`
	Participants  []Participant `json:"participants"`
	Status        SessionStatus `json:"status"`
	Priority      Priority      `json:"priority"`
	Category      Category      `json:"category"`
	AssignedTo    *uuid.UUID    `json:"assigned_to,omitempty"`
	LastMessageAt time.Time     `json:"last_message_at"`
	MessageCount  int           `json:"message_count"`
	UnreadCount   int           `json:"unread_count"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// HasParticipant reports whether the user is listed in the session.
func (s *ChatSession) HasParticipant(userID uuid.UUID) bool {
	for _, p := range s.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// IsAssignee reports whether the user is the currently assigned agent.
func (s *ChatSession) IsAssignee(userID uuid.UUID) bool {
	return s.AssignedTo != nil && *s.AssignedTo == userID
}

// DirectSessionID derives the deterministic id for a non-support chat
// between two accounts. Sorting makes the id independent of who initiates,
// which is what makes session creation idempotent per pair.
func DirectSessionID(a, b uuid.UUID) string {
	ids := []string{a.String(), b.String()}
	sort.Strings(ids)
	return "chat_" + strings.Join(ids, "_")
}

// SupportSessionID derives the id for a support chat. The creation
// timestamp keeps repeated requests from colliding on the same pair.
func SupportSessionID(a, b uuid.UUID, createdAt time.Time) string {
	ids := []string{a.String(), b.String()}
	sort.Strings(ids)
	return fmt.Sprintf("support_%s_%d", strings.Join(ids, "_"), createdAt.UnixMilli())
}

// SessionFilter narrows administrative session listings.
type SessionFilter struct {
	Status SessionStatus
	// AssignedTo filters to a specific agent when set.
	AssignedTo *uuid.UUID
	// Unassigned selects sessions with no agent when true.
	Unassigned bool
}

// ChatSessionRepository is the session directory consumed by the engine.
type ChatSessionRepository interface {
	// Create inserts the session. It returns ErrDuplicateSession when a
	// session with the same id already exists, so the engine can re-fetch
	// the winner of a concurrent create race.
	Create(ctx context.Context, session *ChatSession) error
	FindBySessionID(ctx context.Context, sessionID string) (*ChatSession, error)
	Save(ctx context.Context, session *ChatSession) error
	// FindActiveSupport returns the most recently created non-terminal
	// support session the user participates in, or nil.
	FindActiveSupport(ctx context.Context, userID uuid.UUID) (*ChatSession, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID, status SessionStatus) ([]ChatSession, error)
	List(ctx context.Context, filter SessionFilter, limit, offset int) ([]ChatSession, int, error)
	// CountActiveByAssignee returns, per agent id, how many non-terminal
	// sessions are assigned to it. Agents with none are absent from the map.
	CountActiveByAssignee(ctx context.Context, agentIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

// MessageType distinguishes user text from engine-generated messages.
type MessageType string

const (
	MessageText   MessageType = "text"
	MessageSystem MessageType = "system"
	MessageBot    MessageType = "bot"
)

// ValidMessageType reports whether t is a known message type.
func ValidMessageType(t MessageType) bool {
	return t == MessageText || t == MessageSystem || t == MessageBot
}

// MaxMessageLength bounds a chat message, in characters, after trimming.
const MaxMessageLength = 2000

// ReadReceipt records that a user has read a message.
type ReadReceipt struct {
	UserID uuid.UUID `json:"user_id"`
	ReadAt time.Time `json:"read_at"`
}

// ChatMessage is one durable entry in a session's message log.
type ChatMessage struct {
	ID          uuid.UUID     `json:"id"`
	SessionID   string        `json:"session_id"`
	Sender      uuid.UUID     `json:"sender"`
	SenderRole  string        `json:"sender_role"`
	Message     string        `json:"message"`
	MessageType MessageType   `json:"message_type"`
	Timestamp   time.Time     `json:"timestamp"`
	IsRead      bool          `json:"is_read"`
	ReadBy      []ReadReceipt `json:"read_by,omitempty"`
}

// ChatMessageRepository is the append-only message store.
type ChatMessageRepository interface {
	Append(ctx context.Context, msg *ChatMessage) error
	ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]ChatMessage, error)
	CountBySession(ctx context.Context, sessionID string) (int, error)
	// MarkRead marks all unread messages in the session not sent by userID
	// as read and records the receipt. Already-read messages are untouched,
	// which makes the operation idempotent.
	MarkRead(ctx context.Context, sessionID string, userID uuid.UUID, readAt time.Time) error
	// CountUnread counts unread messages in the session sent by anyone
	// other than userID.
	CountUnread(ctx context.Context, sessionID string, userID uuid.UUID) (int, error)
	// PurgeOlderThan deletes messages older than the cutoff and returns how
	// many were removed. Session records are never touched.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
