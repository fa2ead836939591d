package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/salestrack/backend/internal/apperr"
	"github.com/salestrack/backend/internal/domain"
	"github.com/salestrack/backend/internal/realtime"
)

// Broadcaster pushes events to connected realtime subscribers. Delivery is
// best-effort and never blocks the durable write path.
type Broadcaster interface {
	Emit(event string, payload any)
	EmitRoom(sessionID, event string, payload any)
}

// ChatService orchestrates the chat session lifecycle: creation and reuse,
// message admission, assignment, resolution and reopening. It is the only
// writer of session status, assignment and counters.
type ChatService struct {
	sessionRepo domain.ChatSessionRepository
	messageRepo domain.ChatMessageRepository
	userRepo    domain.UserRepository
	balancer    *Balancer
	broadcaster Broadcaster
	logger      zerolog.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	sessionRepo domain.ChatSessionRepository,
	messageRepo domain.ChatMessageRepository,
	userRepo domain.UserRepository,
	balancer *Balancer,
	broadcaster Broadcaster,
	logger zerolog.Logger,
) *ChatService {
	return &ChatService{
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		balancer:    balancer,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// CreateOrGetSession returns the session for the requested conversation,
// creating it when absent.
//
// Support requests from non-support users first reuse any non-terminal
// support session (idempotent). Otherwise a new session is created,
// auto-assigned to the least-loaded agent, with a timestamped id. Two
// rapid concurrent support requests can still race past the reuse check
// and each create a session; that window is accepted, and the active
// session lookup prefers the newest.
//
// Direct chats use a deterministic id derived from the sorted pair, so
// repeated calls return the same session. The loser of a concurrent
// duplicate insert re-fetches and returns the winner's record.
func (s *ChatService) CreateOrGetSession(ctx context.Context, principal domain.Principal, targetID *uuid.UUID, isSupport bool) (*domain.ChatSession, error) {
	if principal.UserID == uuid.Nil {
		return nil, apperr.E(apperr.Unauthenticated, "authentication required")
	}

	requester, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.E(apperr.Unauthenticated, "account not found")
		}
		return nil, apperr.Wrap("failed to load requester", err)
	}

	if isSupport {
		return s.createSupportSession(ctx, requester)
	}
	return s.createOrGetDirectSession(ctx, requester, targetID)
}

func (s *ChatService) createSupportSession(ctx context.Context, requester *domain.User) (*domain.ChatSession, error) {
	if !requester.Role.SupportCapable() {
		existing, err := s.sessionRepo.FindActiveSupport(ctx, requester.ID)
		if err != nil {
			return nil, apperr.Wrap("failed to check for active support session", err)
		}
		if existing != nil {
			s.logger.Debug().Str("session_id", existing.SessionID).Msg("reusing active support session")
			return existing, nil
		}
	}

	agent, err := s.balancer.PickLeastLoadedAgent(ctx)
	if err != nil {
		return nil, apperr.Wrap("failed to pick support agent", err)
	}
	if agent == nil {
		return nil, apperr.E(apperr.Unavailable, "no support agents available at the moment, please try again later")
	}

	now := time.Now()
	session := &domain.ChatSession{
		SessionID: domain.SupportSessionID(requester.ID, agent.ID, now),
		Participants: []domain.Participant{
			{UserID: requester.ID, Role: requester.Role, JoinedAt: now},
			{UserID: agent.ID, Role: agent.Role, JoinedAt: now},
		},
		Status:        domain.SessionAssigned,
		Priority:      domain.PriorityMedium,
		Category:      domain.CategorySupport,
		AssignedTo:    &agent.ID,
		LastMessageAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		if errors.Is(err, domain.ErrDuplicateSession) {
			return s.refetch(ctx, session.SessionID)
		}
		return nil, apperr.Wrap("failed to create support session", err)
	}

	s.appendSystemMessage(ctx, session.SessionID, agent.ID,
		fmt.Sprintf("Support chat started with %s.", agent.FullName()))

	s.broadcaster.Emit(realtime.EventNewChat, newChatPayload(session))
	s.logger.Info().
		Str("session_id", session.SessionID).
		Str("assigned_to", agent.ID.String()).
		Msg("support session created")
	return session, nil
}

func (s *ChatService) createOrGetDirectSession(ctx context.Context, requester *domain.User, targetID *uuid.UUID) (*domain.ChatSession, error) {
	if targetID == nil || *targetID == uuid.Nil {
		return nil, apperr.E(apperr.InvalidInput, "user id is required for direct chats")
	}
	if *targetID == requester.ID {
		return nil, apperr.E(apperr.InvalidInput, "cannot start a chat with yourself")
	}

	target, err := s.userRepo.GetByID(ctx, *targetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.E(apperr.NotFound, "user not found")
		}
		return nil, apperr.Wrap("failed to load target user", err)
	}

	sessionID := domain.DirectSessionID(requester.ID, target.ID)

	// Existing sessions are returned as-is, whatever their status.
	existing, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.Wrap("failed to look up session", err)
	}

	now := time.Now()
	session := &domain.ChatSession{
		SessionID: sessionID,
		Participants: []domain.Participant{
			{UserID: requester.ID, Role: requester.Role, JoinedAt: now},
			{UserID: target.ID, Role: target.Role, JoinedAt: now},
		},
		Status:        domain.SessionOpen,
		Priority:      domain.PriorityLow,
		Category:      domain.CategoryGeneral,
		LastMessageAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if requester.Role.SupportCapable() {
		// Agent-initiated chats are assigned to the initiator immediately.
		session.AssignedTo = &requester.ID
		session.Status = domain.SessionAssigned
	} else {
		session.Priority = domain.PriorityMedium
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		if errors.Is(err, domain.ErrDuplicateSession) {
			// Lost the race against a concurrent create for the same pair:
			// return the winner.
			return s.refetch(ctx, sessionID)
		}
		return nil, apperr.Wrap("failed to create session", err)
	}

	sender := requester.ID
	if session.AssignedTo != nil {
		sender = *session.AssignedTo
	}
	s.appendSystemMessage(ctx, sessionID, sender,
		fmt.Sprintf("Chat started between %s and %s.", requester.FullName(), target.FullName()))

	s.broadcaster.Emit(realtime.EventNewChat, newChatPayload(session))
	return session, nil
}

func (s *ChatService) refetch(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	session, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, apperr.Wrap("failed to fetch session after duplicate insert", err)
	}
	return session, nil
}

// SendMessage validates and appends a message, updates the session's
// rolling counters, and fans the message out to the session's room.
func (s *ChatService) SendMessage(ctx context.Context, principal domain.Principal, sessionID, text string, msgType domain.MessageType) (*domain.ChatMessage, *domain.ChatSession, error) {
	if sessionID == "" {
		return nil, nil, apperr.E(apperr.InvalidInput, "session id is required")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, apperr.E(apperr.InvalidInput, "message must be a non-empty string")
	}
	if utf8.RuneCountInString(text) > domain.MaxMessageLength {
		return nil, nil, apperr.E(apperr.InvalidInput, "message too long (maximum 2000 characters)")
	}
	if msgType == "" {
		msgType = domain.MessageText
	}
	if !domain.ValidMessageType(msgType) {
		return nil, nil, apperr.E(apperr.InvalidInput, "invalid message type")
	}

	session, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, apperr.E(apperr.NotFound, "chat session not found")
		}
		return nil, nil, apperr.Wrap("failed to look up session", err)
	}

	if session.Status == domain.SessionResolved || session.Status == domain.SessionClosed {
		return nil, nil, apperr.E(apperr.InvalidTransition, "cannot send messages to a resolved chat, please start a new chat")
	}

	// Participants, the assigned agent, and any support-capable account may
	// send. The broad support override is deliberate: any admin can step
	// into any chat.
	if !session.HasParticipant(principal.UserID) &&
		!session.IsAssignee(principal.UserID) &&
		!principal.Role.SupportCapable() {
		return nil, nil, apperr.E(apperr.Forbidden, "not authorized to send messages in this chat")
	}

	now := time.Now()
	msg := &domain.ChatMessage{
		ID:          uuid.New(),
		SessionID:   sessionID,
		Sender:      principal.UserID,
		SenderRole:  string(principal.Role),
		Message:     text,
		MessageType: msgType,
		Timestamp:   now,
	}
	if err := s.messageRepo.Append(ctx, msg); err != nil {
		return nil, nil, apperr.Wrap("failed to store message", err)
	}

	// Unread bookkeeping is an approximation: the counter grows by the
	// number of other participants per message rather than tracking true
	// per-recipient counts. Kept as-is.
	others := 0
	for _, p := range session.Participants {
		if p.UserID != principal.UserID {
			others++
		}
	}
	session.LastMessageAt = now
	session.MessageCount++
	session.UnreadCount += others
	session.UpdatedAt = now

	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, nil, apperr.Wrap("failed to update session counters", err)
	}

	s.broadcaster.EmitRoom(sessionID, realtime.EventNewMessage, map[string]any{
		"message": msg,
		"chat_session": map[string]any{
			"session_id":      session.SessionID,
			"last_message_at": session.LastMessageAt,
			"unread_count":    session.UnreadCount,
		},
	})

	return msg, session, nil
}

// AssignChat sets or clears a session's handling agent. Assigning an agent
// to an open or reopened session moves it to assigned; unassigning reverts
// it to open.
func (s *ChatService) AssignChat(ctx context.Context, principal domain.Principal, sessionID string, agentID *uuid.UUID) (*domain.ChatSession, error) {
	if !principal.Role.SupportCapable() {
		return nil, apperr.E(apperr.Forbidden, "not authorized to assign chats")
	}

	session, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.E(apperr.NotFound, "chat session not found")
		}
		return nil, apperr.Wrap("failed to look up session", err)
	}

	now := time.Now()
	if agentID != nil {
		agent, err := s.userRepo.GetByID(ctx, *agentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, apperr.E(apperr.InvalidInput, "invalid agent id")
			}
			return nil, apperr.Wrap("failed to load agent", err)
		}
		if !agent.Role.SupportCapable() {
			return nil, apperr.E(apperr.InvalidInput, "invalid agent id")
		}

		session.AssignedTo = agentID
		if session.Status == domain.SessionOpen || session.Status == domain.SessionReopened {
			session.Status = domain.SessionAssigned
			s.appendSystemMessage(ctx, sessionID, agent.ID,
				fmt.Sprintf("%s has been assigned to this chat.", agent.FullName()))
		}
	} else {
		session.AssignedTo = nil
		session.Status = domain.SessionOpen
	}
	session.UpdatedAt = now

	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, apperr.Wrap("failed to save assignment", err)
	}

	s.broadcaster.Emit(realtime.EventChatAssigned, map[string]any{
		"session_id":   session.SessionID,
		"assigned_to":  session.AssignedTo,
		"chat_session": session,
	})
	return session, nil
}

// ResolveChat marks the session resolved. Resolved sessions are read-only
// until reopened.
func (s *ChatService) ResolveChat(ctx context.Context, principal domain.Principal, sessionID string) (*domain.ChatSession, error) {
	if !principal.Role.SupportCapable() {
		return nil, apperr.E(apperr.Forbidden, "not authorized to resolve chats")
	}

	session, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.E(apperr.NotFound, "chat session not found")
		}
		return nil, apperr.Wrap("failed to look up session", err)
	}

	if session.Status == domain.SessionResolved {
		return nil, apperr.E(apperr.InvalidTransition, "chat is already resolved")
	}

	session.Status = domain.SessionResolved
	session.UpdatedAt = time.Now()
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, apperr.Wrap("failed to resolve session", err)
	}

	actorName := s.actorName(ctx, principal.UserID)
	s.appendSystemMessage(ctx, sessionID, principal.UserID,
		fmt.Sprintf("Chat resolved by %s.", actorName))

	s.broadcaster.Emit(realtime.EventChatResolved, map[string]any{
		"session_id":   session.SessionID,
		"chat_session": session,
	})
	return session, nil
}

// ReopenChat moves a resolved session back into the active set. Only
// resolved sessions can be reopened.
func (s *ChatService) ReopenChat(ctx context.Context, principal domain.Principal, sessionID string) (*domain.ChatSession, error) {
	if !principal.Role.SupportCapable() {
		return nil, apperr.E(apperr.Forbidden, "not authorized to reopen chats")
	}

	session, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.E(apperr.NotFound, "chat session not found")
		}
		return nil, apperr.Wrap("failed to look up session", err)
	}

	if session.Status != domain.SessionResolved {
		return nil, apperr.E(apperr.InvalidTransition, "only resolved chats can be reopened")
	}

	session.Status = domain.SessionReopened
	session.UpdatedAt = time.Now()
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, apperr.Wrap("failed to reopen session", err)
	}

	actorName := s.actorName(ctx, principal.UserID)
	s.appendSystemMessage(ctx, sessionID, principal.UserID,
		fmt.Sprintf("Chat reopened by %s.", actorName))

	s.broadcaster.Emit(realtime.EventChatReopened, map[string]any{
		"session_id":   session.SessionID,
		"chat_session": session,
	})
	return session, nil
}

// MarkRead marks all messages from other senders as read for the caller
// and recomputes the session's unread counter. Safe to call repeatedly.
func (s *ChatService) MarkRead(ctx context.Context, principal domain.Principal, sessionID string) error {
	session, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperr.E(apperr.NotFound, "chat session not found")
		}
		return apperr.Wrap("failed to look up session", err)
	}

	if !session.HasParticipant(principal.UserID) {
		return apperr.E(apperr.Forbidden, "not authorized to mark messages as read in this chat")
	}

	if err := s.messageRepo.MarkRead(ctx, sessionID, principal.UserID, time.Now()); err != nil {
		return apperr.Wrap("failed to mark messages read", err)
	}

	unread, err := s.messageRepo.CountUnread(ctx, sessionID, principal.UserID)
	if err != nil {
		return apperr.Wrap("failed to recount unread messages", err)
	}

	session.UnreadCount = unread
	session.UpdatedAt = time.Now()
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return apperr.Wrap("failed to save unread counter", err)
	}
	return nil
}

// ListMessages returns a page of the session's message log.
func (s *ChatService) ListMessages(ctx context.Context, principal domain.Principal, sessionID string, page, limit int) ([]domain.ChatMessage, int, error) {
	if page < 1 || limit < 1 || limit > 100 {
		return nil, 0, apperr.E(apperr.InvalidInput, "invalid pagination parameters")
	}

	session, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, apperr.E(apperr.NotFound, "chat session not found")
		}
		return nil, 0, apperr.Wrap("failed to look up session", err)
	}

	if !session.HasParticipant(principal.UserID) && !principal.Role.SupportCapable() {
		return nil, 0, apperr.E(apperr.Forbidden, "not authorized to view this chat")
	}

	messages, err := s.messageRepo.ListBySession(ctx, sessionID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, apperr.Wrap("failed to list messages", err)
	}
	total, err := s.messageRepo.CountBySession(ctx, sessionID)
	if err != nil {
		return nil, 0, apperr.Wrap("failed to count messages", err)
	}
	return messages, total, nil
}

// ListUserSessions returns the caller's sessions, optionally filtered by
// status.
func (s *ChatService) ListUserSessions(ctx context.Context, principal domain.Principal, status domain.SessionStatus) ([]domain.ChatSession, error) {
	if status != "" && !domain.ValidSessionStatus(status) {
		return nil, apperr.E(apperr.InvalidInput, "invalid session status")
	}
	sessions, err := s.sessionRepo.ListByParticipant(ctx, principal.UserID, status)
	if err != nil {
		return nil, apperr.Wrap("failed to list sessions", err)
	}
	return sessions, nil
}

// ActiveSupportSession returns the caller's current non-terminal support
// session, or nil when there is none. Used by clients to restore an
// in-progress support conversation.
func (s *ChatService) ActiveSupportSession(ctx context.Context, principal domain.Principal) (*domain.ChatSession, error) {
	session, err := s.sessionRepo.FindActiveSupport(ctx, principal.UserID)
	if err != nil {
		return nil, apperr.Wrap("failed to find active support session", err)
	}
	return session, nil
}

// ListAllSessions is the administrative browse over every session.
func (s *ChatService) ListAllSessions(ctx context.Context, principal domain.Principal, status domain.SessionStatus, assigned string, page, limit int) ([]domain.ChatSession, int, error) {
	if !principal.Role.SupportCapable() {
		return nil, 0, apperr.E(apperr.Forbidden, "not authorized")
	}
	if page < 1 || limit < 1 || limit > 100 {
		return nil, 0, apperr.E(apperr.InvalidInput, "invalid pagination parameters")
	}
	if status != "" && !domain.ValidSessionStatus(status) {
		return nil, 0, apperr.E(apperr.InvalidInput, "invalid session status")
	}

	filter := domain.SessionFilter{Status: status}
	switch assigned {
	case "me":
		id := principal.UserID
		filter.AssignedTo = &id
	case "unassigned":
		filter.Unassigned = true
	}

	sessions, total, err := s.sessionRepo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, apperr.Wrap("failed to list sessions", err)
	}
	return sessions, total, nil
}

// PurgeExpiredMessages deletes messages past the retention horizon.
// Session records are untouched, so conversation continuity survives the
// purge.
func (s *ChatService) PurgeExpiredMessages(ctx context.Context, retention time.Duration) (int64, error) {
	purged, err := s.messageRepo.PurgeOlderThan(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, apperr.Wrap("failed to purge expired messages", err)
	}
	return purged, nil
}

// StartJanitor runs the retention purge on a fixed interval until the
// context is cancelled.
func (s *ChatService) StartJanitor(ctx context.Context, interval, retention time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purged, err := s.PurgeExpiredMessages(ctx, retention)
				if err != nil {
					s.logger.Error().Err(err).Msg("message retention purge failed")
					continue
				}
				if purged > 0 {
					s.logger.Info().Int64("purged", purged).Msg("expired chat messages removed")
				}
			}
		}
	}()
}

// appendSystemMessage records an engine-generated message. Failures are
// logged and swallowed: system messages are informational and must not
// fail the operation that produced them.
func (s *ChatService) appendSystemMessage(ctx context.Context, sessionID string, sender uuid.UUID, text string) {
	msg := &domain.ChatMessage{
		ID:          uuid.New(),
		SessionID:   sessionID,
		Sender:      sender,
		SenderRole:  "system",
		Message:     text,
		MessageType: domain.MessageSystem,
		Timestamp:   time.Now(),
	}
	if err := s.messageRepo.Append(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to store system message")
	}
}

func (s *ChatService) actorName(ctx context.Context, userID uuid.UUID) string {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "an administrator"
	}
	return user.FullName()
}

func newChatPayload(session *domain.ChatSession) map[string]any {
	participants := make([]uuid.UUID, len(session.Participants))
	for i, p := range session.Participants {
		participants[i] = p.UserID
	}
	return map[string]any{
		"chat_session": session,
		"participants": participants,
	}
}
