package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/salestrack/backend/internal/api/middleware"
	"github.com/salestrack/backend/internal/api/response"
	"github.com/salestrack/backend/internal/domain"
	"github.com/salestrack/backend/internal/service"
)

// ChatHandler exposes the chat session lifecycle over HTTP.
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// CreateSession opens or returns a chat session. With "is_support": true
// the target user is picked by the load balancer; otherwise "user_id"
// names the other participant.
func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input struct {
		UserID    *uuid.UUID `json:"user_id"`
		IsSupport bool       `json:"is_support"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	session, err := h.chatService.CreateOrGetSession(r.Context(), principal, input.UserID, input.IsSupport)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, session)
}

// SendMessage appends a message to a session
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input struct {
		SessionID   string             `json:"session_id"`
		Message     string             `json:"message"`
		MessageType domain.MessageType `json:"message_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	msg, session, err := h.chatService.SendMessage(r.Context(), principal, input.SessionID, input.Message, input.MessageType)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, map[string]any{
		"message":      msg,
		"chat_session": session,
	})
}

// ListMessages returns a page of a session's message log
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	page, limit := pagination(r)

	messages, total, err := h.chatService.ListMessages(r.Context(), principal, sessionID, page, limit)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, map[string]any{
		"messages": messages,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// ListUserSessions returns the caller's sessions
func (h *ChatHandler) ListUserSessions(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	status := domain.SessionStatus(r.URL.Query().Get("status"))
	sessions, err := h.chatService.ListUserSessions(r.Context(), principal, status)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, map[string]any{"sessions": sessions})
}

// ActiveSupportSession returns the caller's current support session, if any
func (h *ChatHandler) ActiveSupportSession(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	session, err := h.chatService.ActiveSupportSession(r.Context(), principal)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, map[string]any{"session": session})
}

// ListAllSessions is the administrative session browser
func (h *ChatHandler) ListAllSessions(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	page, limit := pagination(r)
	status := domain.SessionStatus(r.URL.Query().Get("status"))
	assigned := r.URL.Query().Get("assigned")

	sessions, total, err := h.chatService.ListAllSessions(r.Context(), principal, status, assigned, page, limit)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, map[string]any{
		"sessions": sessions,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// Assign sets or clears the session's handling agent. A null or absent
// "agent_id" unassigns.
func (h *ChatHandler) Assign(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input struct {
		AgentID *uuid.UUID `json:"agent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	session, err := h.chatService.AssignChat(r.Context(), principal, chi.URLParam(r, "sessionID"), input.AgentID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, session)
}

// Resolve marks a session resolved
func (h *ChatHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	session, err := h.chatService.ResolveChat(r.Context(), principal, chi.URLParam(r, "sessionID"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, session)
}

// Reopen moves a resolved session back to the active set
func (h *ChatHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	session, err := h.chatService.ReopenChat(r.Context(), principal, chi.URLParam(r, "sessionID"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, session)
}

// MarkRead marks the session's messages as read for the caller
func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if err := h.chatService.MarkRead(r.Context(), principal, chi.URLParam(r, "sessionID")); err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, map[string]string{"status": "read"})
}
