package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salestrack/backend/internal/api/response"
	redisrepo "github.com/salestrack/backend/internal/repository/redis"
)

// PresenceLister reports who is connected to a session's room.
type PresenceLister interface {
	List(ctx context.Context, sessionID string) ([]redisrepo.OnlineUser, error)
}

// PresenceHandler serves the online participant list for a session.
type PresenceHandler struct {
	lister PresenceLister
}

// NewPresenceHandler creates a new presence handler
func NewPresenceHandler(lister PresenceLister) *PresenceHandler {
	return &PresenceHandler{lister: lister}
}

// Online handles GET /chat/{sessionID}/online
func (h *PresenceHandler) Online(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		response.BadRequest(w, "session id is required")
		return
	}

	users, err := h.lister.List(r.Context(), sessionID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, map[string]any{"online": users})
}
