package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/salestrack/backend/internal/api/middleware"
	"github.com/salestrack/backend/internal/api/response"
	"github.com/salestrack/backend/internal/domain"
	"github.com/salestrack/backend/internal/realtime"
	redisrepo "github.com/salestrack/backend/internal/repository/redis"
)

// WSHandler upgrades authenticated requests to realtime connections.
type WSHandler struct {
	hub      *realtime.Hub
	userRepo domain.UserRepository
	presence *redisrepo.Presence
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewWSHandler creates a new websocket handler
func NewWSHandler(hub *realtime.Hub, userRepo domain.UserRepository, presence *redisrepo.Presence, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:      hub,
		userRepo: userRepo,
		presence: presence,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin enforcement is handled by the CORS layer in front.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Connect upgrades the request and serves the socket until it drops.
func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.Unauthorized(w, "account not found")
			return
		}
		response.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := realtime.NewClient(h.hub, conn, user.ID, user.FullName(), string(user.Role), h.presence)
	h.logger.Debug().Str("user_id", user.ID.String()).Msg("websocket connected")
	client.Serve(r.Context())
}
