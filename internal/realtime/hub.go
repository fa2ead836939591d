package realtime

import (
	"context"

	"github.com/rs/zerolog"
)

// Event names pushed to connected sockets.
const (
	EventNewChat      = "new_chat"
	EventChatAssigned = "chat_assigned"
	EventChatResolved = "chat_resolved"
	EventChatReopened = "chat_reopened"
	EventNewMessage   = "new-message"
	EventTyping       = "user-typing"
)

// Envelope is the wire frame for every pushed event.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

type subscription struct {
	client    *Client
	sessionID string
}

type roomMessage struct {
	sessionID string // empty means broadcast to every connected client
	envelope  Envelope
	exceptID  string
}

// Hub owns the connection and subscription tables. Clients join and leave
// session rooms explicitly; there is no ambient registry outside the hub.
// Delivery is best-effort: a slow client is dropped rather than ever
// blocking the loop.
type Hub struct {
	clients map[string]*Client
	rooms   map[string]map[string]*Client

	register   chan *Client
	unregister chan *Client
	join       chan subscription
	leave      chan subscription
	messages   chan roomMessage

	logger zerolog.Logger
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		join:       make(chan subscription, 64),
		leave:      make(chan subscription, 64),
		messages:   make(chan roomMessage, 256),
		logger:     logger,
	}
}

// Run is the hub's dispatch loop. It owns all table mutation.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.clients[client.ID] = client

		case client := <-h.unregister:
			h.drop(client)

		case sub := <-h.join:
			room, ok := h.rooms[sub.sessionID]
			if !ok {
				room = make(map[string]*Client)
				h.rooms[sub.sessionID] = room
			}
			room[sub.client.ID] = sub.client
			sub.client.rooms[sub.sessionID] = struct{}{}

		case sub := <-h.leave:
			h.leaveRoom(sub.client, sub.sessionID)

		case msg := <-h.messages:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg roomMessage) {
	var targets map[string]*Client
	if msg.sessionID == "" {
		targets = h.clients
	} else {
		targets = h.rooms[msg.sessionID]
	}

	for id, client := range targets {
		if id == msg.exceptID {
			continue
		}
		select {
		case client.send <- msg.envelope:
		default:
			h.logger.Warn().Str("client_id", id).Msg("send buffer full, dropping client")
			h.drop(client)
		}
	}
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	for sessionID := range client.rooms {
		h.leaveRoom(client, sessionID)
	}
	close(client.send)
}

func (h *Hub) leaveRoom(client *Client, sessionID string) {
	delete(client.rooms, sessionID)
	room, ok := h.rooms[sessionID]
	if !ok {
		return
	}
	delete(room, client.ID)
	if len(room) == 0 {
		delete(h.rooms, sessionID)
	}
}

// Emit broadcasts an event to every connected client. It never blocks: if
// the hub's queue is full the event is lost, which is acceptable for
// best-effort fanout.
func (h *Hub) Emit(event string, payload any) {
	select {
	case h.messages <- roomMessage{envelope: Envelope{Event: event, Payload: payload}}:
	default:
		h.logger.Warn().Str("event", event).Msg("fanout queue full, event dropped")
	}
}

// EmitRoom pushes an event to clients subscribed to the session's room.
func (h *Hub) EmitRoom(sessionID, event string, payload any) {
	select {
	case h.messages <- roomMessage{sessionID: sessionID, envelope: Envelope{Event: event, Payload: payload}}:
	default:
		h.logger.Warn().Str("event", event).Str("session_id", sessionID).Msg("fanout queue full, event dropped")
	}
}

func (h *Hub) emitRoomExcept(sessionID, exceptID, event string, payload any) {
	select {
	case h.messages <- roomMessage{sessionID: sessionID, exceptID: exceptID, envelope: Envelope{Event: event, Payload: payload}}:
	default:
	}
}
