package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	redisrepo "github.com/salestrack/backend/internal/repository/redis"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Client is one connected websocket. A user may hold several clients at
// once (multiple tabs); each is tracked independently.
type Client struct {
	ID     string
	UserID uuid.UUID
	Name   string
	Role   string

	conn *websocket.Conn
	hub  *Hub
	send chan Envelope
	// rooms is the hub's view of the client's subscriptions; mutated only
	// by the hub loop.
	rooms map[string]struct{}

	// joined mirrors rooms for the read goroutine's presence cleanup.
	mu     sync.Mutex
	joined map[string]struct{}

	presence *redisrepo.Presence
}

// NewClient wraps an upgraded websocket connection and registers it with
// the hub. The caller must start Serve.
func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, name, role string, presence *redisrepo.Presence) *Client {
	c := &Client{
		ID:       uuid.New().String(),
		UserID:   userID,
		Name:     name,
		Role:     role,
		conn:     conn,
		hub:      hub,
		send:     make(chan Envelope, 256),
		rooms:    make(map[string]struct{}),
		joined:   make(map[string]struct{}),
		presence: presence,
	}
	hub.register <- c
	return c
}

// inbound is a frame received from the socket.
type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Serve starts the write pump and then reads until the connection drops.
func (c *Client) Serve(ctx context.Context) {
	go c.writePump(ctx)
	c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
		if c.presence != nil {
			c.mu.Lock()
			sessions := make([]string, 0, len(c.joined))
			for sessionID := range c.joined {
				sessions = append(sessions, sessionID)
			}
			c.mu.Unlock()
			for _, sessionID := range sessions {
				_ = c.presence.Leave(context.Background(), sessionID, c.UserID)
			}
		}
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame inbound
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug().Err(err).Str("client_id", c.ID).Msg("websocket closed")
			}
			return
		}
		c.handle(ctx, frame)
	}
}

func (c *Client) handle(ctx context.Context, frame inbound) {
	switch frame.Type {
	case "join-chat":
		var sessionID string
		if err := json.Unmarshal(frame.Payload, &sessionID); err != nil || sessionID == "" {
			return
		}
		c.hub.join <- subscription{client: c, sessionID: sessionID}
		c.mu.Lock()
		c.joined[sessionID] = struct{}{}
		c.mu.Unlock()
		if c.presence != nil {
			_ = c.presence.Join(ctx, sessionID, redisrepo.OnlineUser{UserID: c.UserID, Name: c.Name, Role: c.Role})
		}

	case "leave-chat":
		var sessionID string
		if err := json.Unmarshal(frame.Payload, &sessionID); err != nil || sessionID == "" {
			return
		}
		c.hub.leave <- subscription{client: c, sessionID: sessionID}
		c.mu.Lock()
		delete(c.joined, sessionID)
		c.mu.Unlock()
		if c.presence != nil {
			_ = c.presence.Leave(ctx, sessionID, c.UserID)
		}

	case "typing":
		var p struct {
			SessionID string `json:"session_id"`
			IsTyping  bool   `json:"is_typing"`
		}
		if err := json.Unmarshal(frame.Payload, &p); err != nil || p.SessionID == "" {
			return
		}
		c.hub.emitRoomExcept(p.SessionID, c.ID, EventTyping, map[string]any{
			"user_id":   c.UserID,
			"name":      c.Name,
			"is_typing": p.IsTyping,
		})
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case envelope, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(envelope); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
