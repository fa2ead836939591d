package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const presenceTTL = 24 * time.Hour

// OnlineUser is a connected participant as shown in a room's presence list.
type OnlineUser struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Role   string    `json:"role"`
}

// Presence tracks which users are connected to each chat session room.
// It is advisory state for the UI and expires on its own; the session
// directory remains the source of truth.
type Presence struct {
	client *Client
}

// NewPresence creates a new presence tracker
func NewPresence(client *Client) *Presence {
	return &Presence{client: client}
}

func presenceKey(sessionID string) string {
	return fmt.Sprintf("chat:room:%s:online", sessionID)
}

// Join records a user as online in the session room.
func (p *Presence) Join(ctx context.Context, sessionID string, user OnlineUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal presence entry: %w", err)
	}

	key := presenceKey(sessionID)
	if err := p.client.rdb.HSet(ctx, key, user.UserID.String(), data).Err(); err != nil {
		return fmt.Errorf("failed to record presence: %w", err)
	}
	return p.client.rdb.Expire(ctx, key, presenceTTL).Err()
}

// Leave removes a user from the session room's presence list.
func (p *Presence) Leave(ctx context.Context, sessionID string, userID uuid.UUID) error {
	if err := p.client.rdb.HDel(ctx, presenceKey(sessionID), userID.String()).Err(); err != nil {
		return fmt.Errorf("failed to remove presence: %w", err)
	}
	return nil
}

// List returns all users currently online in the session room.
func (p *Presence) List(ctx context.Context, sessionID string) ([]OnlineUser, error) {
	result, err := p.client.rdb.HGetAll(ctx, presenceKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list presence: %w", err)
	}

	users := make([]OnlineUser, 0, len(result))
	for _, data := range result {
		var u OnlineUser
		if err := json.Unmarshal([]byte(data), &u); err != nil {
			continue
		}
		users = append(users, u)
	}
	return users, nil
}
