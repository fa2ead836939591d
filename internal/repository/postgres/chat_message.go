package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salestrack/backend/internal/domain"
)

// ChatMessageRepository implements domain.ChatMessageRepository
type ChatMessageRepository struct {
	pool *pgxpool.Pool
}

// NewChatMessageRepository creates a new chat message repository
func NewChatMessageRepository(db *DB) *ChatMessageRepository {
	return &ChatMessageRepository{pool: db.Pool}
}

func (r *ChatMessageRepository) Append(ctx context.Context, msg *domain.ChatMessage) error {
	readBy, err := json.Marshal(msg.ReadBy)
	if err != nil {
		return fmt.Errorf("failed to marshal read receipts: %w", err)
	}

	query := `
		INSERT INTO chat_messages (id, session_id, sender, sender_role, message, message_type, timestamp, is_read, read_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.pool.Exec(ctx, query,
		msg.ID,
		msg.SessionID,
		msg.Sender,
		msg.SenderRole,
		msg.Message,
		msg.MessageType,
		msg.Timestamp,
		msg.IsRead,
		readBy,
	)
	if err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}
	return nil
}

func (r *ChatMessageRepository) ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]domain.ChatMessage, error) {
	query := `
		SELECT id, session_id, sender, sender_role, message, message_type, timestamp, is_read, read_by
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY timestamp ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, sessionID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		var readBy []byte
		if err := rows.Scan(
			&m.ID,
			&m.SessionID,
			&m.Sender,
			&m.SenderRole,
			&m.Message,
			&m.MessageType,
			&m.Timestamp,
			&m.IsRead,
			&readBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		if len(readBy) > 0 {
			if err := json.Unmarshal(readBy, &m.ReadBy); err != nil {
				return nil, fmt.Errorf("failed to unmarshal read receipts: %w", err)
			}
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *ChatMessageRepository) CountBySession(ctx context.Context, sessionID string) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chat_messages WHERE session_id = $1`, sessionID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count chat messages: %w", err)
	}
	return total, nil
}

func (r *ChatMessageRepository) MarkRead(ctx context.Context, sessionID string, userID uuid.UUID, readAt time.Time) error {
	// Only unread messages from other senders are touched, so running this
	// twice is a no-op the second time.
	receipt, err := json.Marshal(domain.ReadReceipt{UserID: userID, ReadAt: readAt})
	if err != nil {
		return fmt.Errorf("failed to marshal read receipt: %w", err)
	}

	query := `
		UPDATE chat_messages
		SET is_read = TRUE, read_by = read_by || $1::jsonb
		WHERE session_id = $2 AND sender <> $3 AND is_read = FALSE
	`
	if _, err := r.pool.Exec(ctx, query, receipt, sessionID, userID); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

func (r *ChatMessageRepository) CountUnread(ctx context.Context, sessionID string, userID uuid.UUID) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM chat_messages WHERE session_id = $1 AND sender <> $2 AND is_read = FALSE`
	if err := r.pool.QueryRow(ctx, query, sessionID, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return n, nil
}

func (r *ChatMessageRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM chat_messages WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge chat messages: %w", err)
	}
	return tag.RowsAffected(), nil
}
