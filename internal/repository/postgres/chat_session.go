package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salestrack/backend/internal/domain"
)

const uniqueViolation = "23505"

// ChatSessionRepository implements domain.ChatSessionRepository
type ChatSessionRepository struct {
	pool *pgxpool.Pool
}

// NewChatSessionRepository creates a new chat session repository
func NewChatSessionRepository(db *DB) *ChatSessionRepository {
	return &ChatSessionRepository{pool: db.Pool}
}

const sessionColumns = `session_id, participants, status, priority, category, assigned_to, last_message_at, message_count, unread_count, created_at, updated_at`

func scanSession(row pgx.Row) (*domain.ChatSession, error) {
	var s domain.ChatSession
	var participants []byte
	err := row.Scan(
		&s.SessionID,
		&participants,
		&s.Status,
		&s.Priority,
		&s.Category,
		&s.AssignedTo,
		&s.LastMessageAt,
		&s.MessageCount,
		&s.UnreadCount,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(participants, &s.Participants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal participants: %w", err)
	}
	return &s, nil
}

func (r *ChatSessionRepository) Create(ctx context.Context, session *domain.ChatSession) error {
	participants, err := json.Marshal(session.Participants)
	if err != nil {
		return fmt.Errorf("failed to marshal participants: %w", err)
	}

	query := `
		INSERT INTO chat_sessions (session_id, participants, status, priority, category, assigned_to, last_message_at, message_count, unread_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.pool.Exec(ctx, query,
		session.SessionID,
		participants,
		session.Status,
		session.Priority,
		session.Category,
		session.AssignedTo,
		session.LastMessageAt,
		session.MessageCount,
		session.UnreadCount,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateSession
		}
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	return nil
}

func (r *ChatSessionRepository) FindBySessionID(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM chat_sessions WHERE session_id = $1`
	session, err := scanSession(r.pool.QueryRow(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find chat session: %w", err)
	}
	return session, nil
}

func (r *ChatSessionRepository) Save(ctx context.Context, session *domain.ChatSession) error {
	participants, err := json.Marshal(session.Participants)
	if err != nil {
		return fmt.Errorf("failed to marshal participants: %w", err)
	}

	query := `
		UPDATE chat_sessions
		SET participants = $1, status = $2, priority = $3, category = $4, assigned_to = $5,
		    last_message_at = $6, message_count = $7, unread_count = $8, updated_at = $9
		WHERE session_id = $10
	`
	tag, err := r.pool.Exec(ctx, query,
		participants,
		session.Status,
		session.Priority,
		session.Category,
		session.AssignedTo,
		session.LastMessageAt,
		session.MessageCount,
		session.UnreadCount,
		session.UpdatedAt,
		session.SessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to save chat session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ChatSessionRepository) FindActiveSupport(ctx context.Context, userID uuid.UUID) (*domain.ChatSession, error) {
	// Most recent first: when the accepted concurrent-create race produced
	// duplicates, callers get the newest one.
	query := `
		SELECT ` + sessionColumns + `
		FROM chat_sessions
		WHERE category = 'support'
		  AND status = ANY($1)
		  AND participants @> $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	member, err := json.Marshal([]map[string]string{{"user_id": userID.String()}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal participant filter: %w", err)
	}

	session, err := scanSession(r.pool.QueryRow(ctx, query, activeStatusStrings(), member))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active support session: %w", err)
	}
	return session, nil
}

func (r *ChatSessionRepository) ListByParticipant(ctx context.Context, userID uuid.UUID, status domain.SessionStatus) ([]domain.ChatSession, error) {
	member, err := json.Marshal([]map[string]string{{"user_id": userID.String()}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal participant filter: %w", err)
	}

	query := `
		SELECT ` + sessionColumns + `
		FROM chat_sessions
		WHERE participants @> $1
	`
	args := []any{member}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY last_message_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions by participant: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

func (r *ChatSessionRepository) List(ctx context.Context, filter domain.SessionFilter, limit, offset int) ([]domain.ChatSession, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		where += fmt.Sprintf(` AND assigned_to = $%d`, len(args))
	} else if filter.Unassigned {
		where += ` AND assigned_to IS NULL`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chat_sessions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count chat sessions: %w", err)
	}

	args = append(args, limit, offset)
	query := `SELECT ` + sessionColumns + ` FROM chat_sessions` + where +
		fmt.Sprintf(` ORDER BY last_message_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list chat sessions: %w", err)
	}
	defer rows.Close()

	sessions, err := collectSessions(rows)
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (r *ChatSessionRepository) CountActiveByAssignee(ctx context.Context, agentIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	query := `
		SELECT assigned_to, COUNT(*)
		FROM chat_sessions
		WHERE assigned_to = ANY($1) AND status = ANY($2)
		GROUP BY assigned_to
	`
	rows, err := r.pool.Query(ctx, query, agentIDs, activeStatusStrings())
	if err != nil {
		return nil, fmt.Errorf("failed to count active sessions: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int, len(agentIDs))
	for rows.Next() {
		var id uuid.UUID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan session count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func activeStatusStrings() []string {
	out := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		out[i] = string(s)
	}
	return out
}

func collectSessions(rows pgx.Rows) ([]domain.ChatSession, error) {
	var sessions []domain.ChatSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}
