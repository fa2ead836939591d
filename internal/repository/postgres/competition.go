package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salestrack/backend/internal/domain"
)

// CompetitionRepository implements domain.CompetitionRepository
type CompetitionRepository struct {
	pool *pgxpool.Pool
}

// NewCompetitionRepository creates a new competition repository
func NewCompetitionRepository(db *DB) *CompetitionRepository {
	return &CompetitionRepository{pool: db.Pool}
}

func (r *CompetitionRepository) Create(ctx context.Context, competition *domain.Competition) error {
	query := `
		INSERT INTO competitions (id, title, prize, start_date, end_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		competition.ID,
		competition.Title,
		competition.Prize,
		competition.StartDate,
		competition.EndDate,
		competition.Status,
		competition.CreatedAt,
		competition.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create competition: %w", err)
	}
	return nil
}

func (r *CompetitionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Competition, error) {
	query := `
		SELECT id, title, prize, start_date, end_date, status, created_at, updated_at
		FROM competitions
		WHERE id = $1
	`
	var c domain.Competition
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Title,
		&c.Prize,
		&c.StartDate,
		&c.EndDate,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}
	return &c, nil
}

func (r *CompetitionRepository) List(ctx context.Context) ([]domain.Competition, error) {
	query := `
		SELECT id, title, prize, start_date, end_date, status, created_at, updated_at
		FROM competitions
		ORDER BY start_date DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}
	defer rows.Close()

	var competitions []domain.Competition
	for rows.Next() {
		var c domain.Competition
		if err := rows.Scan(
			&c.ID,
			&c.Title,
			&c.Prize,
			&c.StartDate,
			&c.EndDate,
			&c.Status,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan competition: %w", err)
		}
		competitions = append(competitions, c)
	}
	return competitions, rows.Err()
}

func (r *CompetitionRepository) Update(ctx context.Context, competition *domain.Competition) error {
	query := `
		UPDATE competitions
		SET title = $1, prize = $2, start_date = $3, end_date = $4, status = $5, updated_at = $6
		WHERE id = $7
	`
	tag, err := r.pool.Exec(ctx, query,
		competition.Title,
		competition.Prize,
		competition.StartDate,
		competition.EndDate,
		competition.Status,
		competition.UpdatedAt,
		competition.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update competition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CompetitionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM competitions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete competition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
