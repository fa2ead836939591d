package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salestrack/backend/internal/domain"
)

// ReferralRepository implements domain.ReferralRepository
type ReferralRepository struct {
	pool *pgxpool.Pool
}

// NewReferralRepository creates a new referral repository
func NewReferralRepository(db *DB) *ReferralRepository {
	return &ReferralRepository{pool: db.Pool}
}

func (r *ReferralRepository) Create(ctx context.Context, referral *domain.Referral) error {
	query := `
		INSERT INTO referrals (id, salesperson_id, customer_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		referral.ID,
		referral.SalespersonID,
		referral.CustomerID,
		referral.Status,
		referral.CreatedAt,
		referral.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create referral: %w", err)
	}
	return nil
}

func (r *ReferralRepository) ListBySalesperson(ctx context.Context, salespersonID uuid.UUID) ([]domain.Referral, error) {
	query := `
		SELECT id, salesperson_id, customer_id, status, created_at, updated_at
		FROM referrals
		WHERE salesperson_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, salespersonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	defer rows.Close()

	var referrals []domain.Referral
	for rows.Next() {
		var ref domain.Referral
		if err := rows.Scan(
			&ref.ID,
			&ref.SalespersonID,
			&ref.CustomerID,
			&ref.Status,
			&ref.CreatedAt,
			&ref.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan referral: %w", err)
		}
		referrals = append(referrals, ref)
	}
	return referrals, rows.Err()
}

func (r *ReferralRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReferralStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE referrals SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update referral status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
