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

// SaleRepository implements domain.SaleRepository
type SaleRepository struct {
	pool *pgxpool.Pool
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *DB) *SaleRepository {
	return &SaleRepository{pool: db.Pool}
}

const saleColumns = `id, user_id, product_id, receiver_email, quantity, price_per_unit_at_sale, total_amount, sale_date, created_at`

func (r *SaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		sale.ID,
		sale.UserID,
		sale.ProductID,
		sale.ReceiverEmail,
		sale.Quantity,
		sale.PricePerUnit,
		sale.TotalAmount,
		sale.SaleDate,
		sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}
	return nil
}

func (r *SaleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	var s domain.Sale
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.UserID,
		&s.ProductID,
		&s.ReceiverEmail,
		&s.Quantity,
		&s.PricePerUnit,
		&s.TotalAmount,
		&s.SaleDate,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	return &s, nil
}

func (r *SaleRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE user_id = $1 ORDER BY sale_date DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales by user: %w", err)
	}
	defer rows.Close()

	return collectSales(rows)
}

func (r *SaleRepository) List(ctx context.Context, limit, offset int) ([]domain.Sale, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sales: %w", err)
	}

	query := `SELECT ` + saleColumns + ` FROM sales ORDER BY sale_date DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	sales, err := collectSales(rows)
	if err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

func collectSales(rows pgx.Rows) ([]domain.Sale, error) {
	var sales []domain.Sale
	for rows.Next() {
		var s domain.Sale
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.ProductID,
			&s.ReceiverEmail,
			&s.Quantity,
			&s.PricePerUnit,
			&s.TotalAmount,
			&s.SaleDate,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}
