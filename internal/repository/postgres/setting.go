package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salestrack/backend/internal/domain"
)

// SettingRepository implements domain.SettingRepository
type SettingRepository struct {
	pool *pgxpool.Pool
}

// NewSettingRepository creates a new setting repository
func NewSettingRepository(db *DB) *SettingRepository {
	return &SettingRepository{pool: db.Pool}
}

func (r *SettingRepository) Get(ctx context.Context, key string) (*domain.Setting, error) {
	query := `SELECT key, value, updated_at FROM settings WHERE key = $1`
	var s domain.Setting
	var value []byte
	err := r.pool.QueryRow(ctx, query, key).Scan(&s.Key, &value, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	s.Value = json.RawMessage(value)
	return &s, nil
}

func (r *SettingRepository) Upsert(ctx context.Context, key string, value json.RawMessage) (*domain.Setting, error) {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING key, value, updated_at
	`
	var s domain.Setting
	var stored []byte
	if err := r.pool.QueryRow(ctx, query, key, []byte(value)).Scan(&s.Key, &stored, &s.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to upsert setting: %w", err)
	}
	s.Value = json.RawMessage(stored)
	return &s, nil
}
