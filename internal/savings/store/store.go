package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	query := `
		INSERT INTO savings (user_id, total_saved, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET total_saved = savings.total_saved + EXCLUDED.total_saved, updated_at = NOW()
		RETURNING total_saved
	`

	var total int64
	if err := s.db.QueryRowContext(ctx, query, userID, amount).Scan(&total); err != nil {
		return 0, fmt.Errorf("crediting savings: %w", err)
	}

	return total, nil
}

func (s *Store) GetTotal(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT total_saved FROM savings WHERE user_id = $1`

	var total int64

	err := s.db.QueryRowContext(ctx, query, userID).Scan(&total)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}

		return 0, fmt.Errorf("getting savings total: %w", err)
	}

	return total, nil
}
