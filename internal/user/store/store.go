package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spendsense/spendsense/internal/user"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const uniqueViolation = "23505"

func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (email, name, password_hash, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, u.Email, u.Name, u.PasswordHash).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrEmailTaken
		}

		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}

func scanUser(row *sql.Row) (*user.User, error) {
	var u user.User

	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrNotFound
		}

		return nil, fmt.Errorf("scanning user: %w", err)
	}

	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT id, email, name, password_hash, created_at FROM users WHERE id = $1`

	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT id, email, name, password_hash, created_at FROM users WHERE email = $1`

	return scanUser(s.db.QueryRowContext(ctx, query, email))
}

// DeleteUserData removes the user, their owned groups and every row hanging
// off either, inside one transaction.
func (s *Store) DeleteUserData(ctx context.Context, id uuid.UUID) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Posts going away: authored by the user, or living in a group the user owns.
	const doomedPosts = `
		SELECT id FROM posts
		WHERE user_id = $1
		   OR group_id IN (SELECT id FROM groups WHERE owner_id = $1)
	`

	rows, err := tx.QueryContext(ctx, `
		SELECT image_path FROM posts
		WHERE image_path IS NOT NULL AND id IN (`+doomedPosts+`)
	`, id)
	if err != nil {
		return nil, fmt.Errorf("collecting image paths: %w", err)
	}
	defer rows.Close()

	var imagePaths []string

	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning image path: %w", err)
		}

		imagePaths = append(imagePaths, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating image paths: %w", err)
	}

	steps := []string{
		`DELETE FROM votes WHERE post_id IN (` + doomedPosts + `)`,
		`DELETE FROM notifications WHERE post_id IN (` + doomedPosts + `)`,
		`DELETE FROM posts WHERE id IN (` + doomedPosts + `)`,
		`DELETE FROM votes WHERE user_id = $1`,
		`DELETE FROM memberships WHERE group_id IN (SELECT id FROM groups WHERE owner_id = $1)`,
		`DELETE FROM memberships WHERE user_id = $1`,
		`DELETE FROM groups WHERE owner_id = $1`,
		`DELETE FROM savings WHERE user_id = $1`,
		`DELETE FROM users WHERE id = $1`,
	}

	for _, q := range steps {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return nil, fmt.Errorf("deleting user data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing delete: %w", err)
	}

	return imagePaths, nil
}
