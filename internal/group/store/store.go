package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spendsense/spendsense/internal/group"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const uniqueViolation = "23505"

func (s *Store) CreateGroup(ctx context.Context, g *group.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO groups (owner_id, name, invite_code, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err = tx.QueryRowContext(ctx, query, g.OwnerID, g.Name, g.InviteCode).
		Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return group.ErrInviteCodeTaken
		}

		return fmt.Errorf("creating group: %w", err)
	}

	memberQuery := `
		INSERT INTO memberships (user_id, group_id, joined_at)
		VALUES ($1, $2, NOW())
	`
	if _, err := tx.ExecContext(ctx, memberQuery, g.OwnerID, g.ID); err != nil {
		return fmt.Errorf("adding owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing group: %w", err)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanGroup(s scanner) (*group.Group, error) {
	var g group.Group

	err := s.Scan(&g.ID, &g.OwnerID, &g.Name, &g.InviteCode, &g.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, group.ErrNotFound
		}

		return nil, fmt.Errorf("scanning group: %w", err)
	}

	return &g, nil
}

const selectGroupColumns = `id, owner_id, name, invite_code, created_at`

func (s *Store) GetGroup(ctx context.Context, id uuid.UUID) (*group.Group, error) {
	query := `SELECT ` + selectGroupColumns + ` FROM groups WHERE id = $1`

	return scanGroup(s.db.QueryRowContext(ctx, query, id))
}

func (s *Store) GetGroupByInviteCode(ctx context.Context, code string) (*group.Group, error) {
	query := `SELECT ` + selectGroupColumns + ` FROM groups WHERE invite_code = $1`

	return scanGroup(s.db.QueryRowContext(ctx, query, code))
}

func (s *Store) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	query := `
		INSERT INTO memberships (user_id, group_id, joined_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, group_id) DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, query, userID, groupID); err != nil {
		return fmt.Errorf("adding member: %w", err)
	}

	return nil
}

func (s *Store) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM memberships WHERE group_id = $1 AND user_id = $2)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, groupID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking membership: %w", err)
	}

	return exists, nil
}

func (s *Store) ListGroupsForUser(ctx context.Context, userID uuid.UUID) ([]*group.Group, error) {
	query := `
		SELECT g.id, g.owner_id, g.name, g.invite_code, g.created_at
		FROM groups g
		JOIN memberships m ON g.id = m.group_id
		WHERE m.user_id = $1
		ORDER BY g.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	defer rows.Close()

	var groups []*group.Group

	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}

		groups = append(groups, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating groups: %w", err)
	}

	return groups, nil
}

func (s *Store) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*group.Member, error) {
	query := `
		SELECT u.id, u.email, u.name, m.joined_at
		FROM users u
		JOIN memberships m ON u.id = m.user_id
		WHERE m.group_id = $1
		ORDER BY m.joined_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	var members []*group.Member

	for rows.Next() {
		var m group.Member
		if err := rows.Scan(&m.UserID, &m.Email, &m.Name, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}

		members = append(members, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating members: %w", err)
	}

	return members, nil
}

func (s *Store) DeleteGroup(ctx context.Context, id uuid.UUID) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT image_path FROM posts WHERE group_id = $1 AND image_path IS NOT NULL`, id)
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
		`DELETE FROM votes WHERE post_id IN (SELECT id FROM posts WHERE group_id = $1)`,
		`DELETE FROM notifications WHERE group_id = $1`,
		`DELETE FROM posts WHERE group_id = $1`,
		`DELETE FROM memberships WHERE group_id = $1`,
		`DELETE FROM groups WHERE id = $1`,
	}

	for _, q := range steps {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return nil, fmt.Errorf("deleting group data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing delete: %w", err)
	}

	return imagePaths, nil
}
