package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spendsense/spendsense/internal/post"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectPostColumns = `
	p.id, p.group_id, p.user_id, p.item_name, p.item_link, p.price, p.reason,
	p.image_path, p.deadline, p.status, p.decision, p.decided_at, p.created_at,
	u.name AS poster_name
`

// scanPost reads a post row joined with the poster's name.
func scanPost(s scanner) (*post.Post, error) {
	var p post.Post

	var itemLink, reason, imagePath, decision sql.NullString

	var statusStr string

	if err := s.Scan(
		&p.ID, &p.GroupID, &p.UserID, &p.ItemName, &itemLink, &p.Price, &reason,
		&imagePath, &p.Deadline, &statusStr, &decision, &p.DecidedAt, &p.CreatedAt,
		&p.PosterName,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, post.ErrNotFound
		}

		return nil, fmt.Errorf("scanning post: %w", err)
	}

	p.ItemLink = itemLink.String
	p.Reason = reason.String
	p.ImagePath = imagePath.String
	p.Status = post.Status(statusStr)
	p.Decision = post.Decision(decision.String)

	return &p, nil
}

func (s *Store) CreatePost(ctx context.Context, p *post.Post) error {
	query := `
		INSERT INTO posts (group_id, user_id, item_name, item_link, price, reason, deadline, status, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.GroupID, p.UserID, p.ItemName, p.ItemLink, p.Price, p.Reason,
		p.Deadline, p.Status,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating post: %w", err)
	}

	return nil
}

// InsertHistorical records an imported, already-decided post with its
// original purchase date.
func (s *Store) InsertHistorical(ctx context.Context, p *post.Post) error {
	query := `
		INSERT INTO posts (group_id, user_id, item_name, item_link, price, reason, deadline, status, decision, decided_at, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		p.GroupID, p.UserID, p.ItemName, p.ItemLink, p.Price, p.Reason,
		p.Deadline, p.Status, p.Decision, p.DecidedAt, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("inserting historical post: %w", err)
	}

	return nil
}

func (s *Store) GetPost(ctx context.Context, id uuid.UUID) (*post.Post, error) {
	query := `SELECT ` + selectPostColumns + `
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE p.id = $1`

	return scanPost(s.db.QueryRowContext(ctx, query, id))
}

func (s *Store) ListPosts(ctx context.Context, groupID uuid.UUID) ([]*post.Post, error) {
	query := `SELECT ` + selectPostColumns + `
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE p.group_id = $1
		ORDER BY p.created_at DESC`

	return s.queryPosts(ctx, query, groupID)
}

func (s *Store) ListItemNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	query := `SELECT item_name FROM posts WHERE user_id = $1 ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing item names: %w", err)
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning item name: %w", err)
		}

		names = append(names, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item names: %w", err)
	}

	return names, nil
}

func (s *Store) MarkClosed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE posts SET status = $1 WHERE id = $2 AND status = $3`

	if _, err := s.db.ExecContext(ctx, query, post.StatusClosed, id, post.StatusPending); err != nil {
		return fmt.Errorf("closing post: %w", err)
	}

	return nil
}

func (s *Store) SetDecision(ctx context.Context, id uuid.UUID, d post.Decision, at time.Time) error {
	query := `UPDATE posts SET status = $1, decision = $2, decided_at = $3 WHERE id = $4`

	if _, err := s.db.ExecContext(ctx, query, post.StatusDecided, d, at, id); err != nil {
		return fmt.Errorf("recording decision: %w", err)
	}

	return nil
}

func (s *Store) SetImagePath(ctx context.Context, id uuid.UUID, path string) error {
	query := `UPDATE posts SET image_path = $1 WHERE id = $2`

	if _, err := s.db.ExecContext(ctx, query, path, id); err != nil {
		return fmt.Errorf("setting image path: %w", err)
	}

	return nil
}

func (s *Store) DeletePost(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	steps := []string{
		`DELETE FROM votes WHERE post_id = $1`,
		`DELETE FROM notifications WHERE post_id = $1`,
		`DELETE FROM posts WHERE id = $1`,
	}

	for _, q := range steps {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("deleting post: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}

	return nil
}

func (s *Store) UpsertVote(ctx context.Context, b *post.Ballot) error {
	query := `
		INSERT INTO votes (post_id, user_id, vote, comment, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NOW())
		ON CONFLICT (post_id, user_id)
		DO UPDATE SET vote = EXCLUDED.vote, comment = EXCLUDED.comment, created_at = NOW()
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, b.PostID, b.UserID, b.Kind, b.Comment).
		Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting vote: %w", err)
	}

	return nil
}

func (s *Store) ListVotes(ctx context.Context, postID uuid.UUID) ([]*post.Ballot, error) {
	query := `
		SELECT v.id, v.post_id, v.user_id, v.vote, v.comment, v.created_at, u.name
		FROM votes v
		JOIN users u ON v.user_id = u.id
		WHERE v.post_id = $1
		ORDER BY v.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("listing votes: %w", err)
	}
	defer rows.Close()

	var ballots []*post.Ballot

	for rows.Next() {
		var b post.Ballot

		var kindStr string

		var comment sql.NullString

		if err := rows.Scan(&b.ID, &b.PostID, &b.UserID, &kindStr, &comment, &b.CreatedAt, &b.VoterName); err != nil {
			return nil, fmt.Errorf("scanning vote: %w", err)
		}

		b.Kind = post.VoteKind(kindStr)
		b.Comment = comment.String

		ballots = append(ballots, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating votes: %w", err)
	}

	return ballots, nil
}

func (s *Store) CreateNotification(ctx context.Context, n *post.Notification) error {
	query := `
		INSERT INTO notifications (group_id, post_id, type, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (post_id, type) DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, query, n.GroupID, n.PostID, n.Type); err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	return nil
}

func (s *Store) ListPendingDue(ctx context.Context, now time.Time) ([]*post.Post, error) {
	query := `SELECT ` + selectPostColumns + `
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE p.status = 'pending' AND p.deadline <= $1
		ORDER BY p.deadline ASC`

	return s.queryPosts(ctx, query, now)
}

func (s *Store) ListClosingSoon(ctx context.Context, now, until time.Time) ([]*post.Post, error) {
	query := `SELECT ` + selectPostColumns + `
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE p.status = 'pending' AND p.deadline > $1 AND p.deadline <= $2
		ORDER BY p.deadline ASC`

	return s.queryPosts(ctx, query, now, until)
}

func (s *Store) queryPosts(ctx context.Context, query string, args ...any) ([]*post.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	var posts []*post.Post

	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}

		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating posts: %w", err)
	}

	return posts, nil
}
