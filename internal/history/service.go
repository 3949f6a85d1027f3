package history

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/spendsense/spendsense/internal/post"
)

// PostWriter inserts already-decided posts without the posting workflow's
// nudge and notifications.
type PostWriter interface {
	InsertHistorical(ctx context.Context, p *post.Post) error
}

type Service struct {
	posts PostWriter
}

func NewService(posts PostWriter) *Service {
	return &Service{posts: posts}
}

// Result summarizes an import.
type Result struct {
	Imported int
	Skipped  []RowError
}

// Import parses the CSV and records each entry as a decided post in the
// given group, dated when the purchase happened. Savings are deliberately
// not credited retroactively; the ledger only tracks skips made through
// the app.
func (s *Service) Import(ctx context.Context, groupID, userID uuid.UUID, r io.Reader) (*Result, error) {
	entries, rowErrs, err := Parse(r)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		decidedAt := e.Date

		p := &post.Post{
			GroupID:   groupID,
			UserID:    userID,
			ItemName:  e.ItemName,
			Price:     e.Price,
			Deadline:  e.Date,
			Status:    post.StatusDecided,
			Decision:  e.Decision,
			DecidedAt: &decidedAt,
			CreatedAt: e.Date,
		}

		if err := s.posts.InsertHistorical(ctx, p); err != nil {
			return nil, fmt.Errorf("inserting history entry %q: %w", e.ItemName, err)
		}
	}

	return &Result{Imported: len(entries), Skipped: rowErrs}, nil
}
