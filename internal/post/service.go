package post

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spendsense/spendsense/internal/similarity"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=post
type Repository interface {
	CreatePost(ctx context.Context, p *Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*Post, error)
	ListPosts(ctx context.Context, groupID uuid.UUID) ([]*Post, error)

	// ListItemNames returns every item name the user has posted, across all
	// groups and statuses, oldest first.
	ListItemNames(ctx context.Context, userID uuid.UUID) ([]string, error)

	MarkClosed(ctx context.Context, id uuid.UUID) error
	SetDecision(ctx context.Context, id uuid.UUID, d Decision, at time.Time) error
	SetImagePath(ctx context.Context, id uuid.UUID, path string) error
	DeletePost(ctx context.Context, id uuid.UUID) error

	UpsertVote(ctx context.Context, b *Ballot) error
	ListVotes(ctx context.Context, postID uuid.UUID) ([]*Ballot, error)

	CreateNotification(ctx context.Context, n *Notification) error
	ListPendingDue(ctx context.Context, now time.Time) ([]*Post, error)
	ListClosingSoon(ctx context.Context, now, until time.Time) ([]*Post, error)
}

// Crediter adds skipped-purchase amounts to a user's savings ledger.
type Crediter interface {
	Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
}

// Notifier delivers new-post notices to the rest of the group. Delivery is
// best effort and must not fail the posting flow.
type Notifier interface {
	NewPost(ctx context.Context, p *Post)
}

type Service struct {
	repo            Repository
	savings         Crediter
	notifier        Notifier
	createThreshold float64
}

func NewService(repo Repository, savings Crediter, notifier Notifier, createThreshold float64) *Service {
	return &Service{
		repo:            repo,
		savings:         savings,
		notifier:        notifier,
		createThreshold: createThreshold,
	}
}

type CreateParams struct {
	GroupID      uuid.UUID
	UserID       uuid.UUID
	ItemName     string
	ItemLink     string
	Price        int64
	Reason       string
	VotingWindow time.Duration

	// SkipDuplicate records the post as immediately skipped and credits the
	// price to savings. Honored only when the duplicate check fires.
	SkipDuplicate bool
}

const defaultVotingWindow = 24 * time.Hour

// Create posts an item for the group's advice. The poster's purchase
// history is checked for a similar earlier item; the verdict is returned
// alongside the post. When params.SkipDuplicate is set and the check found
// a match, the post is finalized as skipped on the spot.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Post, similarity.Verdict, error) {
	params.ItemName = strings.TrimSpace(params.ItemName)
	if params.ItemName == "" || params.Price <= 0 {
		return nil, similarity.Verdict{}, ErrInvalidPost
	}

	window := params.VotingWindow
	if window <= 0 {
		window = defaultVotingWindow
	}

	// The nudge is advisory: a failed history lookup must never block the
	// post, so it degrades to no-match.
	verdict, err := s.CheckDuplicate(ctx, params.UserID, params.ItemName)
	if err != nil {
		slog.Warn("purchase history check failed", "user_id", params.UserID, "error", err)

		verdict = similarity.Verdict{Kind: similarity.KindNoMatch}
	}

	p := &Post{
		GroupID:  params.GroupID,
		UserID:   params.UserID,
		ItemName: params.ItemName,
		ItemLink: strings.TrimSpace(params.ItemLink),
		Price:    params.Price,
		Reason:   strings.TrimSpace(params.Reason),
		Deadline: time.Now().UTC().Add(window),
		Status:   StatusPending,
	}

	if err := s.repo.CreatePost(ctx, p); err != nil {
		return nil, similarity.Verdict{}, err
	}

	if err := s.repo.CreateNotification(ctx, &Notification{
		GroupID: p.GroupID,
		PostID:  p.ID,
		Type:    NotifyNewPost,
	}); err != nil {
		slog.Warn("recording new_post notification failed", "post_id", p.ID, "error", err)
	}

	if params.SkipDuplicate && verdict.Kind == similarity.KindMatch {
		if err := s.decide(ctx, p, DecisionSkipped); err != nil {
			return nil, similarity.Verdict{}, fmt.Errorf("finalizing skip: %w", err)
		}
	}

	s.notifier.NewPost(ctx, p)

	return p, verdict, nil
}

// CheckDuplicate runs the similarity matcher over the user's full posting
// history with the post-creation threshold.
func (s *Service) CheckDuplicate(ctx context.Context, userID uuid.UUID, itemName string) (similarity.Verdict, error) {
	history, err := s.repo.ListItemNames(ctx, userID)
	if err != nil {
		return similarity.Verdict{}, fmt.Errorf("listing item names: %w", err)
	}

	return similarity.Evaluate(history, itemName, s.createThreshold), nil
}

// Annotation decides whether voters should see a "poster has a history of
// this" note on the post. It uses the matcher's default threshold and the
// poster's full history, and degrades to no-match on any failure.
func (s *Service) Annotation(ctx context.Context, p *Post) similarity.Verdict {
	history, err := s.repo.ListItemNames(ctx, p.UserID)
	if err != nil {
		slog.Warn("poster history lookup failed", "post_id", p.ID, "error", err)

		return similarity.Verdict{Kind: similarity.KindNoMatch}
	}

	return similarity.Evaluate(history, p.ItemName, similarity.DefaultThreshold)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Post, error) {
	p, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.CloseIfDue(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// List returns a group's posts, newest first, closing any whose deadline
// has passed along the way.
func (s *Service) List(ctx context.Context, groupID uuid.UUID) ([]*Post, error) {
	posts, err := s.repo.ListPosts(ctx, groupID)
	if err != nil {
		return nil, err
	}

	for _, p := range posts {
		if _, err := s.CloseIfDue(ctx, p); err != nil {
			return nil, err
		}
	}

	return posts, nil
}

// CloseIfDue flips a pending post whose deadline has passed to closed and
// records the closed notification. It reports whether it closed the post.
func (s *Service) CloseIfDue(ctx context.Context, p *Post) (bool, error) {
	if p.Status != StatusPending || time.Now().UTC().Before(p.Deadline) {
		return false, nil
	}

	if err := s.repo.MarkClosed(ctx, p.ID); err != nil {
		return false, err
	}

	p.Status = StatusClosed

	if err := s.repo.CreateNotification(ctx, &Notification{
		GroupID: p.GroupID,
		PostID:  p.ID,
		Type:    NotifyClosed,
	}); err != nil {
		slog.Warn("recording closed notification failed", "post_id", p.ID, "error", err)
	}

	return true, nil
}

// Vote records or replaces userID's vote on a post. Posters cannot vote on
// their own posts, and closed posts accept no votes.
func (s *Service) Vote(ctx context.Context, postID, userID uuid.UUID, kind VoteKind, comment string) error {
	switch kind {
	case VoteBuy, VoteDontBuy, VoteNeutral:
	default:
		return ErrInvalidVote
	}

	p, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}

	if p.UserID == userID {
		return ErrOwnPost
	}

	if p.Status != StatusPending {
		return ErrVotingClosed
	}

	return s.repo.UpsertVote(ctx, &Ballot{
		PostID:  postID,
		UserID:  userID,
		Kind:    kind,
		Comment: strings.TrimSpace(comment),
	})
}

// VoteSummary returns the tally and the individual ballots, newest first.
func (s *Service) VoteSummary(ctx context.Context, postID uuid.UUID) (VoteCounts, []*Ballot, error) {
	ballots, err := s.repo.ListVotes(ctx, postID)
	if err != nil {
		return VoteCounts{}, nil, err
	}

	var counts VoteCounts

	for _, b := range ballots {
		switch b.Kind {
		case VoteBuy:
			counts.Buy++
		case VoteDontBuy:
			counts.DontBuy++
		case VoteNeutral:
			counts.Neutral++
		}
	}

	return counts, ballots, nil
}

// Decide records the poster's final call. The poster may decide at any time,
// even before voting closes. Skipping credits the price to their savings.
func (s *Service) Decide(ctx context.Context, postID, userID uuid.UUID, decision Decision) (*Post, error) {
	switch decision {
	case DecisionBought, DecisionSkipped:
	default:
		return nil, ErrInvalidDecision
	}

	p, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if p.UserID != userID {
		return nil, ErrNotPoster
	}

	if err := s.decide(ctx, p, decision); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) decide(ctx context.Context, p *Post, decision Decision) error {
	now := time.Now().UTC()

	if err := s.repo.SetDecision(ctx, p.ID, decision, now); err != nil {
		return err
	}

	p.Status = StatusDecided
	p.Decision = decision
	p.DecidedAt = &now

	if decision == DecisionSkipped {
		if _, err := s.savings.Credit(ctx, p.UserID, p.Price); err != nil {
			return fmt.Errorf("crediting savings: %w", err)
		}
	}

	return nil
}

// AttachImage links an uploaded image file to a pending post. Poster only.
func (s *Service) AttachImage(ctx context.Context, postID, userID uuid.UUID, path string) error {
	p, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	if p.UserID != userID {
		return ErrNotPoster
	}

	return s.repo.SetImagePath(ctx, postID, path)
}

// Delete removes a post along with its votes and notifications. Only the
// poster may delete, and only while the post is still pending. The post's
// image path, if any, is returned for file cleanup.
func (s *Service) Delete(ctx context.Context, postID, userID uuid.UUID) (string, error) {
	p, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return "", err
	}

	if p.UserID != userID {
		return "", ErrNotPoster
	}

	if p.Status != StatusPending {
		return "", ErrNotPending
	}

	if err := s.repo.DeletePost(ctx, postID); err != nil {
		return "", err
	}

	return p.ImagePath, nil
}

// SweepDeadlines closes due posts and records closing_soon notices for
// posts within an hour of their deadline. Meant to run periodically.
func (s *Service) SweepDeadlines(ctx context.Context, now time.Time) error {
	due, err := s.repo.ListPendingDue(ctx, now)
	if err != nil {
		return fmt.Errorf("listing due posts: %w", err)
	}

	for _, p := range due {
		if _, err := s.CloseIfDue(ctx, p); err != nil {
			return err
		}
	}

	soon, err := s.repo.ListClosingSoon(ctx, now, now.Add(time.Hour))
	if err != nil {
		return fmt.Errorf("listing closing posts: %w", err)
	}

	for _, p := range soon {
		// The (post, type) uniqueness in the store makes this a no-op after
		// the first sweep that sees the post.
		if err := s.repo.CreateNotification(ctx, &Notification{
			GroupID: p.GroupID,
			PostID:  p.ID,
			Type:    NotifyClosingSoon,
		}); err != nil {
			slog.Warn("recording closing_soon notification failed", "post_id", p.ID, "error", err)
		}
	}

	return nil
}
