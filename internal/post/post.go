package post

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("post not found")
	ErrNotPoster       = errors.New("only the poster may do this")
	ErrOwnPost         = errors.New("cannot vote on your own post")
	ErrVotingClosed    = errors.New("voting is closed")
	ErrNotPending      = errors.New("post is no longer pending")
	ErrInvalidVote     = errors.New("invalid vote")
	ErrInvalidDecision = errors.New("invalid decision")
	ErrInvalidPost     = errors.New("item name and a positive price are required")
)

// Status is the lifecycle state of a post.
type Status string

const (
	StatusPending Status = "pending"
	StatusClosed  Status = "closed"
	StatusDecided Status = "decided"
)

// Decision is the poster's final call.
type Decision string

const (
	DecisionBought  Decision = "bought"
	DecisionSkipped Decision = "skipped"
)

// VoteKind is a group member's advice on a post.
type VoteKind string

const (
	VoteBuy     VoteKind = "buy"
	VoteDontBuy VoteKind = "dont_buy"
	VoteNeutral VoteKind = "neutral"
)

// Post is a prospective purchase put before the group.
type Post struct {
	ID         uuid.UUID
	GroupID    uuid.UUID
	UserID     uuid.UUID
	ItemName   string
	ItemLink   string
	Price      int64 // cents
	Reason     string
	ImagePath  string
	Deadline   time.Time
	Status     Status
	Decision   Decision // empty until decided
	DecidedAt  *time.Time
	CreatedAt  time.Time
	PosterName string // loaded via JOIN
}

// Ballot is one member's vote on a post. A member has at most one ballot
// per post; re-voting replaces it.
type Ballot struct {
	ID        uuid.UUID
	PostID    uuid.UUID
	UserID    uuid.UUID
	Kind      VoteKind
	Comment   string
	CreatedAt time.Time
	VoterName string // loaded via JOIN
}

// VoteCounts is the tally shown on a post.
type VoteCounts struct {
	Buy     int
	DontBuy int
	Neutral int
}

// NotificationType classifies group notifications.
type NotificationType string

const (
	NotifyNewPost     NotificationType = "new_post"
	NotifyClosingSoon NotificationType = "closing_soon"
	NotifyClosed      NotificationType = "closed"
)

// Notification is a group-visible event record. At most one notification of
// a given type exists per post.
type Notification struct {
	ID        uuid.UUID
	GroupID   uuid.UUID
	PostID    uuid.UUID
	Type      NotificationType
	CreatedAt time.Time
}
