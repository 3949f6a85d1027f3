package group

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("group not found")
	ErrInvalidInvite   = errors.New("invalid invite code")
	ErrInviteCodeTaken = errors.New("invite code already in use")
	ErrNotOwner        = errors.New("only the owner may do this")
)

// Group is a circle of people who vote on each other's purchases. Anyone
// with the invite code can join.
type Group struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Name       string
	InviteCode string
	CreatedAt  time.Time
}

// Member is a user's view inside a group.
type Member struct {
	UserID   uuid.UUID
	Email    string
	Name     string
	JoinedAt time.Time
}
