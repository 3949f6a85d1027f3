package group

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=group
type Repository interface {
	// CreateGroup inserts the group and the owner's membership atomically.
	CreateGroup(ctx context.Context, g *Group) error
	GetGroup(ctx context.Context, id uuid.UUID) (*Group, error)
	GetGroupByInviteCode(ctx context.Context, code string) (*Group, error)
	AddMember(ctx context.Context, groupID, userID uuid.UUID) error
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	ListGroupsForUser(ctx context.Context, userID uuid.UUID) ([]*Group, error)
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]*Member, error)

	// DeleteGroup removes the group with its posts, votes, notifications and
	// memberships, returning image paths of deleted posts for file cleanup.
	DeleteGroup(ctx context.Context, id uuid.UUID) ([]string, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create makes a new group owned by ownerID. shortCode selects the 6-digit
// invite code; otherwise an 8-character hex code is used. Code collisions
// are retried a few times before giving up.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, name string, shortCode bool) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("group name is required")
	}

	var lastErr error

	for range 5 {
		g := &Group{
			OwnerID:    ownerID,
			Name:       name,
			InviteCode: newInviteCode(shortCode),
		}

		err := s.repo.CreateGroup(ctx, g)
		if err == nil {
			return g, nil
		}

		if !errors.Is(err, ErrInviteCodeTaken) {
			return nil, err
		}

		lastErr = err
	}

	return nil, fmt.Errorf("generating invite code: %w", lastErr)
}

// Join adds the user to the group the invite code belongs to. Joining a
// group the user is already in is not an error.
func (s *Service) Join(ctx context.Context, userID uuid.UUID, inviteCode string) (*Group, error) {
	code := strings.ToUpper(strings.TrimSpace(inviteCode))
	if code == "" {
		return nil, ErrInvalidInvite
	}

	g, err := s.repo.GetGroupByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidInvite
		}

		return nil, err
	}

	if err := s.repo.AddMember(ctx, g.ID, userID); err != nil {
		return nil, err
	}

	return g, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Group, error) {
	return s.repo.GetGroup(ctx, id)
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*Group, error) {
	return s.repo.ListGroupsForUser(ctx, userID)
}

func (s *Service) Members(ctx context.Context, groupID uuid.UUID) ([]*Member, error) {
	return s.repo.ListMembers(ctx, groupID)
}

// IsMember reports whether the user belongs to the group.
func (s *Service) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	return s.repo.IsMember(ctx, groupID, userID)
}

// Delete removes the group and everything in it. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, groupID, userID uuid.UUID) ([]string, error) {
	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if g.OwnerID != userID {
		return nil, ErrNotOwner
	}

	return s.repo.DeleteGroup(ctx, groupID)
}

const (
	digits   = "0123456789"
	hexUpper = "0123456789ABCDEF"
)

func newInviteCode(short bool) string {
	alphabet, n := hexUpper, 8
	if short {
		alphabet, n = digits, 6
	}

	// Reject bytes past the largest multiple of the alphabet size so every
	// character is drawn uniformly.
	limit := 256 - 256%len(alphabet)

	code := make([]byte, 0, n)
	buf := make([]byte, 1)

	for len(code) < n {
		_, _ = rand.Read(buf)
		if int(buf[0]) >= limit {
			continue
		}
		code = append(code, alphabet[int(buf[0])%len(alphabet)])
	}

	return string(code)
}
