package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// DeleteUserData removes the user and everything they own: owned groups
	// with their posts, own posts and votes, memberships and savings. It
	// returns the image paths of deleted posts so the caller can remove the
	// files.
	DeleteUserData(ctx context.Context, id uuid.UUID) ([]string, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type SignUpParams struct {
	Email    string
	Name     string
	Password string
}

func (s *Service) SignUp(ctx context.Context, params SignUpParams) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || params.Password == "" {
		return nil, ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		Email:        email,
		Name:         strings.TrimSpace(params.Name),
		PasswordHash: string(hash),
	}

	if u.Name == "" {
		u.Name = "User"
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// Authenticate resolves email and password to a user. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// DeleteAccount removes the user and all their data and returns the orphaned
// image paths for cleanup.
func (s *Service) DeleteAccount(ctx context.Context, id uuid.UUID) ([]string, error) {
	return s.repo.DeleteUserData(ctx, id)
}
