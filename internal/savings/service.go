package savings

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=savings
type Repository interface {
	// Credit adds amount (cents) to the user's total, creating the row on
	// first use, and returns the new total.
	Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
	GetTotal(ctx context.Context, userID uuid.UUID) (int64, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	return s.repo.Credit(ctx, userID, amount)
}

// Total returns the user's saved total in cents. Users who never skipped
// anything have a total of zero.
func (s *Service) Total(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetTotal(ctx, userID)
}
