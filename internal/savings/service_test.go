package savings_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/spendsense/spendsense/internal/savings"
)

func TestService_Credit(t *testing.T) {
	userID := uuid.New()

	t.Run("ReturnsNewTotal", func(t *testing.T) {
		repo := savings.NewMockRepository(gomock.NewController(t))

		repo.EXPECT().
			Credit(gomock.Any(), userID, int64(249900)).
			Return(int64(312400), nil)

		total, err := savings.NewService(repo).Credit(context.Background(), userID, 249900)
		require.NoError(t, err)
		assert.Equal(t, int64(312400), total)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		repo := savings.NewMockRepository(gomock.NewController(t))

		repo.EXPECT().
			Credit(gomock.Any(), userID, int64(500)).
			Return(int64(0), errors.New("connection reset"))

		_, err := savings.NewService(repo).Credit(context.Background(), userID, 500)
		assert.Error(t, err)
	})
}

func TestService_Total(t *testing.T) {
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		repo := savings.NewMockRepository(gomock.NewController(t))

		repo.EXPECT().
			GetTotal(gomock.Any(), userID).
			Return(int64(120000), nil)

		total, err := savings.NewService(repo).Total(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, int64(120000), total)
	})

	t.Run("NeverSavedAnything", func(t *testing.T) {
		repo := savings.NewMockRepository(gomock.NewController(t))

		repo.EXPECT().
			GetTotal(gomock.Any(), userID).
			Return(int64(0), nil)

		total, err := savings.NewService(repo).Total(context.Background(), userID)
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}
