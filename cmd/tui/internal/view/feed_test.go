package view

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/spendsense/spendsense/internal/group"
	"github.com/spendsense/spendsense/internal/images"
	"github.com/spendsense/spendsense/internal/post"
)

func TestFeed_DeleteRemovesImageFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := post.NewMockRepository(ctrl)
	svc := post.NewService(repo, post.NewMockCrediter(ctrl), post.NewMockNotifier(ctrl), 0.62)

	dir := t.TempDir()

	store, err := images.NewStore(dir)
	require.NoError(t, err)

	userID := uuid.New()
	g := &group.Group{ID: uuid.New(), Name: "Roommates"}

	p := &post.Post{
		ID:        uuid.New(),
		GroupID:   g.ID,
		UserID:    userID,
		ItemName:  "Desk Lamp",
		Status:    post.StatusPending,
		ImagePath: filepath.Join(dir, "lamp.jpg"),
	}
	require.NoError(t, os.WriteFile(p.ImagePath, []byte("jpeg bytes"), 0o644))

	repo.EXPECT().GetPost(gomock.Any(), p.ID).Return(p, nil)
	repo.EXPECT().DeletePost(gomock.Any(), p.ID).Return(nil)

	m := NewFeedModel(svc, store, g, userID)
	m.entries = []feedEntry{{post: p}}

	msg := m.deleteCmd()()

	result, ok := msg.(feedActionMsg)
	require.True(t, ok)
	assert.NoError(t, result.err)

	_, statErr := os.Stat(p.ImagePath)
	assert.True(t, os.IsNotExist(statErr))
}
