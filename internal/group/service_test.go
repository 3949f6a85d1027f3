package group_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/spendsense/spendsense/internal/group"
)

func TestService_Create(t *testing.T) {
	ownerID := uuid.New()

	t.Run("LongCode", func(t *testing.T) {
		repo := group.NewMockRepository(gomock.NewController(t))

		var created *group.Group

		repo.EXPECT().
			CreateGroup(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, g *group.Group) error {
				g.ID = uuid.New()
				created = g
				return nil
			})

		g, err := group.NewService(repo).Create(context.Background(), ownerID, " Family Budget ", false)
		require.NoError(t, err)
		assert.Equal(t, created, g)
		assert.Equal(t, "Family Budget", g.Name)
		assert.Equal(t, ownerID, g.OwnerID)
		assert.Len(t, g.InviteCode, 8)
	})

	t.Run("ShortCodeIsSixDigits", func(t *testing.T) {
		repo := group.NewMockRepository(gomock.NewController(t))

		repo.EXPECT().CreateGroup(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, g *group.Group) error {
				assert.Regexp(t, `^\d{6}$`, g.InviteCode)
				return nil
			})

		_, err := group.NewService(repo).Create(context.Background(), ownerID, "Roommates", true)
		require.NoError(t, err)
	})

	t.Run("RetriesOnCodeCollision", func(t *testing.T) {
		repo := group.NewMockRepository(gomock.NewController(t))

		gomock.InOrder(
			repo.EXPECT().CreateGroup(gomock.Any(), gomock.Any()).Return(group.ErrInviteCodeTaken),
			repo.EXPECT().CreateGroup(gomock.Any(), gomock.Any()).Return(nil),
		)

		_, err := group.NewService(repo).Create(context.Background(), ownerID, "Roommates", false)
		assert.NoError(t, err)
	})

	t.Run("GivesUpAfterRepeatedCollisions", func(t *testing.T) {
		repo := group.NewMockRepository(gomock.NewController(t))

		repo.EXPECT().
			CreateGroup(gomock.Any(), gomock.Any()).
			Return(group.ErrInviteCodeTaken).
			Times(5)

		_, err := group.NewService(repo).Create(context.Background(), ownerID, "Roommates", false)
		assert.ErrorIs(t, err, group.ErrInviteCodeTaken)
	})

	t.Run("BlankName", func(t *testing.T) {
		repo := group.NewMockRepository(gomock.NewController(t))

		_, err := group.NewService(repo).Create(context.Background(), ownerID, "   ", false)
		assert.Error(t, err)
	})
}

func TestService_Join(t *testing.T) {
	userID := uuid.New()
	g := &group.Group{ID: uuid.New(), Name: "Roommates", InviteCode: "A1B2C3D4"}

	type testCase struct {
		name      string
		code      string
		setupMock func(m *group.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "CodeIsTrimmedAndUppercased",
			code: " a1b2c3d4 ",
			setupMock: func(m *group.MockRepository) {
				m.EXPECT().GetGroupByInviteCode(gomock.Any(), "A1B2C3D4").Return(g, nil)
				m.EXPECT().AddMember(gomock.Any(), g.ID, userID).Return(nil)
			},
		},
		{
			name: "UnknownCode",
			code: "ZZZZZZZZ",
			setupMock: func(m *group.MockRepository) {
				m.EXPECT().
					GetGroupByInviteCode(gomock.Any(), "ZZZZZZZZ").
					Return(nil, group.ErrNotFound)
			},
			wantErr: group.ErrInvalidInvite,
		},
		{
			name:    "BlankCode",
			code:    "  ",
			wantErr: group.ErrInvalidInvite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := group.NewMockRepository(gomock.NewController(t))
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := group.NewService(repo).Join(context.Background(), userID, tt.code)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, g.ID, got.ID)
		})
	}
}

func TestService_Delete(t *testing.T) {
	ownerID := uuid.New()
	g := &group.Group{ID: uuid.New(), OwnerID: ownerID}

	t.Run("OwnerDeletes", func(t *testing.T) {
		repo := group.NewMockRepository(gomock.NewController(t))

		repo.EXPECT().GetGroup(gomock.Any(), g.ID).Return(g, nil)
		repo.EXPECT().DeleteGroup(gomock.Any(), g.ID).Return([]string{"uploads/p.jpg"}, nil)

		paths, err := group.NewService(repo).Delete(context.Background(), g.ID, ownerID)
		require.NoError(t, err)
		assert.Equal(t, []string{"uploads/p.jpg"}, paths)
	})

	t.Run("MemberCannotDelete", func(t *testing.T) {
		repo := group.NewMockRepository(gomock.NewController(t))

		repo.EXPECT().GetGroup(gomock.Any(), g.ID).Return(g, nil)

		_, err := group.NewService(repo).Delete(context.Background(), g.ID, uuid.New())
		assert.ErrorIs(t, err, group.ErrNotOwner)
	})
}
