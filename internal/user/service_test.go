package user_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/spendsense/spendsense/internal/user"
)

func TestService_SignUp(t *testing.T) {
	type testCase struct {
		name      string
		params    user.SignUpParams
		setupMock func(m *user.MockRepository)
		wantName  string
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			params: user.SignUpParams{
				Email:    "  Jane@Example.COM ",
				Name:     "Jane",
				Password: "hunter22",
			},
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, u *user.User) error {
						assert.Equal(t, "jane@example.com", u.Email)
						assert.NoError(t, bcrypt.CompareHashAndPassword(
							[]byte(u.PasswordHash), []byte("hunter22")))
						u.ID = uuid.New()
						return nil
					})
			},
			wantName: "Jane",
		},
		{
			name: "BlankNameGetsDefault",
			params: user.SignUpParams{
				Email:    "anon@example.com",
				Password: "hunter22",
			},
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantName: "User",
		},
		{
			name:    "MissingEmail",
			params:  user.SignUpParams{Password: "hunter22"},
			wantErr: user.ErrInvalidCredentials,
		},
		{
			name:    "MissingPassword",
			params:  user.SignUpParams{Email: "jane@example.com"},
			wantErr: user.ErrInvalidCredentials,
		},
		{
			name: "DuplicateEmail",
			params: user.SignUpParams{
				Email:    "jane@example.com",
				Password: "hunter22",
			},
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(user.ErrEmailTaken)
			},
			wantErr: user.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := user.NewMockRepository(gomock.NewController(t))
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := user.NewService(repo).SignUp(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)

	stored := &user.User{
		ID:           uuid.New(),
		Email:        "jane@example.com",
		PasswordHash: string(hash),
	}

	type testCase struct {
		name      string
		email     string
		password  string
		setupMock func(m *user.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:     "Success",
			email:    "Jane@Example.com",
			password: "hunter22",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "jane@example.com").
					Return(stored, nil)
			},
		},
		{
			name:     "WrongPassword",
			email:    "jane@example.com",
			password: "letmein",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "jane@example.com").
					Return(stored, nil)
			},
			wantErr: user.ErrInvalidCredentials,
		},
		{
			name:     "UnknownEmailLooksLikeWrongPassword",
			email:    "nobody@example.com",
			password: "hunter22",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "nobody@example.com").
					Return(nil, user.ErrNotFound)
			},
			wantErr: user.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := user.NewMockRepository(gomock.NewController(t))
			tt.setupMock(repo)

			got, err := user.NewService(repo).Authenticate(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, stored.ID, got.ID)
		})
	}
}

func TestService_DeleteAccount(t *testing.T) {
	repo := user.NewMockRepository(gomock.NewController(t))
	id := uuid.New()

	repo.EXPECT().
		DeleteUserData(gomock.Any(), id).
		Return([]string{"uploads/a.jpg", "uploads/b.jpg"}, nil)

	paths, err := user.NewService(repo).DeleteAccount(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"uploads/a.jpg", "uploads/b.jpg"}, paths)
}
