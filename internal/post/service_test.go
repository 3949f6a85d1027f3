package post_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/spendsense/spendsense/internal/post"
	"github.com/spendsense/spendsense/internal/similarity"
)

const createThreshold = 0.62

type serviceMocks struct {
	repo     *post.MockRepository
	savings  *post.MockCrediter
	notifier *post.MockNotifier
}

func newService(t *testing.T) (*post.Service, serviceMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := serviceMocks{
		repo:     post.NewMockRepository(ctrl),
		savings:  post.NewMockCrediter(ctrl),
		notifier: post.NewMockNotifier(ctrl),
	}

	return post.NewService(m.repo, m.savings, m.notifier, createThreshold), m
}

func TestService_Create(t *testing.T) {
	groupID := uuid.New()
	userID := uuid.New()

	type testCase struct {
		name        string
		params      post.CreateParams
		setupMock   func(m serviceMocks)
		wantVerdict similarity.Kind
		wantStatus  post.Status
		wantErr     bool
	}

	tests := []testCase{
		{
			name: "FirstPostNoHistory",
			params: post.CreateParams{
				GroupID:  groupID,
				UserID:   userID,
				ItemName: "Headphones",
				Price:    249900,
			},
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().
					ListItemNames(gomock.Any(), userID).
					Return(nil, nil)
				m.repo.EXPECT().
					CreatePost(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *post.Post) error {
						p.ID = uuid.New()
						p.CreatedAt = time.Now()
						return nil
					})
				m.repo.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return(nil)
				m.notifier.EXPECT().NewPost(gomock.Any(), gomock.Any())
			},
			wantVerdict: similarity.KindNoHistory,
			wantStatus:  post.StatusPending,
		},
		{
			name: "SimilarHistoryStaysPendingWithoutOptIn",
			params: post.CreateParams{
				GroupID:  groupID,
				UserID:   userID,
				ItemName: "bluetooth headphones",
				Price:    249900,
			},
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().
					ListItemNames(gomock.Any(), userID).
					Return([]string{"Bluetooth Headphones"}, nil)
				m.repo.EXPECT().
					CreatePost(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *post.Post) error {
						p.ID = uuid.New()
						return nil
					})
				m.repo.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return(nil)
				m.notifier.EXPECT().NewPost(gomock.Any(), gomock.Any())
			},
			wantVerdict: similarity.KindMatch,
			wantStatus:  post.StatusPending,
		},
		{
			name: "OptInSkipFinalizesAndCreditsSavings",
			params: post.CreateParams{
				GroupID:       groupID,
				UserID:        userID,
				ItemName:      "bluetooth headphones",
				Price:         249900,
				SkipDuplicate: true,
			},
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().
					ListItemNames(gomock.Any(), userID).
					Return([]string{"Bluetooth Headphones"}, nil)
				m.repo.EXPECT().
					CreatePost(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *post.Post) error {
						p.ID = uuid.New()
						return nil
					})
				m.repo.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return(nil)
				m.repo.EXPECT().
					SetDecision(gomock.Any(), gomock.Any(), post.DecisionSkipped, gomock.Any()).
					Return(nil)
				m.savings.EXPECT().
					Credit(gomock.Any(), userID, int64(249900)).
					Return(int64(249900), nil)
				m.notifier.EXPECT().NewPost(gomock.Any(), gomock.Any())
			},
			wantVerdict: similarity.KindMatch,
			wantStatus:  post.StatusDecided,
		},
		{
			name: "OptInIgnoredWithoutMatch",
			params: post.CreateParams{
				GroupID:       groupID,
				UserID:        userID,
				ItemName:      "Gaming Laptop",
				Price:         9999900,
				SkipDuplicate: true,
			},
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().
					ListItemNames(gomock.Any(), userID).
					Return([]string{"Bluetooth Headphones"}, nil)
				m.repo.EXPECT().
					CreatePost(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *post.Post) error {
						p.ID = uuid.New()
						return nil
					})
				m.repo.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return(nil)
				m.notifier.EXPECT().NewPost(gomock.Any(), gomock.Any())
			},
			wantVerdict: similarity.KindNoMatch,
			wantStatus:  post.StatusPending,
		},
		{
			name: "HistoryLookupFailureDoesNotBlockPosting",
			params: post.CreateParams{
				GroupID:  groupID,
				UserID:   userID,
				ItemName: "Headphones",
				Price:    249900,
			},
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().
					ListItemNames(gomock.Any(), userID).
					Return(nil, errors.New("db error"))
				m.repo.EXPECT().
					CreatePost(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *post.Post) error {
						p.ID = uuid.New()
						return nil
					})
				m.repo.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return(nil)
				m.notifier.EXPECT().NewPost(gomock.Any(), gomock.Any())
			},
			wantVerdict: similarity.KindNoMatch,
			wantStatus:  post.StatusPending,
		},
		{
			name:    "MissingItemName",
			params:  post.CreateParams{GroupID: groupID, UserID: userID, Price: 100},
			wantErr: true,
		},
		{
			name:    "NonPositivePrice",
			params:  post.CreateParams{GroupID: groupID, UserID: userID, ItemName: "Lamp"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			if tt.setupMock != nil {
				tt.setupMock(m)
			}

			p, verdict, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, p)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, tt.wantVerdict, verdict.Kind)
			assert.Equal(t, tt.wantStatus, p.Status)
		})
	}
}

func TestService_Vote(t *testing.T) {
	postID := uuid.New()
	posterID := uuid.New()
	voterID := uuid.New()

	pending := func() *post.Post {
		return &post.Post{
			ID:       postID,
			UserID:   posterID,
			Status:   post.StatusPending,
			Deadline: time.Now().Add(time.Hour),
		}
	}

	type testCase struct {
		name      string
		voter     uuid.UUID
		kind      post.VoteKind
		setupMock func(m serviceMocks)
		wantErr   error
	}

	tests := []testCase{
		{
			name:  "Success",
			voter: voterID,
			kind:  post.VoteBuy,
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().GetPost(gomock.Any(), postID).Return(pending(), nil)
				m.repo.EXPECT().
					UpsertVote(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, b *post.Ballot) error {
						assert.Equal(t, post.VoteBuy, b.Kind)
						assert.Equal(t, voterID, b.UserID)
						return nil
					})
			},
		},
		{
			name:  "PosterCannotVote",
			voter: posterID,
			kind:  post.VoteNeutral,
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().GetPost(gomock.Any(), postID).Return(pending(), nil)
			},
			wantErr: post.ErrOwnPost,
		},
		{
			name:  "ClosedPostRejectsVotes",
			voter: voterID,
			kind:  post.VoteDontBuy,
			setupMock: func(m serviceMocks) {
				p := pending()
				p.Status = post.StatusClosed
				m.repo.EXPECT().GetPost(gomock.Any(), postID).Return(p, nil)
			},
			wantErr: post.ErrVotingClosed,
		},
		{
			name:  "PastDeadlineClosesAndRejects",
			voter: voterID,
			kind:  post.VoteBuy,
			setupMock: func(m serviceMocks) {
				p := pending()
				p.Deadline = time.Now().Add(-time.Minute)
				m.repo.EXPECT().GetPost(gomock.Any(), postID).Return(p, nil)
				m.repo.EXPECT().MarkClosed(gomock.Any(), postID).Return(nil)
				m.repo.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantErr: post.ErrVotingClosed,
		},
		{
			name:    "InvalidKind",
			voter:   voterID,
			kind:    post.VoteKind("maybe"),
			wantErr: post.ErrInvalidVote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			if tt.setupMock != nil {
				tt.setupMock(m)
			}

			err := svc.Vote(context.Background(), postID, tt.voter, tt.kind, "")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_Decide(t *testing.T) {
	postID := uuid.New()
	posterID := uuid.New()

	existing := func() *post.Post {
		return &post.Post{
			ID:     postID,
			UserID: posterID,
			Price:  150000,
			Status: post.StatusClosed,
		}
	}

	t.Run("SkippedCreditsSavings", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().GetPost(gomock.Any(), postID).Return(existing(), nil)
		m.repo.EXPECT().
			SetDecision(gomock.Any(), postID, post.DecisionSkipped, gomock.Any()).
			Return(nil)
		m.savings.EXPECT().
			Credit(gomock.Any(), posterID, int64(150000)).
			Return(int64(150000), nil)

		p, err := svc.Decide(context.Background(), postID, posterID, post.DecisionSkipped)
		require.NoError(t, err)
		assert.Equal(t, post.StatusDecided, p.Status)
		assert.Equal(t, post.DecisionSkipped, p.Decision)
		assert.NotNil(t, p.DecidedAt)
	})

	t.Run("BoughtDoesNotTouchSavings", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().GetPost(gomock.Any(), postID).Return(existing(), nil)
		m.repo.EXPECT().
			SetDecision(gomock.Any(), postID, post.DecisionBought, gomock.Any()).
			Return(nil)

		p, err := svc.Decide(context.Background(), postID, posterID, post.DecisionBought)
		require.NoError(t, err)
		assert.Equal(t, post.DecisionBought, p.Decision)
	})

	t.Run("OnlyPosterMayDecide", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().GetPost(gomock.Any(), postID).Return(existing(), nil)

		_, err := svc.Decide(context.Background(), postID, uuid.New(), post.DecisionBought)
		assert.ErrorIs(t, err, post.ErrNotPoster)
	})

	t.Run("InvalidDecision", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.Decide(context.Background(), postID, posterID, post.Decision("returned"))
		assert.ErrorIs(t, err, post.ErrInvalidDecision)
	})
}

func TestService_Delete(t *testing.T) {
	postID := uuid.New()
	posterID := uuid.New()

	t.Run("PendingOwnPost", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().GetPost(gomock.Any(), postID).Return(&post.Post{
			ID:        postID,
			UserID:    posterID,
			Status:    post.StatusPending,
			ImagePath: "uploads/x.jpg",
		}, nil)
		m.repo.EXPECT().DeletePost(gomock.Any(), postID).Return(nil)

		imagePath, err := svc.Delete(context.Background(), postID, posterID)
		require.NoError(t, err)
		assert.Equal(t, "uploads/x.jpg", imagePath)
	})

	t.Run("NotPoster", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().GetPost(gomock.Any(), postID).Return(&post.Post{
			ID:     postID,
			UserID: posterID,
			Status: post.StatusPending,
		}, nil)

		_, err := svc.Delete(context.Background(), postID, uuid.New())
		assert.ErrorIs(t, err, post.ErrNotPoster)
	})

	t.Run("DecidedPostRefused", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().GetPost(gomock.Any(), postID).Return(&post.Post{
			ID:     postID,
			UserID: posterID,
			Status: post.StatusDecided,
		}, nil)

		_, err := svc.Delete(context.Background(), postID, posterID)
		assert.ErrorIs(t, err, post.ErrNotPending)
	})
}

func TestService_Annotation(t *testing.T) {
	posterID := uuid.New()
	p := &post.Post{ID: uuid.New(), UserID: posterID, ItemName: "Nike Shoes"}

	t.Run("HistoryIncludesThePostItself", func(t *testing.T) {
		// The poster's full history naturally contains the rendered post's own
		// name; the annotation uses it as-is.
		svc, m := newService(t)

		m.repo.EXPECT().
			ListItemNames(gomock.Any(), posterID).
			Return([]string{"Nike Shoes", "Desk Lamp"}, nil)

		got := svc.Annotation(context.Background(), p)
		assert.Equal(t, similarity.KindMatch, got.Kind)
		assert.Equal(t, "Nike Shoes", got.Matched)
	})

	t.Run("LookupFailureDegradesToNoMatch", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().
			ListItemNames(gomock.Any(), posterID).
			Return(nil, errors.New("db error"))

		got := svc.Annotation(context.Background(), p)
		assert.Equal(t, similarity.KindNoMatch, got.Kind)
	})
}

func TestService_VoteSummary(t *testing.T) {
	svc, m := newService(t)
	postID := uuid.New()

	m.repo.EXPECT().ListVotes(gomock.Any(), postID).Return([]*post.Ballot{
		{Kind: post.VoteBuy},
		{Kind: post.VoteBuy},
		{Kind: post.VoteDontBuy},
		{Kind: post.VoteNeutral},
	}, nil)

	counts, ballots, err := svc.VoteSummary(context.Background(), postID)
	require.NoError(t, err)
	assert.Equal(t, post.VoteCounts{Buy: 2, DontBuy: 1, Neutral: 1}, counts)
	assert.Len(t, ballots, 4)
}

func TestService_SweepDeadlines(t *testing.T) {
	svc, m := newService(t)
	now := time.Now().UTC()

	due := &post.Post{
		ID:       uuid.New(),
		GroupID:  uuid.New(),
		Status:   post.StatusPending,
		Deadline: now.Add(-time.Minute),
	}
	soon := &post.Post{
		ID:       uuid.New(),
		GroupID:  uuid.New(),
		Status:   post.StatusPending,
		Deadline: now.Add(30 * time.Minute),
	}

	m.repo.EXPECT().ListPendingDue(gomock.Any(), now).Return([]*post.Post{due}, nil)
	m.repo.EXPECT().MarkClosed(gomock.Any(), due.ID).Return(nil)
	m.repo.EXPECT().
		CreateNotification(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *post.Notification) error {
			assert.Equal(t, post.NotifyClosed, n.Type)
			return nil
		})
	m.repo.EXPECT().
		ListClosingSoon(gomock.Any(), now, now.Add(time.Hour)).
		Return([]*post.Post{soon}, nil)
	m.repo.EXPECT().
		CreateNotification(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *post.Notification) error {
			assert.Equal(t, post.NotifyClosingSoon, n.Type)
			return nil
		})

	require.NoError(t, svc.SweepDeadlines(context.Background(), now))
	assert.Equal(t, post.StatusClosed, due.Status)
}
