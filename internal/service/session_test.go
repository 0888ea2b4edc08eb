package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"hackernews/internal/model"
	repoMocks "hackernews/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fixedSessionService(repo *repoMocks.MockSessionRepository, now time.Time) *sessionService {
	return &sessionService{repo: repo, ttl: time.Hour, now: func() time.Time { return now }}
}

func TestSessionService_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := new(repoMocks.MockSessionRepository)
	repo.On("Create", ctx, mock.MatchedBy(func(s *model.Session) bool {
		_, err := uuid.Parse(s.ID)
		return err == nil && s.UserID == "bob" && s.ExpiresAt.Equal(now.Add(time.Hour))
	})).Return(nil)

	sess, err := fixedSessionService(repo, now).Create(ctx, "bob")

	require.NoError(t, err)
	assert.Equal(t, "bob", sess.UserID)
	repo.AssertExpectations(t)

	_, err = fixedSessionService(repo, now).Create(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSessionService_Resolve(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	live := uuid.NewString()
	stale := uuid.NewString()
	gone := uuid.NewString()

	repo := new(repoMocks.MockSessionRepository)
	repo.On("FindByID", ctx, live).Return(&model.Session{ID: live, UserID: "bob", ExpiresAt: now.Add(time.Minute)}, nil)
	repo.On("FindByID", ctx, stale).Return(&model.Session{ID: stale, UserID: "bob", ExpiresAt: now}, nil)
	repo.On("FindByID", ctx, gone).Return(nil, sql.ErrNoRows)
	svc := fixedSessionService(repo, now)

	userID, err := svc.Resolve(ctx, live)
	require.NoError(t, err)
	assert.Equal(t, "bob", userID)

	_, err = svc.Resolve(ctx, stale)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = svc.Resolve(ctx, gone)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = svc.Resolve(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNoSession)
	repo.AssertNotCalled(t, "FindByID", ctx, "not-a-uuid")
}

func TestSessionService_DeleteAndPurge(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	id := uuid.NewString()

	repo := new(repoMocks.MockSessionRepository)
	repo.On("Delete", ctx, id).Return(nil)
	repo.On("DeleteExpired", ctx, now).Return(int64(4), nil)
	svc := fixedSessionService(repo, now)

	assert.NoError(t, svc.Delete(ctx, id))
	assert.NoError(t, svc.Delete(ctx, "garbage"))

	n, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	repo.AssertNumberOfCalls(t, "Delete", 1)
}
