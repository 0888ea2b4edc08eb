package mocks

import (
	"context"

	"hackernews/internal/model"
	"hackernews/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockNewsItemRepository struct {
	mock.Mock
}

func (m *MockNewsItemRepository) Create(ctx context.Context, item *model.NewsItem) (*model.NewsItem, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NewsItem), args.Error(1)
}

func (m *MockNewsItemRepository) FindByID(ctx context.Context, id int64) (*model.NewsItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NewsItem), args.Error(1)
}

func (m *MockNewsItemRepository) ListFeed(ctx context.Context, feed model.FeedType, pq repository.PageQuery) ([]model.NewsItem, error) {
	args := m.Called(ctx, feed, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.NewsItem), args.Error(1)
}

func (m *MockNewsItemRepository) AddUpvote(ctx context.Context, id int64, userID string) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockNewsItemRepository) RemoveUpvote(ctx context.Context, id int64, userID string) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockNewsItemRepository) AddHide(ctx context.Context, id int64, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockNewsItemRepository) RemoveHide(ctx context.Context, id int64, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
