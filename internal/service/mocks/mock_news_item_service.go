package mocks

import (
	"context"

	"hackernews/internal/model"
	"hackernews/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockNewsItemService struct {
	mock.Mock
}

func (m *MockNewsItemService) item(args mock.Arguments) (*model.NewsItem, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NewsItem), args.Error(1)
}

func (m *MockNewsItemService) Get(ctx context.Context, id int64) (*model.NewsItem, error) {
	return m.item(m.Called(ctx, id))
}

func (m *MockNewsItemService) Feed(ctx context.Context, feed model.FeedType, first, skip int) ([]model.NewsItem, error) {
	args := m.Called(ctx, feed, first, skip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.NewsItem), args.Error(1)
}

func (m *MockNewsItemService) Upvote(ctx context.Context, id int64, userID string) (*model.NewsItem, error) {
	return m.item(m.Called(ctx, id, userID))
}

func (m *MockNewsItemService) Unvote(ctx context.Context, id int64, userID string) (*model.NewsItem, error) {
	return m.item(m.Called(ctx, id, userID))
}

func (m *MockNewsItemService) Hide(ctx context.Context, id int64, userID string) (*model.NewsItem, error) {
	return m.item(m.Called(ctx, id, userID))
}

func (m *MockNewsItemService) Unhide(ctx context.Context, id int64, userID string) (*model.NewsItem, error) {
	return m.item(m.Called(ctx, id, userID))
}

func (m *MockNewsItemService) Submit(ctx context.Context, userID string, in service.SubmitNewsItemInput) (*model.NewsItem, error) {
	return m.item(m.Called(ctx, userID, in))
}
