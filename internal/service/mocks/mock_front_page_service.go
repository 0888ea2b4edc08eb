package mocks

import (
	"context"
	"time"

	"hackernews/internal/search"
	"hackernews/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockFrontPageService struct {
	mock.Mock
}

func (m *MockFrontPageService) Snapshot(ctx context.Context) (*service.FrontPage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FrontPage), args.Error(1)
}

func (m *MockFrontPageService) Get(ctx context.Context, day time.Time) (*service.FrontPage, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FrontPage), args.Error(1)
}

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, query string, page int) (*search.Result, error) {
	args := m.Called(ctx, query, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*search.Result), args.Error(1)
}
