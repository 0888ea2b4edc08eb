package mocks

import (
	"context"

	"hackernews/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) Get(ctx context.Context, id int64) (*model.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentService) Submit(ctx context.Context, userID string, parentID int64, text string) (*model.Comment, error) {
	args := m.Called(ctx, userID, parentID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}
