package repository

import (
	"context"

	"hackernews/internal/model"
)

// CommentRepository defines persistence for comments.
type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) (*model.Comment, error)
	// FindByID returns the comment with the ids of its direct replies.
	FindByID(ctx context.Context, id int64) (*model.Comment, error)
}
