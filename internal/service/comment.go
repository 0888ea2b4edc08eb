package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"hackernews/internal/model"
	"hackernews/internal/repository"
)

const maxCommentLength = 2000

// CommentService defines the use cases for comments.
type CommentService interface {
	// Get returns a comment by id.
	Get(ctx context.Context, id int64) (*model.Comment, error)

	// Submit stores a reply to the news item or comment identified by parentID.
	Submit(ctx context.Context, userID string, parentID int64, text string) (*model.Comment, error)
}

type commentService struct {
	comments repository.CommentRepository
	items    repository.NewsItemRepository
}

// NewCommentService constructs a new CommentService.
func NewCommentService(comments repository.CommentRepository, items repository.NewsItemRepository) CommentService {
	return &commentService{comments: comments, items: items}
}

func (s *commentService) Get(ctx context.Context, id int64) (*model.Comment, error) {
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *commentService) Submit(ctx context.Context, userID string, parentID int64, text string) (*model.Comment, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrTextRequired
	}
	if utf8.RuneCountInString(text) > maxCommentLength {
		return nil, ErrTextTooLong
	}

	newsItemID, err := s.threadOf(ctx, parentID)
	if err != nil {
		return nil, err
	}

	stored, err := s.comments.Create(ctx, &model.Comment{
		NewsItemID:  newsItemID,
		ParentID:    parentID,
		SubmitterID: userID,
		Text:        text,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("save comment: %w", err)
	}
	return stored, nil
}

// threadOf resolves the news item a reply to parentID belongs to.
// Ids are shared, so the parent is either a news item or a comment.
func (s *commentService) threadOf(ctx context.Context, parentID int64) (int64, error) {
	item, err := s.items.FindByID(ctx, parentID)
	if err == nil {
		return item.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	parent, err := s.Get(ctx, parentID)
	if err != nil {
		return 0, err
	}
	return parent.NewsItemID, nil
}
