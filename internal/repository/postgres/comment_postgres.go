package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"hackernews/internal/model"
	"hackernews/internal/repository"
)

// CommentPostgres is a PostgreSQL implementation of repository.CommentRepository.
type CommentPostgres struct {
	db *sql.DB
}

// NewCommentPostgres creates a new CommentPostgres repository.
func NewCommentPostgres(db *sql.DB) *CommentPostgres {
	return &CommentPostgres{db: db}
}

var _ repository.CommentRepository = (*CommentPostgres)(nil)

// Create inserts a comment and returns it with its assigned id.
func (r *CommentPostgres) Create(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	const q = `
		INSERT INTO comments (news_item_id, parent_id, submitter_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	out := *c
	if err := r.db.QueryRowContext(ctx, q,
		c.NewsItemID,
		c.ParentID,
		c.SubmitterID,
		c.Text,
		c.CreatedAt,
	).Scan(&out.ID, &out.CreatedAt); err != nil {
		return nil, err
	}
	out.CommentIDs = []int64{}
	return &out, nil
}

// FindByID fetches a comment with the ids of its direct replies.
func (r *CommentPostgres) FindByID(ctx context.Context, id int64) (*model.Comment, error) {
	const q = `
		SELECT c.id, c.news_item_id, c.parent_id, c.submitter_id, c.text, c.created_at,
			COALESCE((SELECT string_agg(r.id::text, ',' ORDER BY r.id) FROM comments r WHERE r.parent_id = c.id), '')
		FROM comments c
		WHERE c.id = $1
	`
	var (
		c       model.Comment
		replies string
	)
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&c.ID,
		&c.NewsItemID,
		&c.ParentID,
		&c.SubmitterID,
		&c.Text,
		&c.CreatedAt,
		&replies,
	); err != nil {
		return nil, err
	}
	ids, err := splitItemIDs(replies)
	if err != nil {
		return nil, fmt.Errorf("parse reply ids: %w", err)
	}
	c.CommentIDs = ids
	return &c, nil
}
