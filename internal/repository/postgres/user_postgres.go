package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"hackernews/internal/model"
	"hackernews/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

// Create inserts a user row.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, password_hash, about, email, first_name, last_name, date_of_birth, karma, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	out := *u
	if err := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.PasswordHash,
		u.About,
		u.Email,
		u.FirstName,
		u.LastName,
		u.DateOfBirth,
		u.Karma,
		u.CreatedAt,
	).Scan(&out.CreatedAt); err != nil {
		return nil, translateErr(err)
	}
	out.Posts = []int64{}
	out.Likes = []int64{}
	out.Hides = []int64{}
	return &out, nil
}

// FindByID fetches a user with the ids of their submissions, upvotes and hides.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `
		SELECT u.id, u.password_hash, u.about, u.email, u.first_name, u.last_name, u.date_of_birth, u.karma, u.created_at,
			COALESCE((SELECT string_agg(n.id::text, ',' ORDER BY n.id DESC) FROM news_items n WHERE n.submitter_id = u.id), ''),
			COALESCE((SELECT string_agg(v.news_item_id::text, ',' ORDER BY v.created_at DESC) FROM news_item_upvotes v WHERE v.user_id = u.id), ''),
			COALESCE((SELECT string_agg(h.news_item_id::text, ',' ORDER BY h.created_at DESC) FROM news_item_hides h WHERE h.user_id = u.id), '')
		FROM users u
		WHERE u.id = $1
	`
	var (
		u                   model.User
		dob                 sql.NullTime
		posts, likes, hides string
	)
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&u.ID,
		&u.PasswordHash,
		&u.About,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&dob,
		&u.Karma,
		&u.CreatedAt,
		&posts,
		&likes,
		&hides,
	); err != nil {
		return nil, err
	}
	if dob.Valid {
		t := dob.Time
		u.DateOfBirth = &t
	}

	var err error
	if u.Posts, err = splitItemIDs(posts); err != nil {
		return nil, fmt.Errorf("parse posts: %w", err)
	}
	if u.Likes, err = splitItemIDs(likes); err != nil {
		return nil, fmt.Errorf("parse likes: %w", err)
	}
	if u.Hides, err = splitItemIDs(hides); err != nil {
		return nil, fmt.Errorf("parse hides: %w", err)
	}
	return &u, nil
}
