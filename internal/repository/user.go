package repository

import (
	"context"
	"time"

	"hackernews/internal/model"
)

// UserRepository defines persistence for accounts.
type UserRepository interface {
	// Create inserts a user. It returns ErrDuplicate when the id is taken.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns the user with their posts, likes and hides.
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// SessionRepository defines persistence for login sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes sessions that expired before now and returns how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
