package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hackernews/internal/model"
	"hackernews/internal/repository"
)

// SessionService defines cookie session use cases.
type SessionService interface {
	// Create starts a session for userID.
	Create(ctx context.Context, userID string) (*model.Session, error)

	// Resolve returns the user id of a live session, or ErrNoSession.
	Resolve(ctx context.Context, sessionID string) (string, error)

	// Delete ends a session. Unknown ids are ignored.
	Delete(ctx context.Context, sessionID string) error

	// PurgeExpired removes every expired session.
	PurgeExpired(ctx context.Context) (int64, error)
}

type sessionService struct {
	repo repository.SessionRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewSessionService constructs a SessionService whose sessions live for ttl.
func NewSessionService(repo repository.SessionRepository, ttl time.Duration) SessionService {
	return &sessionService{repo: repo, ttl: ttl, now: time.Now}
}

func (s *sessionService) Create(ctx context.Context, userID string) (*model.Session, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	now := s.now().UTC()
	sess := &model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

func (s *sessionService) Resolve(ctx context.Context, sessionID string) (string, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return "", ErrNoSession
	}
	sess, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNoSession
		}
		return "", err
	}
	if !sess.ExpiresAt.After(s.now()) {
		return "", ErrNoSession
	}
	return sess.UserID, nil
}

func (s *sessionService) Delete(ctx context.Context, sessionID string) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil
	}
	return s.repo.Delete(ctx, sessionID)
}

func (s *sessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now().UTC())
}
