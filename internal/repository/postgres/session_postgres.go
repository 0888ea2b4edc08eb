package postgres

import (
	"context"
	"database/sql"
	"time"

	"hackernews/internal/model"
	"hackernews/internal/repository"
)

// SessionPostgres is a PostgreSQL implementation of repository.SessionRepository.
type SessionPostgres struct {
	db *sql.DB
}

// NewSessionPostgres creates a new SessionPostgres repository.
func NewSessionPostgres(db *sql.DB) *SessionPostgres {
	return &SessionPostgres{db: db}
}

var _ repository.SessionRepository = (*SessionPostgres)(nil)

func (r *SessionPostgres) Create(ctx context.Context, s *model.Session) error {
	const q = `INSERT INTO sessions (id, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, q, s.ID, s.UserID, s.ExpiresAt, s.CreatedAt)
	return err
}

func (r *SessionPostgres) FindByID(ctx context.Context, id string) (*model.Session, error) {
	const q = `SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = $1`
	var s model.Session
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM sessions WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

func (r *SessionPostgres) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM sessions WHERE expires_at < $1`
	res, err := r.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
