package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"hackernews/internal/auth"
	"hackernews/internal/model"
	"hackernews/internal/repository"
)

const (
	minPasswordLength = 8
	// bcrypt refuses longer input.
	maxPasswordLength = 72
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{2,15}$`)

// UserService defines the use cases for accounts.
type UserService interface {
	// Get returns a user by id.
	Get(ctx context.Context, id string) (*model.User, error)

	// Register creates an account with a bcrypt-hashed password.
	Register(ctx context.Context, id, password string) (*model.User, error)

	// Authenticate returns the user when the password matches, ErrInvalidLogin otherwise.
	Authenticate(ctx context.Context, id, password string) (*model.User, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService constructs a new UserService.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) Register(ctx context.Context, id, password string) (*model.User, error) {
	id = strings.TrimSpace(id)
	if !usernamePattern.MatchString(id) {
		return nil, ErrInvalidUsername
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if len(password) > maxPasswordLength {
		return nil, ErrPasswordTooLong
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repo.Create(ctx, &model.User{
		ID:           id,
		PasswordHash: hash,
		Karma:        1,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, id, password string) (*model.User, error) {
	u, err := s.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidLogin
	}
	return u, nil
}
