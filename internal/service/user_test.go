package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"hackernews/internal/auth"
	"hackernews/internal/model"
	"hackernews/internal/repository"
	repoMocks "hackernews/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		id       string
		password string
		setup    func(r *repoMocks.MockUserRepository)
		wantErr  error
	}{
		{name: "short username", id: "a", password: "password1", wantErr: ErrInvalidUsername},
		{name: "bad characters", id: "bob smith", password: "password1", wantErr: ErrInvalidUsername},
		{name: "long username", id: "abcdefghijklmnop", password: "password1", wantErr: ErrInvalidUsername},
		{name: "short password", id: "bob", password: "1234567", wantErr: ErrPasswordTooShort},
		{name: "long password", id: "bob", password: strings.Repeat("p", 80), wantErr: ErrPasswordTooLong},
		{
			name: "taken", id: "bob", password: "password1",
			setup: func(r *repoMocks.MockUserRepository) {
				r.On("Create", ctx, mock.Anything).
					Return(nil, fmt.Errorf("insert user: %w", repository.ErrDuplicate))
			},
			wantErr: ErrUsernameTaken,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repoMocks.MockUserRepository)
			if tt.setup != nil {
				tt.setup(repo)
			}

			_, err := NewUserService(repo).Register(ctx, tt.id, tt.password)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("happy path", func(t *testing.T) {
		repo := new(repoMocks.MockUserRepository)
		repo.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.ID == "bob_1" && u.Karma == 1 && auth.CheckPassword(u.PasswordHash, "password1")
		})).Return(&model.User{ID: "bob_1", Karma: 1}, nil)

		u, err := NewUserService(repo).Register(ctx, " bob_1 ", "password1")

		require.NoError(t, err)
		assert.Equal(t, "bob_1", u.ID)
		repo.AssertExpectations(t)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.HashPassword("password1")
	require.NoError(t, err)

	repo := new(repoMocks.MockUserRepository)
	repo.On("FindByID", ctx, "bob").Return(&model.User{ID: "bob", PasswordHash: hash}, nil)
	repo.On("FindByID", ctx, "ghost").Return(nil, sql.ErrNoRows)
	repo.On("FindByID", ctx, "broken").Return(nil, errors.New("timeout"))
	svc := NewUserService(repo)

	u, err := svc.Authenticate(ctx, "bob", "password1")
	require.NoError(t, err)
	assert.Equal(t, "bob", u.ID)

	_, err = svc.Authenticate(ctx, "bob", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidLogin)

	_, err = svc.Authenticate(ctx, "ghost", "password1")
	assert.ErrorIs(t, err, ErrInvalidLogin)

	_, err = svc.Authenticate(ctx, "broken", "password1")
	assert.EqualError(t, err, "timeout")
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(ErrPasswordTooLong))
	assert.True(t, IsValidation(fmt.Errorf("register: %w", ErrPasswordTooShort)))
	assert.False(t, IsValidation(ErrNotFound))
	assert.False(t, IsValidation(errors.New("hash password: bcrypt: password length exceeds 72 bytes")))
}
