// Package auth carries the viewer's identity through a request and hashes passwords.
package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

type ctxKeyUserID struct{}

type ctxKeyReadOnly struct{}

// WithUserID returns a copy of ctx carrying the logged-in user's id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKeyUserID{}, userID)
}

// UserIDFrom returns the logged-in user's id, or false for anonymous requests.
func UserIDFrom(ctx context.Context) (string, bool) {
	id, _ := ctx.Value(ctxKeyUserID{}).(string)
	return id, id != ""
}

// WithReadOnly marks ctx as serving a request that must not change state, such as a GET.
func WithReadOnly(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKeyReadOnly{}, true)
}

// IsReadOnly reports whether ctx was marked by WithReadOnly.
func IsReadOnly(ctx context.Context) bool {
	ro, _ := ctx.Value(ctxKeyReadOnly{}).(bool)
	return ro
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
