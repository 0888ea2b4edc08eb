package model

import "time"

// User is a site account. ID is the username.
type User struct {
	ID           string     `json:"id"`
	PasswordHash string     `json:"-"`
	About        string     `json:"about"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty"`
	Karma        int        `json:"karma"`
	Posts        []int64    `json:"posts"`
	Likes        []int64    `json:"likes"`
	Hides        []int64    `json:"hides"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Session binds a browser cookie to a user until ExpiresAt.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
