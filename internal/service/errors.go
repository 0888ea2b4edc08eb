package service

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthenticated   = errors.New("must be logged in")
	ErrTitleRequired     = errors.New("title is required")
	ErrTitleTooLong      = errors.New("title must be at most 80 characters")
	ErrInvalidURL        = errors.New("url must be an absolute http or https address")
	ErrContentRequired   = errors.New("either url or text is required")
	ErrTextRequired      = errors.New("text is required")
	ErrTextTooLong       = errors.New("text is too long")
	ErrInvalidUsername   = errors.New("username must be 2-15 letters, digits, dashes or underscores")
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong   = errors.New("password must be at most 72 bytes")
	ErrUsernameTaken     = errors.New("username is taken")
	ErrInvalidLogin      = errors.New("bad login")
	ErrNoSession         = errors.New("session not found")
	ErrSearchUnavailable = errors.New("search is not configured")
	ErrSearchExhausted   = errors.New("no more search results")
	ErrArchiveDisabled   = errors.New("front page archive is not configured")
)

// IsValidation reports whether err is caused by bad user input rather than a failure.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrTitleRequired, ErrTitleTooLong, ErrInvalidURL, ErrContentRequired,
		ErrTextRequired, ErrTextTooLong, ErrInvalidUsername, ErrPasswordTooShort, ErrPasswordTooLong,
		ErrUsernameTaken, ErrInvalidLogin,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
