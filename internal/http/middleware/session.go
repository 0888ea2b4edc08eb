package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"hackernews/internal/auth"
	"hackernews/internal/service"
)

const (
	// SessionCookieName is the browser cookie carrying the session id.
	SessionCookieName = "session_id"
	// UserIDLocalKey is the key used to store the logged-in user id in Fiber's context locals.
	UserIDLocalKey = "user_id"
)

// SessionResolver maps a session id to a user id.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (string, error)
}

// Session resolves the session cookie and, for a live session, stores the
// user id in locals and in the request context (see auth.UserIDFrom).
// Stale cookies are cleared. Lookup failures leave the request anonymous.
func Session(sessions SessionResolver, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(SessionCookieName)
		if sid == "" {
			return c.Next()
		}

		userID, err := sessions.Resolve(c.UserContext(), sid)
		switch {
		case err == nil:
			c.Locals(UserIDLocalKey, userID)
			c.SetUserContext(auth.WithUserID(c.UserContext(), userID))
		case errors.Is(err, service.ErrNoSession):
			c.ClearCookie(SessionCookieName)
		default:
			log.Warn("session lookup failed",
				slog.String("request_id", RequestIDFrom(c)),
				slog.Any("err", err),
			)
		}
		return c.Next()
	}
}

// UserIDFrom returns the logged-in user id stored by Session, or "".
func UserIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDLocalKey).(string)
	return id
}

// RequireUser redirects anonymous requests to loginPath. The goto parameter
// is the original URL for GET, and the submitted goto (if any) otherwise.
func RequireUser(loginPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserIDFrom(c) != "" {
			return c.Next()
		}
		target := c.OriginalURL()
		if c.Method() != fiber.MethodGet {
			target = c.Query("goto", c.FormValue("goto"))
		}
		if target == "" {
			return c.Redirect(loginPath, fiber.StatusFound)
		}
		return c.Redirect(loginPath+"?goto="+url.QueryEscape(target), fiber.StatusFound)
	}
}
