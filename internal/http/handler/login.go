package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"hackernews/internal/http/middleware"
	"hackernews/internal/model"
	"hackernews/internal/service"
	"hackernews/internal/web"
)

// LoginForm renders the login and create-account forms.
func LoginForm(view *web.Renderer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return render(c, view, fiber.StatusOK, "login", "Login", web.LoginView{
			Goto: safeGoto(c.Query("goto"), "/news"),
		})
	}
}

// Login authenticates (creating=f) or registers (creating=t) and starts a session.
func Login(users service.UserService, sessions service.SessionService, view *web.Renderer, secureCookies bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		acct := c.FormValue("acct")
		pw := c.FormValue("pw")
		v := web.LoginView{Goto: safeGoto(c.FormValue("goto"), "/news"), Username: acct}

		var (
			u   *model.User
			err error
		)
		if c.FormValue("creating") == "t" {
			u, err = users.Register(ctx, acct, pw)
			if service.IsValidation(err) {
				v.Username = ""
				v.SignupError = err.Error()
				return render(c, view, fiber.StatusBadRequest, "login", "Login", v)
			}
		} else {
			u, err = users.Authenticate(ctx, acct, pw)
			if errors.Is(err, service.ErrInvalidLogin) {
				v.LoginError = "Bad login."
				return render(c, view, fiber.StatusUnauthorized, "login", "Login", v)
			}
		}
		if err != nil {
			return err
		}

		sess, err := sessions.Create(ctx, u.ID)
		if err != nil {
			return err
		}
		c.Cookie(&fiber.Cookie{
			Name:     middleware.SessionCookieName,
			Value:    sess.ID,
			Path:     "/",
			Expires:  sess.ExpiresAt,
			HTTPOnly: true,
			Secure:   secureCookies,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.Redirect(v.Goto, fiber.StatusSeeOther)
	}
}

// Logout ends the current session.
func Logout(sessions service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies(middleware.SessionCookieName); sid != "" {
			if err := sessions.Delete(c.UserContext(), sid); err != nil {
				return err
			}
		}
		c.ClearCookie(middleware.SessionCookieName)
		return c.Redirect("/news", fiber.StatusSeeOther)
	}
}
