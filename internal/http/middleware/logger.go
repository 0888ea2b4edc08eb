package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// handledErrorKey keeps an error that was already passed to the app's error handler.
const handledErrorKey = "handled_error"

// respond hands err to the app's error handler so the status read afterwards is the
// one the client gets, and remembers err for outer middleware.
func respond(c *fiber.Ctx, err error) {
	if err == nil {
		return
	}
	c.Locals(handledErrorKey, err)
	if herr := c.App().ErrorHandler(c, err); herr != nil {
		_ = c.SendStatus(fiber.StatusInternalServerError)
	}
}

// handledError returns the error recorded by respond, if any.
func handledError(c *fiber.Ctx) error {
	err, _ := c.Locals(handledErrorKey).(error)
	return err
}

// Logger logs one structured line per request with request_id, method, path,
// status, latency (milliseconds) and, when logged in, user_id.
// 5xx responses log at error level and 4xx at warn.
func Logger(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		respond(c, c.Next())
		err := handledError(c)
		status := c.Response().StatusCode()

		attrs := []slog.Attr{
			slog.String("request_id", RequestIDFrom(c)),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Float64("latency", float64(time.Since(start).Microseconds())/1000),
		}
		if userID := UserIDFrom(c); userID != "" {
			attrs = append(attrs, slog.String("user_id", userID))
		}
		if err != nil && status >= fiber.StatusInternalServerError {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		level := slog.LevelInfo
		switch {
		case status >= fiber.StatusInternalServerError:
			level = slog.LevelError
		case status >= fiber.StatusBadRequest:
			level = slog.LevelWarn
		}
		log.LogAttrs(c.UserContext(), level, "http_request", attrs...)

		return nil
	}
}
