package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"hackernews/internal/http/middleware"
	"hackernews/internal/service"
	"hackernews/internal/web"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// apiPaths answer errors with JSON regardless of the Accept header.
var apiPaths = map[string]bool{
	"/graphql": true,
	"/health":  true,
	"/healthz": true,
	"/metrics": true,
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// classify maps err to a status, a machine code and a message that is safe to show.
func classify(err error) (int, string, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		switch fe.Code {
		case fiber.StatusBadRequest:
			return fe.Code, "BAD_REQUEST", "bad request"
		case fiber.StatusUnauthorized:
			return fe.Code, "UNAUTHENTICATED", "must be logged in"
		case fiber.StatusNotFound:
			return fe.Code, "NOT_FOUND", "resource not found"
		case fiber.StatusMethodNotAllowed:
			return fe.Code, "METHOD_NOT_ALLOWED", "method not allowed"
		case fiber.StatusServiceUnavailable:
			return fe.Code, "SERVICE_UNAVAILABLE", "dependency unavailable"
		}
		if fe.Code < fiber.StatusInternalServerError {
			return fe.Code, "CLIENT_ERROR", fe.Message
		}
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, service.ErrUnauthenticated):
		return fiber.StatusUnauthorized, "UNAUTHENTICATED", "must be logged in"
	case service.IsValidation(err):
		return fiber.StatusBadRequest, "VALIDATION_FAILED", err.Error()
	}
	return fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
}

func wantsJSON(c *fiber.Ctx) bool {
	if apiPaths[c.Path()] {
		return true
	}
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}

// ErrorHandler returns a Fiber global error handler. API routes get the JSON
// envelope; page routes get the HTML error page. A nil view always answers JSON.
func ErrorHandler(view *web.Renderer) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, code, message := classify(err)

		if view == nil || wantsJSON(c) {
			return writeError(c, status, code, message)
		}

		c.Status(status).Type("html", "utf-8")
		page := &web.Page{
			Title:  "Error",
			Path:   c.Path(),
			Viewer: middleware.UserIDFrom(c),
			Body:   web.ErrorView{Status: status, Message: message},
		}
		if rerr := view.Render(c, "error", page); rerr != nil {
			return c.Status(status).Type("txt").SendString(message)
		}
		return nil
	}
}
