package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackernews/internal/auth"
	"hackernews/internal/logger"
	"hackernews/internal/service"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString(RequestIDFrom(c))
	})

	t.Run("should generate new request id if not present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		ridHeader := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, ridHeader)

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, ridHeader, buf.String())
	})

	t.Run("should preserve existing request id", func(t *testing.T) {
		existingID := "test-id-123"
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, existingID)

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, existingID, resp.Header.Get(RequestIDHeader))

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, existingID, buf.String())
	})

	t.Run("should replace oversized request id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", 65))

		resp, _ := app.Test(req)

		assert.Len(t, resp.Header.Get(RequestIDHeader), 36)
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()

	app.Use(RequestID())
	app.Use(Logger(logger.NewWithWriter(&buf, "test", "info")))

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var logData map[string]any
	err := json.Unmarshal(buf.Bytes(), &logData)
	assert.NoError(t, err)

	assert.NotEmpty(t, logData["request_id"])
	assert.Equal(t, "GET", logData["method"])
	assert.Equal(t, "/test", logData["path"])
	assert.Equal(t, float64(fiber.StatusAccepted), logData["status"])
	assert.Equal(t, "INFO", logData["level"])
	assert.NotNil(t, logData["latency"])
	assert.NotEmpty(t, logData["ts"])
	assert.NotContains(t, logData, "user_id")
}

func TestLogger_ErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(Logger(logger.NewWithWriter(&buf, "test", "info")))

	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("disk on fire")
	})

	app.Test(httptest.NewRequest("GET", "/missing", nil))
	app.Test(httptest.NewRequest("GET", "/boom", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var missing, boom map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &missing))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &boom))

	assert.Equal(t, "WARN", missing["level"])
	assert.Equal(t, float64(404), missing["status"])
	assert.Equal(t, "ERROR", boom["level"])
	assert.Equal(t, "disk on fire", boom["error"])
}

// notFoundAsJSON maps service.ErrNotFound the way the site's error handler does.
func notFoundAsJSON(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}
	return fiber.DefaultErrorHandler(c, err)
}

func TestLogger_UsesErrorHandlerStatus(t *testing.T) {
	var buf bytes.Buffer
	reg := prometheus.NewRegistry()
	prom, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: notFoundAsJSON})
	app.Use(Logger(logger.NewWithWriter(&buf, "test", "info")))
	app.Use(prom.Handler())
	app.Get("/item", func(c *fiber.Ctx) error {
		return fmt.Errorf("load item: %w", service.ErrNotFound)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/item?id=9", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, float64(404), line["status"])
	assert.Equal(t, "WARN", line["level"])
	assert.NotContains(t, line, "error")

	assert.Equal(t, 1.0, testutil.ToFloat64(prom.requestCount.WithLabelValues("GET", "/item", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(prom.requestCount.WithLabelValues("GET", "/item", "500")))
}

func TestLogger_KeepsErrorTextBehindPrometheus(t *testing.T) {
	var buf bytes.Buffer
	prom, err := NewPrometheusMiddleware(prometheus.NewRegistry())
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: notFoundAsJSON})
	app.Use(Logger(logger.NewWithWriter(&buf, "test", "info")))
	app.Use(prom.Handler())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("disk on fire")
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/boom", nil))
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ERROR", line["level"])
	assert.Equal(t, "disk on fire", line["error"])
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.requestCount.WithLabelValues("GET", "/boom", "500")))
}

type stubSessions map[string]string

func (s stubSessions) Resolve(_ context.Context, sid string) (string, error) {
	if sid == "broken" {
		return "", errors.New("db down")
	}
	if id, ok := s[sid]; ok {
		return id, nil
	}
	return "", service.ErrNoSession
}

func TestSession(t *testing.T) {
	app := fiber.New()
	app.Use(Session(stubSessions{"good": "bob"}, logger.Discard()))

	app.Get("/whoami", func(c *fiber.Ctx) error {
		ctxID, _ := auth.UserIDFrom(c.UserContext())
		return c.SendString(UserIDFrom(c) + "|" + ctxID)
	})

	body := func(t *testing.T, cookie string) (string, []string) {
		t.Helper()
		req := httptest.NewRequest("GET", "/whoami", nil)
		if cookie != "" {
			req.Header.Set("Cookie", SessionCookieName+"="+cookie)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		return buf.String(), resp.Header.Values("Set-Cookie")
	}

	t.Run("live session", func(t *testing.T) {
		got, cookies := body(t, "good")
		assert.Equal(t, "bob|bob", got)
		assert.Empty(t, cookies)
	})

	t.Run("no cookie", func(t *testing.T) {
		got, _ := body(t, "")
		assert.Equal(t, "|", got)
	})

	t.Run("stale cookie is cleared", func(t *testing.T) {
		got, cookies := body(t, "expired")
		assert.Equal(t, "|", got)
		require.Len(t, cookies, 1)
		assert.Contains(t, cookies[0], SessionCookieName+"=")
		assert.Contains(t, strings.ToLower(cookies[0]), "expires=")
	})

	t.Run("lookup failure stays anonymous", func(t *testing.T) {
		got, cookies := body(t, "broken")
		assert.Equal(t, "|", got)
		assert.Empty(t, cookies)
	})
}

func TestRequireUser(t *testing.T) {
	app := fiber.New()
	app.Use(Session(stubSessions{"good": "bob"}, logger.Discard()))
	app.Get("/submit", RequireUser("/login"), func(c *fiber.Ctx) error {
		return c.SendString("form")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/submit?x=1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?goto=%2Fsubmit%3Fx%3D1", resp.Header.Get("Location"))

	req := httptest.NewRequest("GET", "/submit", nil)
	req.Header.Set("Cookie", SessionCookieName+"=good")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireUser_PostKeepsGoto(t *testing.T) {
	app := fiber.New()
	app.Post("/vote", RequireUser("/login"), func(c *fiber.Ctx) error {
		return c.SendString("voted")
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/vote?id=3&goto=%2Fnewest", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?goto=%2Fnewest", resp.Header.Get("Location"))

	resp, err = app.Test(httptest.NewRequest("POST", "/vote?id=3", nil))
	require.NoError(t, err)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}
