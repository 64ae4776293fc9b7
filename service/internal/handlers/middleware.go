package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/bezique/service/internal/auth"
)

const (
	headerRequestID = "X-Request-Id"
	ctxRequestID    = "request_id"
	ctxUserID       = "user_id"
)

// RequestIDMiddleware ensures every request has an X-Request-Id.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(headerRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(headerRequestID, id)
			c.Set(ctxRequestID, id)
			return next(c)
		}
	}
}

// LoggingMiddleware logs each request once it has been served.
func LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logrus.WithFields(logrus.Fields{
				"request_id": c.Get(ctxRequestID),
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"status":     c.Response().Status,
				"latency_ms": time.Since(start).Milliseconds(),
			}).Info("request")
			return nil
		}
	}
}

// tokenFrom reads a bearer token from the Authorization header, falling back
// to the "token" query parameter for websocket clients.
func tokenFrom(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.QueryParam("token")
}

// RequireAuth rejects requests without a valid token and stores the user id.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := auth.AuthenticateJWT(tokenFrom(c))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}
			c.Set(ctxUserID, id)
			return next(c)
		}
	}
}

// optionalUser is the caller's id when a valid token was sent, else uuid.Nil.
func optionalUser(c echo.Context) uuid.UUID {
	if id, ok := c.Get(ctxUserID).(uuid.UUID); ok {
		return id
	}
	if tok := tokenFrom(c); tok != "" {
		if id, err := auth.AuthenticateJWT(tok); err == nil {
			return id
		}
	}
	return uuid.Nil
}
