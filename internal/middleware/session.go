package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserKey is the context key for the logged-in user
	UserKey contextKey = "user"
)

// SessionProvider reports the user of the active backend session
type SessionProvider interface {
	CurrentUser() (string, bool)
}

// RequireSession returns an Echo middleware that rejects requests while nobody is logged in
// and stores the user in the request context otherwise
func RequireSession(provider SessionProvider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := provider.CurrentUser()
			if !ok {
				log.Debug().Str("path", c.Request().URL.Path).Msg("Request without session")
				return unauthorizedError(c, "Log in before using the form")
			}

			ctx := context.WithValue(c.Request().Context(), UserKey, user)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetUser extracts the logged-in user from the context
func GetUser(c echo.Context) string {
	if user, ok := c.Request().Context().Value(UserKey).(string); ok {
		return user
	}
	return ""
}
