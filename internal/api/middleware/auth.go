package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/onduty/roster/internal/core/domain"
)

// SessionKey is the echo context key holding the caller's domain.Session.
const SessionKey = "session"

// Authenticator turns a bearer token into a session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Session, error)
}

// Auth validates the bearer token and injects the session into the context.
func Auth(authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			session, err := authn.Authenticate(c.Request().Context(), parts[1])
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrSessionRevoked):
					return echo.NewHTTPError(http.StatusUnauthorized, "session revoked")
				case errors.Is(err, domain.ErrInvalidCredentials):
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				return err
			}

			c.Set(SessionKey, session)
			return next(c)
		}
	}
}

// SessionFrom returns the session stored by Auth.
func SessionFrom(c echo.Context) (domain.Session, bool) {
	s, ok := c.Get(SessionKey).(domain.Session)
	return s, ok && s.UserID != ""
}
