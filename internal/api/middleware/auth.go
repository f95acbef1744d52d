package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/saasportal/admin-api/internal/core/domain"
	"github.com/saasportal/admin-api/internal/core/ports"
)

// JWTCookieName is the cookie the browser client stores the access token in.
// The Authorization header takes precedence when both are present.
const JWTCookieName = "jwt"

// Authenticate validates the request's access token against the resolved
// tenant and injects the live user record into the context. The token comes
// from the Authorization bearer header or the jwt cookie.
func Authenticate(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return domain.ErrUnauthenticated
			}

			user, err := auth.Authenticate(c.Request().Context(), token, TenantFromContext(c))
			if err != nil {
				return err
			}

			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

// UserFromContext returns the authenticated user, or nil when Authenticate
// did not run.
func UserFromContext(c echo.Context) *domain.User {
	user, _ := c.Get(UserContextKey).(*domain.User)
	return user
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}

	cookie, err := c.Cookie(JWTCookieName)
	if err != nil || cookie.Value == "" || cookie.Value == "loggedout" {
		return ""
	}
	return cookie.Value
}
