package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/saasportal/admin-api/internal/core/domain"
)

// RequirePermission gates a route on a single capability. The admin wildcard
// passes every check; the service layer still runs its own finer-grained
// guards (admin-target, self-action) after this.
func RequirePermission(perm domain.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := UserFromContext(c)
			if user == nil {
				return domain.ErrUnauthenticated
			}
			if !user.HasPermission(perm) {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// RequireRole gates a route on role membership. Admin satisfies any role.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := UserFromContext(c)
			if user == nil {
				return domain.ErrUnauthenticated
			}
			for _, r := range roles {
				if user.HasRole(r) {
					return next(c)
				}
			}
			return domain.ErrForbidden
		}
	}
}
