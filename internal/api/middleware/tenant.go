package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/saasportal/admin-api/internal/core/domain"
	"github.com/saasportal/admin-api/internal/core/ports"
)

// Context keys set by the request middleware chain.
const (
	TenantContextKey = "tenant"
	UserContextKey   = "user"
)

// ResolveTenant identifies the tenant for every request, in order of
// precedence: X-Tenant-Slug header, ?tenant query parameter, the request's
// Host matched against registered custom domains, then the configured
// fallback slug. The fallback also catches slugs and domains that match no
// tenant. Resolution failure is a hard 404; a tenant whose subscription has
// lapsed is rejected with 403.
func ResolveTenant(tenants ports.TenantRepository, fallbackSlug string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			var tenant *domain.Tenant
			var err error

			if slug := tenantSlug(c); slug != "" {
				tenant, err = tenants.FindBySlug(ctx, slug)
			} else if host := hostname(c.Request().Host); host != "" {
				tenant, err = tenants.FindByDomain(ctx, host)
			} else if fallbackSlug != "" {
				tenant, err = tenants.FindBySlug(ctx, fallbackSlug)
			}
			if tenant == nil && fallbackSlug != "" {
				tenant, err = tenants.FindBySlug(ctx, fallbackSlug)
			}

			if err != nil || tenant == nil {
				return domain.ErrTenantNotFound
			}

			if tenant.Status == domain.TenantSuspended || !tenant.SubscriptionActive(time.Now().UTC()) {
				return domain.ErrTenantInactive
			}

			c.Set(TenantContextKey, tenant)
			return next(c)
		}
	}
}

// TenantFromContext returns the tenant resolved by ResolveTenant, or nil when
// the middleware did not run.
func TenantFromContext(c echo.Context) *domain.Tenant {
	tenant, _ := c.Get(TenantContextKey).(*domain.Tenant)
	return tenant
}

// RequireTenant fast-fails handlers that must not run without a resolved
// tenant, guarding against route-wiring mistakes.
func RequireTenant(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if TenantFromContext(c) == nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "tenant not resolved")
		}
		return next(c)
	}
}

func tenantSlug(c echo.Context) string {
	if slug := strings.TrimSpace(c.Request().Header.Get("X-Tenant-Slug")); slug != "" {
		return strings.ToLower(slug)
	}
	if slug := strings.TrimSpace(c.QueryParam("tenant")); slug != "" {
		return strings.ToLower(slug)
	}
	return ""
}

// hostname strips the port and ignores bare localhost, which can never match
// a registered custom domain.
func hostname(host string) string {
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	host = strings.ToLower(host)
	if host == "" || host == "localhost" || host == "127.0.0.1" {
		return ""
	}
	return host
}
