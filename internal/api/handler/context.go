package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/saasportal/admin-api/internal/api/middleware"
	"github.com/saasportal/admin-api/internal/core/domain"
)

// ctxActor extracts the authenticated user and resolved tenant injected by
// the middleware chain, fast-failing before any service call when either is
// missing. Absence means a route was wired without its guards.
func ctxActor(c echo.Context) (*domain.User, *domain.Tenant, error) {
	user := middleware.UserFromContext(c)
	if user == nil {
		return nil, nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication context")
	}
	tenant := middleware.TenantFromContext(c)
	if tenant == nil {
		return nil, nil, echo.NewHTTPError(http.StatusInternalServerError, "tenant not resolved")
	}
	return user, tenant, nil
}

// ctxTenant extracts the resolved tenant for public tenant-scoped routes.
func ctxTenant(c echo.Context) (*domain.Tenant, error) {
	tenant := middleware.TenantFromContext(c)
	if tenant == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "tenant not resolved")
	}
	return tenant, nil
}
