package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/saasportal/admin-api/internal/core/domain"
	"github.com/saasportal/admin-api/internal/core/ports"
)

// RBACHandler serves the role and permission catalog endpoints.
type RBACHandler struct {
	rbac ports.RBACService
}

func NewRBACHandler(rbac ports.RBACService) *RBACHandler {
	return &RBACHandler{rbac: rbac}
}

// Permissions returns the full capability catalog.
//
// @Summary      List all permissions
// @Tags         rbac
// @Produce      json
// @Success      200  {object}  envelope
// @Security     BearerAuth
// @Router       /api/rbac/permissions [get]
func (h *RBACHandler) Permissions(c echo.Context) error {
	return respond(c, http.StatusOK, "", h.rbac.Permissions())
}

// Roles lists the role catalog with live user counts.
//
// @Summary      List roles
// @Tags         rbac
// @Produce      json
// @Success      200  {object}  envelope
// @Security     BearerAuth
// @Router       /api/rbac/roles [get]
func (h *RBACHandler) Roles(c echo.Context) error {
	_, tenant, err := ctxActor(c)
	if err != nil {
		return err
	}

	roles, err := h.rbac.Roles(c.Request().Context(), tenant)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", map[string]any{"roles": roles})
}

// Role returns one role with its members.
//
// @Summary      Get a role
// @Tags         rbac
// @Produce      json
// @Param        role  path      string  true  "Role key"
// @Success      200   {object}  envelope
// @Failure      404   {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/rbac/roles/{role} [get]
func (h *RBACHandler) Role(c echo.Context) error {
	_, tenant, err := ctxActor(c)
	if err != nil {
		return err
	}

	info, members, err := h.rbac.Role(c.Request().Context(), tenant, domain.Role(c.Param("role")))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", map[string]any{"role": info, "users": members})
}

// UsersByRole returns one page of a role's members.
//
// @Summary      List users holding a role
// @Tags         rbac
// @Produce      json
// @Param        role   path      string  true   "Role key"
// @Param        page   query     int     false  "Page number"
// @Param        limit  query     int     false  "Page size"
// @Success      200    {object}  envelope
// @Failure      404    {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/rbac/roles/{role}/users [get]
func (h *RBACHandler) UsersByRole(c echo.Context) error {
	_, tenant, err := ctxActor(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.rbac.UsersByRole(c.Request().Context(), tenant, domain.Role(c.Param("role")), page, limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", result)
}

// RolePermissions returns the effective permission list of a role.
//
// @Summary      List a role's permissions
// @Tags         rbac
// @Produce      json
// @Param        role  path      string  true  "Role key"
// @Success      200   {object}  envelope
// @Failure      404   {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/rbac/roles/{role}/permissions [get]
func (h *RBACHandler) RolePermissions(c echo.Context) error {
	info, perms, err := h.rbac.RolePermissions(domain.Role(c.Param("role")))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", map[string]any{"role": info, "permissions": perms})
}

// AssignRole moves a user to a role.
//
// @Summary      Assign a role to a user
// @Tags         rbac
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "User id"
// @Param        body  body      assignRoleRequest  true  "Role to assign"
// @Success      200   {object}  envelope
// @Failure      403   {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/rbac/users/{id}/role [put]
func (h *RBACHandler) AssignRole(c echo.Context) error {
	actor, tenant, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req assignRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.rbac.AssignRole(c.Request().Context(), actor, tenant, c.Param("id"), req.Role)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "role assigned successfully", map[string]any{"user": updated})
}

// RemoveRole resets a user to the default role.
//
// @Summary      Remove a user's role
// @Tags         rbac
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  envelope
// @Failure      403  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/rbac/users/{id}/role [delete]
func (h *RBACHandler) RemoveRole(c echo.Context) error {
	actor, tenant, err := ctxActor(c)
	if err != nil {
		return err
	}

	updated, err := h.rbac.RemoveRole(c.Request().Context(), actor, tenant, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "role removed successfully", map[string]any{"user": updated})
}

// RoleStats returns the per-role status breakdown.
//
// @Summary      Role statistics
// @Tags         rbac
// @Produce      json
// @Success      200  {object}  envelope
// @Security     BearerAuth
// @Router       /api/rbac/stats [get]
func (h *RBACHandler) RoleStats(c echo.Context) error {
	_, tenant, err := ctxActor(c)
	if err != nil {
		return err
	}

	stats, err := h.rbac.RoleStats(c.Request().Context(), tenant)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", map[string]any{"stats": stats})
}
