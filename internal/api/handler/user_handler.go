package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/saasportal/admin-api/internal/api/metrics"
	"github.com/saasportal/admin-api/internal/core/domain"
	"github.com/saasportal/admin-api/internal/core/ports"
)

// UserHandler serves the tenant-scoped user administration endpoints.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List returns one page of the tenant's users plus summary stats.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        page        query     int     false  "Page number"
// @Param        limit       query     int     false  "Page size"
// @Param        search      query     string  false  "Name/email/department search"
// @Param        role        query     string  false  "Role filter"
// @Param        status      query     string  false  "Status filter"
// @Param        department  query     string  false  "Department filter"
// @Param        sort        query     string  false  "Sort field, prefix with - for descending"
// @Success      200         {object}  envelope
// @Security     BearerAuth
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	_, tenant, err := ctxActor(c)
	if err != nil {
		return err
	}

	page, err := h.users.List(c.Request().Context(), tenant, listFilter(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", page)
}

func listFilter(c echo.Context) ports.ListUsersFilter {
	filter := ports.ListUsersFilter{
		Search:     strings.TrimSpace(c.QueryParam("search")),
		Role:       domain.Role(c.QueryParam("role")),
		Status:     domain.UserStatus(c.QueryParam("status")),
		Department: strings.TrimSpace(c.QueryParam("department")),
	}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	// Newest first unless the caller asks for a specific order.
	filter.SortDesc = true
	if sort := c.QueryParam("sort"); sort != "" {
		filter.SortBy = strings.TrimPrefix(sort, "-")
		filter.SortDesc = strings.HasPrefix(sort, "-")
	}
	return filter
}

// Get returns one user.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  envelope
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	_, tenant, err := ctxActor(c)
	if err != nil {
		return err
	}

	user, err := h.users.Get(c.Request().Context(), tenant, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", map[string]any{"user": user})
}

// Create provisions a user, optionally emailing an invitation.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  envelope
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	actor, tenant, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.users.Create(c.Request().Context(), actor, tenant, ports.CreateUserInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Role:           req.Role,
		Department:     req.Department,
		Title:          req.Title,
		Phone:          req.Phone,
		SendInvitation: req.SendInvitation,
		InviteURLBase:  publicURLBase(c, "/accept-invitation"),
	})
	if err != nil {
		if req.SendInvitation {
			metrics.EmailsSentTotal.WithLabelValues("invitation", "failed").Inc()
		}
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("invited").Inc()
	if req.SendInvitation {
		metrics.InvitationsTotal.WithLabelValues("sent").Inc()
		metrics.EmailsSentTotal.WithLabelValues("invitation", "sent").Inc()
	}

	msg := "user created successfully"
	if req.SendInvitation {
		msg = "user created and invitation sent"
	}
	return respond(c, http.StatusCreated, msg, map[string]any{"user": created})
}

// Update applies admin-editable fields to a user.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to update"
// @Success      200   {object}  envelope
// @Failure      403   {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	actor, tenant, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.users.Update(c.Request().Context(), actor, tenant, c.Param("id"), ports.UpdateUserInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Role:       req.Role,
		Department: req.Department,
		Title:      req.Title,
		Phone:      req.Phone,
		Status:     req.Status,
		Bio:        req.Bio,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user updated successfully", map[string]any{"user": updated})
}

// Delete removes a user permanently.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  envelope
// @Failure      403  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, tenant, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.users.Delete(c.Request().Context(), actor, tenant, c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user deleted successfully", nil)
}

// Bulk applies one action to a set of users.
//
// @Summary      Bulk update users
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      bulkUpdateRequest  true  "Action and user ids"
// @Success      200   {object}  envelope
// @Failure      403   {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/users/bulk [patch]
func (h *UserHandler) Bulk(c echo.Context) error {
	actor, tenant, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req bulkUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.users.BulkUpdate(c.Request().Context(), actor, tenant, ports.BulkInput{
		UserIDs: req.UserIDs,
		Action:  ports.BulkAction(req.Action),
		Role:    req.Role,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, result.Message, result)
}

// ResendInvitation re-emails the invitation of a pending account.
//
// @Summary      Resend an invitation
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  envelope
// @Failure      400  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/users/{id}/resend-invitation [post]
func (h *UserHandler) ResendInvitation(c echo.Context) error {
	actor, tenant, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.users.ResendInvitation(c.Request().Context(), actor, tenant, c.Param("id"), publicURLBase(c, "/accept-invitation")); err != nil {
		metrics.EmailsSentTotal.WithLabelValues("invitation", "failed").Inc()
		return err
	}
	metrics.InvitationsTotal.WithLabelValues("resent").Inc()
	metrics.EmailsSentTotal.WithLabelValues("invitation", "sent").Inc()

	return respond(c, http.StatusOK, "invitation resent successfully", nil)
}

// AcceptInvitation is the public endpoint an invitee lands on: it consumes
// the invitation token and sets the chosen password.
//
// @Summary      Accept an invitation
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        token  path      string                   true  "Invitation token"
// @Param        body   body      acceptInvitationRequest  true  "Chosen password"
// @Success      200    {object}  envelope
// @Failure      400    {object}  map[string]string
// @Router       /api/users/accept-invitation/{token} [post]
func (h *UserHandler) AcceptInvitation(c echo.Context) error {
	var req acceptInvitationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.users.AcceptInvitation(c.Request().Context(), c.Param("token"), req.Password, req.ConfirmPassword); err != nil {
		return err
	}
	metrics.InvitationsTotal.WithLabelValues("accepted").Inc()

	return respond(c, http.StatusOK, "invitation accepted, you can now log in", nil)
}

// Activity returns the per-user activity summary.
//
// @Summary      Get user activity
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  envelope
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/users/{id}/activity [get]
func (h *UserHandler) Activity(c echo.Context) error {
	_, tenant, err := ctxActor(c)
	if err != nil {
		return err
	}

	activity, err := h.users.Activity(c.Request().Context(), tenant, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", activity)
}
