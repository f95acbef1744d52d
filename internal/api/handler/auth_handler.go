package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/saasportal/admin-api/internal/api/metrics"
	"github.com/saasportal/admin-api/internal/api/middleware"
	"github.com/saasportal/admin-api/internal/core/domain"
	"github.com/saasportal/admin-api/internal/core/ports"
)

// AuthHandler serves the session and account-security endpoints.
type AuthHandler struct {
	auth          ports.AuthService
	accessTTL     time.Duration
	refreshTTL    time.Duration
	secureCookies bool
}

func NewAuthHandler(auth ports.AuthService, accessTTL, refreshTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		auth:          auth,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		secureCookies: secureCookies,
	}
}

// sessionPayload is the data block returned by every session-issuing
// endpoint.
type sessionPayload struct {
	Token        string              `json:"token"`
	RefreshToken string              `json:"refresh_token,omitempty"`
	User         *domain.User        `json:"user"`
	Tenant       *domain.Tenant      `json:"tenant,omitempty"`
	Permissions  []domain.Permission `json:"permissions"`
}

func newSessionPayload(s *ports.Session) sessionPayload {
	return sessionPayload{
		Token:        s.Tokens.AccessToken,
		RefreshToken: s.Tokens.RefreshToken,
		User:         s.User,
		Tenant:       s.Tenant,
		Permissions:  s.Permissions,
	}
}

func (h *AuthHandler) issueCookies(c echo.Context, s *ports.Session) {
	setSessionCookies(c, s.Tokens, h.accessTTL, h.refreshTTL, h.secureCookies)
}

// publicURLBase reconstructs the externally visible prefix for links embedded
// in transactional emails.
func publicURLBase(c echo.Context, path string) string {
	return fmt.Sprintf("%s://%s%s", c.Scheme(), c.Request().Host, path)
}

// Register self-registers a user into the resolved tenant.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  envelope
// @Failure      400   {object}  map[string]string
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tenant, err := ctxTenant(c)
	if err != nil {
		return err
	}

	result, err := h.auth.Register(c.Request().Context(), tenant, ports.RegisterInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		VerifyURLBase:   publicURLBase(c, "/verify-email"),
		DeviceInfo:      c.Request().UserAgent(),
	})
	if err != nil {
		return err
	}
	metrics.RegistrationsTotal.WithLabelValues("self").Inc()

	if result.PendingVerification {
		return respond(c, http.StatusCreated, "registration successful, please check your email to verify your account", nil)
	}

	h.issueCookies(c, result.Session)
	return respond(c, http.StatusCreated, "registration successful", newSessionPayload(result.Session))
}

// Login authenticates credentials and issues a token pair.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  envelope
// @Failure      401   {object}  map[string]string
// @Failure      423   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tenant, err := ctxTenant(c)
	if err != nil {
		return err
	}

	session, err := h.auth.Login(c.Request().Context(), tenant, ports.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		DeviceInfo: c.Request().UserAgent(),
	})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginOutcome(err)).Inc()
		if errors.Is(err, domain.ErrAccountLocked) {
			metrics.LockoutsTotal.Inc()
		}
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	h.issueCookies(c, session)
	return respond(c, http.StatusOK, "logged in successfully", newSessionPayload(session))
}

func loginOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrAccountLocked):
		return "locked"
	case errors.Is(err, domain.ErrEmailNotVerified):
		return "unverified"
	case errors.Is(err, domain.ErrAccountInactive):
		return "inactive"
	default:
		return "invalid_credentials"
	}
}

// Logout revokes the presented refresh token and clears the session cookies.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  envelope
// @Security     BearerAuth
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	user := middleware.UserFromContext(c)
	if user == nil {
		return domain.ErrUnauthenticated
	}

	if err := h.auth.Logout(c.Request().Context(), user, h.refreshToken(c)); err != nil {
		return err
	}

	clearSessionCookies(c, h.secureCookies)
	return respond(c, http.StatusOK, "logged out successfully", nil)
}

// Refresh exchanges a refresh token for a fresh pair.
//
// @Summary      Refresh the session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  false  "Refresh token (falls back to cookie)"
// @Success      200   {object}  envelope
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	token := h.refreshToken(c)
	if token == "" {
		metrics.TokenRefreshesTotal.WithLabelValues("rejected").Inc()
		return domain.ErrUnauthenticated
	}

	session, err := h.auth.Refresh(c.Request().Context(), token, c.Request().UserAgent())
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("rejected").Inc()
		return err
	}
	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()

	h.issueCookies(c, session)
	return respond(c, http.StatusOK, "token refreshed", newSessionPayload(session))
}

// refreshToken reads the refresh token from the request body or the
// refreshToken cookie, in that order.
func (h *AuthHandler) refreshToken(c echo.Context) string {
	var req refreshRequest
	if err := c.Bind(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	cookie, err := c.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == loggedOutValue {
		return ""
	}
	return cookie.Value
}

// Verify returns the current session for an already authenticated user; the
// frontend calls this on load to restore state.
//
// @Summary      Verify the current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  envelope
// @Security     BearerAuth
// @Router       /api/auth/verify [get]
func (h *AuthHandler) Verify(c echo.Context) error {
	user := middleware.UserFromContext(c)
	if user == nil {
		return domain.ErrUnauthenticated
	}

	session, err := h.auth.Describe(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", newSessionPayload(session))
}

// ForgotPassword emails a short-lived password reset token.
//
// @Summary      Request a password reset token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  envelope
// @Failure      404   {object}  map[string]string
// @Router       /api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tenant, err := ctxTenant(c)
	if err != nil {
		return err
	}

	if err := h.auth.ForgotPassword(c.Request().Context(), tenant, req.Email, publicURLBase(c, "/reset-password")); err != nil {
		metrics.EmailsSentTotal.WithLabelValues("password_reset", "failed").Inc()
		return err
	}
	metrics.EmailsSentTotal.WithLabelValues("password_reset", "sent").Inc()

	return respond(c, http.StatusOK, "password reset token sent to your email", nil)
}

// ResetPassword consumes a reset token and logs the user in with the new
// password.
//
// @Summary      Reset the password with a token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  path      string                true  "Reset token"
// @Param        body   body      resetPasswordRequest  true  "New password"
// @Success      200    {object}  envelope
// @Failure      400    {object}  map[string]string
// @Router       /api/auth/reset-password/{token} [patch]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.auth.ResetPassword(c.Request().Context(), c.Param("token"), req.Password, req.ConfirmPassword, c.Request().UserAgent())
	if err != nil {
		return err
	}

	h.issueCookies(c, session)
	return respond(c, http.StatusOK, "password reset successfully", newSessionPayload(session))
}

// UpdatePassword changes the password of the authenticated user.
//
// @Summary      Change the current password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      updatePasswordRequest  true  "Current and new password"
// @Success      200   {object}  envelope
// @Failure      401   {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/auth/update-password [patch]
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	user := middleware.UserFromContext(c)
	if user == nil {
		return domain.ErrUnauthenticated
	}

	var req updatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.auth.UpdatePassword(c.Request().Context(), user, req.CurrentPassword, req.Password, c.Request().UserAgent())
	if err != nil {
		return err
	}

	h.issueCookies(c, session)
	return respond(c, http.StatusOK, "password updated successfully", newSessionPayload(session))
}

// VerifyEmail consumes an email verification token.
//
// @Summary      Verify an email address
// @Tags         auth
// @Produce      json
// @Param        token  path      string  true  "Verification token"
// @Success      200    {object}  envelope
// @Failure      400    {object}  map[string]string
// @Router       /api/auth/verify-email/{token} [get]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	if err := h.auth.VerifyEmail(c.Request().Context(), c.Param("token")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "email verified successfully, you can now log in", nil)
}

// UpdateProfile applies the self-service editable profile fields.
//
// @Summary      Update the current profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      updateProfileRequest  true  "Profile fields"
// @Success      200   {object}  envelope
// @Security     BearerAuth
// @Router       /api/auth/profile [patch]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	user := middleware.UserFromContext(c)
	if user == nil {
		return domain.ErrUnauthenticated
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.auth.UpdateProfile(c.Request().Context(), user, ports.ProfileUpdate{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Department: req.Department,
		Title:      req.Title,
		Bio:        req.Bio,
		Avatar:     req.Avatar,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "profile updated successfully", map[string]any{"user": updated})
}
